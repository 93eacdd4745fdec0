package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/pkg/catalog"
)

func main() {
	name := flag.String("name", "", "name fragment to search (case-insensitive)")
	hp := flag.Int("hp", 0, "filter by printed HP (0 = any)")
	limit := flag.Int("limit", 100, "max rows")
	flag.Parse()
	if strings.TrimSpace(*name) == "" {
		log.Fatal("--name is required")
	}
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var hpFilter *int
	if *hp > 0 {
		hpFilter = hp
	}
	rows, err := catalog.NewStore(db).FindCandidates(context.Background(), *name, hpFilter, *limit)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("no rows")
		return
	}
	for _, r := range rows {
		hpStr := "-"
		if r.HP != nil {
			hpStr = fmt.Sprintf("%d", *r.HP)
		}
		fmt.Printf("FOUND %s|%s|%s|hp=%s\n", r.ID, r.Name, r.Set.Name, hpStr)
	}
}
