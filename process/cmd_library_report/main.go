package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardscan/pkg/catalog"
)

func main() {
	list := flag.Bool("list", false, "list per-set rows")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	store := catalog.NewStore(db)
	ctx := context.Background()

	sets, err := store.CountSets(ctx)
	if err != nil {
		log.Fatalf("count sets: %v", err)
	}
	cards, err := store.CountCards(ctx)
	if err != nil {
		log.Fatalf("count cards: %v", err)
	}
	fmt.Printf("Card library report:\n")
	fmt.Printf("  sets=%d cards=%d\n", sets, cards)

	if *list {
		rows, err := store.SetReports(ctx)
		if err != nil {
			log.Fatalf("fetch set rows failed: %v", err)
		}
		for _, r := range rows {
			fmt.Printf("%s|%s|cards=%d|local_images=%d\n", r.SetID, r.Name, r.Cards, r.WithImage)
		}
	}
}
