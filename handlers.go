package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"cardscan/models"
	"cardscan/pkg/scan"

	"github.com/gin-gonic/gin"
)

// cardIdentifier is what the routes need from the scan pipeline. The
// indirection keeps handler tests free of OCR and OpenCV.
type cardIdentifier interface {
	Identify(ctx context.Context, image []byte) ([]models.CardDefinition, error)
}

var scanner cardIdentifier

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	api := r.Group("/api/v1")
	api.POST("/scan/identify", identifyHandler)
	// Downloaded card art, served for clients that want to show match previews.
	r.Static("/images", cardImageDir())
}

// identifyHandler accepts a base64 card photo and answers with the matching
// catalog entries: one row when the pipeline is confident, several when only
// the printed text could be matched, none when nothing was recognized.
func identifyHandler(c *gin.Context) {
	var req struct {
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	image, err := decodeImagePayload(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base64 image"})
		return
	}
	matches, err := scanner.Identify(c.Request.Context(), image)
	if err != nil {
		if errors.Is(err, scan.ErrNoImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
			return
		}
		if errors.Is(err, scan.ErrImageDecode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image could not be decoded"})
			return
		}
		log.Printf("ERROR identify: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "identification failed"})
		return
	}
	c.JSON(http.StatusOK, matches)
}

// decodeImagePayload strips an optional data URL header ("data:image/png;base64,")
// and decodes the remaining base64 body.
func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.IndexByte(payload, ','); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(payload)
}

func healthHandler(c *gin.Context) {
	var cards int64
	if db != nil {
		db.Model(&models.CardDefinition{}).Count(&cards)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cards": cards})
}
