//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog creates sample catalog seed files for local runs.
// File 2 overrides the stock of P002 from file 1, so seeding both leaves
// P002 with 25 units.
func main() {
	dataDir := "data/catalog"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]model.Product{
		"products.jsonl.gz": {
			{ID: "P001", Name: "Airpods Wireless Bluetooth Headphones", Brand: "Apple", Category: "Electronics", Image: "/images/airpods.jpg", Price: decimal.RequireFromString("89.99"), CountInStock: 10},
			{ID: "P002", Name: "iPhone 13 Pro 256GB Memory", Brand: "Apple", Category: "Electronics", Image: "/images/phone.jpg", Price: decimal.RequireFromString("599.99"), CountInStock: 7},
			{ID: "P003", Name: "Cannon EOS 80D DSLR Camera", Brand: "Cannon", Category: "Electronics", Image: "/images/camera.jpg", Price: decimal.RequireFromString("929.99"), CountInStock: 5},
		},
		"restock.jsonl.gz": {
			{ID: "P002", Name: "iPhone 13 Pro 256GB Memory", Brand: "Apple", Category: "Electronics", Image: "/images/phone.jpg", Price: decimal.RequireFromString("599.99"), CountInStock: 25},
			{ID: "P004", Name: "Sony Playstation 5", Brand: "Sony", Category: "Electronics", Image: "/images/playstation.jpg", Price: decimal.RequireFromString("399.99"), CountInStock: 11},
			{ID: "P005", Name: "Logitech G-Series Gaming Mouse", Brand: "Logitech", Category: "Electronics", Image: "/images/mouse.jpg", Price: decimal.RequireFromString("49.99"), CountInStock: 0},
		},
	}

	for filename, products := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, products); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(products))
	}

	fmt.Println("\nSample catalog files created successfully!")
	fmt.Println("Seed them with:")
	fmt.Println("  CATALOG_SEED_ENABLED=true CATALOG_SEED_FILES=data/catalog/products.jsonl.gz,data/catalog/restock.jsonl.gz")
}

func createCatalogFile(filePath string, products []model.Product) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := encoder.Encode(p); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.ID, err)
		}
	}

	return nil
}
