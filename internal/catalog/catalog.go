// Package catalog seeds the product catalogue from gzipped JSON-lines files.
//
// Each non-blank line of a seed file is one product object, for example:
//
//	{"id":"P1","name":"Airpods","price":"89.99","countInStock":10}
package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"
)

// Loader reads the products of one seed file.
type Loader interface {
	// Load reads a gzipped JSON-lines file and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Store persists seeded products.
type Store interface {
	Upsert(ctx context.Context, products []model.Product) error
}

// decodeProducts reads gzipped JSON lines from r.
func decodeProducts(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	products := []model.Product{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}

		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}

	return products, nil
}

func validateProduct(p model.Product) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("product id is required")
	case p.Name == "":
		return fmt.Errorf("product %s: name is required", p.ID)
	case p.Price.IsNegative():
		return fmt.Errorf("product %s: price must not be negative", p.ID)
	case p.CountInStock < 0:
		return fmt.Errorf("product %s: stock must not be negative", p.ID)
	}
	return nil
}
