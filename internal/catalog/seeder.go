package catalog

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Seeder loads seed files and writes their products to a Store.
type Seeder struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(loader Loader, store Store, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads all files concurrently and upserts the merged result.
// When a product ID appears in several files the later file wins.
// It returns the number of distinct products written.
func (s *Seeder) Seed(ctx context.Context, paths []string) (int, error) {
	results := make([][]model.Product, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			products, err := s.loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load catalog file %s: %w", path, err)
			}
			results[i] = products
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("catalog seeding aborted")
		return 0, err
	}

	merged := merge(results)

	if err := s.store.Upsert(ctx, merged); err != nil {
		s.logger.Error().Err(err).Int("count", len(merged)).Msg("failed to store catalog")
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}

	s.logger.Info().
		Int("file_count", len(paths)).
		Int("product_count", len(merged)).
		Msg("catalog seeded")

	return len(merged), nil
}

// merge flattens batches keeping first-seen order and last-seen values.
func merge(batches [][]model.Product) []model.Product {
	index := make(map[string]int)
	merged := []model.Product{}

	for _, batch := range batches {
		for _, p := range batch {
			if i, ok := index[p.ID]; ok {
				merged[i] = p
				continue
			}
			index[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}

	return merged
}
