package service

import (
	"context"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// normalizePage clamps a requested page into the supported range.
func normalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return limit, max(offset, 0)
}

func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = normalizePage(limit, offset)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list catalogue")
		return nil, model.InternalError("failed to get products", err)
	}

	return products, nil
}

func (s *productService) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.GetAll(ctx, limit, offset)
	}
	limit, offset = normalizePage(limit, offset)

	products, err := s.productRepo.Search(ctx, keyword, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("keyword", keyword).Msg("failed to search catalogue")
		return nil, model.InternalError("failed to search products", err)
	}

	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.InvalidRequestError("product id is required")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to read product")
		return nil, model.InternalError("failed to get product", err)
	}
	if product == nil {
		return nil, model.ProductNotFoundError(id)
	}

	return product, nil
}

// GetByIDs returns the products that exist among ids, in the order the ids
// were first given. Blank and repeated ids are ignored.
func (s *productService) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	wanted := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		wanted = append(wanted, id)
	}

	if len(wanted) == 0 {
		return []model.Product{}, nil
	}

	found, err := s.productRepo.GetByIDs(ctx, wanted)
	if err != nil {
		s.logger.Error().Err(err).Strs("product_ids", wanted).Msg("failed to read products")
		return nil, model.InternalError("failed to get products", err)
	}

	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]model.Product, 0, len(found))
	for _, id := range wanted {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}

	if len(products) < len(wanted) {
		s.logger.Debug().
			Int("requested", len(wanted)).
			Int("found", len(products)).
			Msg("some requested products do not exist")
	}

	return products, nil
}
