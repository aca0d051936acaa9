package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"storefront/internal/cache"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	// deliveryDelay is how long after payment an order counts as delivered.
	deliveryDelay = 24 * time.Hour

	// sharedReadTimeout bounds a coalesced order read.
	sharedReadTimeout = 10 * time.Second
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       cache.OrderCache
	publisher   events.Publisher
	recorder    PlacementRecorder
	validate    *validator.Validate
	group       singleflight.Group
	writes      writeGenerations
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	orderCache cache.OrderCache,
	publisher events.Publisher,
	recorder PlacementRecorder,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       orderCache,
		publisher:   publisher,
		recorder:    recorder,
		validate:    newValidator(),
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder creates an order and decrements stock for every cart line.
func (s *orderService) PlaceOrder(ctx context.Context, user *model.User, req *model.PlaceOrderRequest) (*model.Order, error) {
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	if err := validatePlaceOrder(s.validate, req); err != nil {
		s.logger.Warn().
			Err(err).
			Str("user_id", user.ID.String()).
			Msg("invalid order request")
		s.recorder.PlacementFailed(metrics.ReasonInvalidRequest)
		return nil, err
	}

	order := s.buildOrder(user, req)

	if err := s.placeInTx(ctx, order); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("user_id", user.ID.String()).
			Msg("order placement aborted")
		s.recorder.PlacementFailed(failureReason(err))
		return nil, err
	}

	units := 0
	for _, item := range order.Items {
		units += item.Quantity
	}
	s.recorder.OrderPlaced(units)
	s.publish(ctx, events.EventTypeOrderCreated, order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", user.ID.String()).
		Int("item_count", len(order.Items)).
		Str("total_price", order.TotalPrice.String()).
		Msg("order placed successfully")

	return order, nil
}

// buildOrder assembles the order from the request. Line items are snapshots
// of what the client sent.
func (s *orderService) buildOrder(user *model.User, req *model.PlaceOrderRequest) *model.Order {
	now := s.now()
	taxPrice := decimal.Zero

	// A client total of zero is treated the same as no total.
	totalPrice := req.ItemsPrice.Add(req.ShippingPrice).Add(taxPrice)
	if req.TotalPrice != nil && !req.TotalPrice.IsZero() {
		totalPrice = *req.TotalPrice
	}

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        taxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      totalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	order.Items = make([]model.OrderItem, len(req.CartItems))
	for i, item := range req.CartItems {
		order.Items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Image:     item.Image,
			Price:     item.Price,
		}
	}

	return order
}

// placeInTx persists order and its stock decrements in one transaction.
// Every error is returned as a transaction-aborted error wrapping the cause.
func (s *orderService) placeInTx(ctx context.Context, order *model.Order) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return model.TransactionAbortedError(err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error().
				Err(rbErr).
				Str("order_id", order.ID.String()).
				Msg("failed to rollback transaction")
		}
	}()

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return model.TransactionAbortedError(err)
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return model.TransactionAbortedError(err)
	}

	// Rows are locked in id order up front so that two carts naming the same
	// products in different orders cannot deadlock. Lines are then checked
	// in cart order.
	if err := s.productRepo.LockProducts(ctx, tx, lockOrder(order.Items)); err != nil {
		return model.TransactionAbortedError(err)
	}

	for _, item := range order.Items {
		product, err := s.productRepo.GetByIDForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			return model.TransactionAbortedError(err)
		}

		if product == nil {
			return model.TransactionAbortedError(model.ProductNotFoundError(item.ProductID))
		}

		if product.CountInStock < item.Quantity {
			return model.TransactionAbortedError(
				model.InsufficientStockError(item.ProductID, product.CountInStock))
		}

		if err := s.productRepo.UpdateStock(ctx, tx, item.ProductID, product.CountInStock-item.Quantity); err != nil {
			return model.TransactionAbortedError(err)
		}

		s.logger.Debug().
			Str("order_id", order.ID.String()).
			Str("product_id", item.ProductID).
			Int("quantity", item.Quantity).
			Int("remaining", product.CountInStock-item.Quantity).
			Msg("stock reserved")
	}

	if err := tx.Commit(ctx); err != nil {
		return model.TransactionAbortedError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	committed = true

	return nil
}

// lockOrder returns the distinct product ids of items, sorted.
func lockOrder(items []model.OrderItem) []string {
	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		ids[item.ProductID] = struct{}{}
	}
	return slices.Sorted(maps.Keys(ids))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInsufficientStock):
		return metrics.ReasonInsufficientStock
	case errors.Is(err, model.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, model.ErrInvalidRequest):
		return metrics.ReasonInvalidRequest
	default:
		return metrics.ReasonInternal
	}
}

// MarkPaid records the payment and then the delivery of an order.
func (s *orderService) MarkPaid(ctx context.Context, id uuid.UUID, req *model.PayOrderRequest) (*model.Order, error) {
	if req == nil {
		req = &model.PayOrderRequest{}
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &model.PaymentResult{
		PaymentID:    req.PaymentID,
		Status:       model.PaymentStatusPaid,
		EmailAddress: req.Email,
	}
	order.UpdatedAt = now

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	// The payment is stored from here on, whatever happens to the delivery write.
	defer s.invalidate(ctx, id)

	deliveredAt := paidAt.Add(deliveryDelay)
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark paid order delivered")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.publish(ctx, events.EventTypeOrderPaid, order)

	s.logger.Info().
		Str("order_id", id.String()).
		Time("paid_at", paidAt).
		Time("delivered_at", deliveredAt).
		Msg("order paid")

	return order, nil
}

// MarkDelivered records delivery of an order.
func (s *orderService) MarkDelivered(ctx context.Context, id uuid.UUID, req *model.DeliverOrderRequest) (*model.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deliveredAt := now
	if req != nil && req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = now

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order delivered")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.EventTypeOrderDelivered, order)

	s.logger.Info().Str("order_id", id.String()).Msg("order delivered")

	return order, nil
}

// GetByID reads through the order cache. Concurrent misses for the same
// order share one database read, which runs detached from any single
// caller's context so that one caller going away does not fail the others.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("order cache read failed")
	}

	ch := s.group.DoChan(id.String(), func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return s.readThrough(readCtx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.OrderDetails), nil
	}
}

// readThrough loads an order and caches it unless a write to the order
// overlapped the read.
func (s *orderService) readThrough(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	gen := s.writes.of(id)
	before := gen.Load()

	details, err := s.orderRepo.GetDetailsByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if details == nil {
		return nil, model.ErrOrderNotFound
	}

	if gen.Load() != before {
		s.logger.Debug().Str("order_id", id.String()).Msg("order changed during read, not caching")
		return details, nil
	}

	if err := s.cache.Set(ctx, details); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("order cache write failed")
		return details, nil
	}

	// A write that landed between the check and the Set may have been
	// invalidated before the Set. Drop what we just wrote.
	if gen.Load() != before {
		s.evict(ctx, id)
	}

	return details, nil
}

// ListAll retrieves every order.
func (s *orderService) ListAll(ctx context.Context) ([]model.OrderDetails, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// ListMine retrieves the orders placed by user.
func (s *orderService) ListMine(ctx context.Context, user *model.User) ([]model.OrderDetails, error) {
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	orders, err := s.orderRepo.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Delete removes an order owned by user, or any order when user is an admin.
func (s *orderService) Delete(ctx context.Context, user *model.User, id uuid.UUID) (*model.MessageResponse, error) {
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin && order.UserID != user.ID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", user.ID.String()).
			Msg("delete refused for non-owner")
		return nil, model.ErrForbidden
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.EventTypeOrderDeleted, order)

	s.logger.Info().
		Str("order_id", id.String()).
		Str("deleted_by", user.ID.String()).
		Msg("order deleted")

	return &model.MessageResponse{Message: "Order deleted successfully"}, nil
}

// loadOrder fetches an order for modification.
func (s *orderService) loadOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// invalidate marks a write to the order and drops its cached view. It must be
// called after the write reached the database.
func (s *orderService) invalidate(ctx context.Context, id uuid.UUID) {
	s.writes.of(id).Add(1)
	s.evict(ctx, id)
}

func (s *orderService) evict(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("order cache invalidation failed")
	}
}

// writeGenerations counts order writes in a fixed set of stripes. A read that
// sees its stripe move may skip caching needlessly, never the reverse.
type writeGenerations [64]atomic.Uint64

func (g *writeGenerations) of(id uuid.UUID) *atomic.Uint64 {
	return &g[int(id[15])%len(g)]
}

// publish emits an order event. Failures are logged and never returned.
func (s *orderService) publish(ctx context.Context, eventType events.EventType, order *model.Order) {
	event, err := events.NewOrderEvent(eventType, order)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}
