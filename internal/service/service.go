package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Search retrieves products whose name contains keyword, with pagination.
	// A blank keyword lists every product.
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// PlaceOrder creates an order for user and removes the ordered quantities
	// from stock in a single transaction. Either both happen or neither does.
	PlaceOrder(ctx context.Context, user *model.User, req *model.PlaceOrderRequest) (*model.Order, error)

	// MarkPaid records a payment. The order is marked delivered one day after
	// the payment time in the same call.
	MarkPaid(ctx context.Context, id uuid.UUID, req *model.PayOrderRequest) (*model.Order, error)

	// MarkDelivered records delivery of an order.
	MarkDelivered(ctx context.Context, id uuid.UUID, req *model.DeliverOrderRequest) (*model.Order, error)

	// GetByID retrieves an order with the owner's name and email.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)

	// ListAll retrieves every order.
	ListAll(ctx context.Context) ([]model.OrderDetails, error)

	// ListMine retrieves the orders placed by user.
	ListMine(ctx context.Context, user *model.User) ([]model.OrderDetails, error)

	// Delete removes an order. Only the owner or an admin may delete.
	Delete(ctx context.Context, user *model.User, id uuid.UUID) (*model.MessageResponse, error)
}

// PaymentService fronts the payment gateway for checkout.
type PaymentService interface {
	// Config returns the public gateway key for the checkout page.
	Config(ctx context.Context) (*model.PaymentConfigResponse, error)

	// CreateOrder opens a gateway order for the amount the customer is
	// about to pay.
	CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error)
}

// PlacementRecorder records the outcome of order placements.
type PlacementRecorder interface {
	OrderPlaced(units int)
	PlacementFailed(reason string)
}
