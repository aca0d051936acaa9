package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// Search retrieves products whose name contains keyword, ignoring case.
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// GetByIDForUpdate reads a product inside tx and locks its row until the
	// transaction ends. Returns nil when the product does not exist.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.Product, error)

	// LockProducts locks the rows of the existing products among ids inside
	// tx, in the order given. Missing ids are ignored.
	LockProducts(ctx context.Context, tx pgx.Tx, ids []string) error

	// UpdateStock writes a new stock count for a product inside tx.
	UpdateStock(ctx context.Context, tx pgx.Tx, id string, countInStock int) error

	// Upsert inserts or replaces products by ID.
	Upsert(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetDetailsByID retrieves an order with the owner's name and email.
	GetDetailsByID(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)

	// ListAll retrieves every order with the owner's name.
	ListAll(ctx context.Context) ([]model.OrderDetails, error)

	// ListByUser retrieves the orders placed by a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderDetails, error)

	// Update persists the payment and delivery state of an order.
	Update(ctx context.Context, order *model.Order) error

	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for user lookups.
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns nil when the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
