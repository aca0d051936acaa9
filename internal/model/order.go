package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatusPaid is the status recorded on a confirmed payment.
const PaymentStatusPaid = "paid"

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice" db:"items_price"`
	TaxPrice        decimal.Decimal `json:"taxPrice" db:"tax_price"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item in an order. Display fields are a snapshot taken
// when the order was placed, not a live reference into the catalogue.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Image     string          `json:"image" db:"image"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentResult records a payment confirmation.
type PaymentResult struct {
	PaymentID    string `json:"paymentId" db:"payment_id"`
	Status       string `json:"status" db:"payment_status"`
	EmailAddress string `json:"emailAddress" db:"payment_email"`
}

// OrderDetails is an order with the owner's display fields joined in.
type OrderDetails struct {
	Order
	User UserSummary `json:"user"`
}

// PlaceOrderRequest represents the request payload for placing an order.
type PlaceOrderRequest struct {
	CartItems       []CartItem       `json:"cartItems" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required"`
	ItemsPrice      decimal.Decimal  `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal  `json:"shippingPrice"`
	TotalPrice      *decimal.Decimal `json:"totalPrice,omitempty"`
}

// CartItem is a single line of a cart as sent by the client.
type CartItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
}

// PayOrderRequest carries a payment confirmation.
type PayOrderRequest struct {
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	PaymentID string     `json:"paymentId"`
	Email     string     `json:"email"`
}

// DeliverOrderRequest carries an optional delivery timestamp.
type DeliverOrderRequest struct {
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
