package model

import "encoding/json"

// PaymentConfigResponse carries the public key a checkout page needs to open
// the payment gateway's widget.
type PaymentConfigResponse struct {
	KeyID string `json:"keyId"`
}

// GatewayOrderRequest asks the payment gateway to open an order.
// Amount is in the currency's smallest unit.
type GatewayOrderRequest struct {
	Amount   int64             `json:"amount" validate:"gt=0"`
	Currency string            `json:"currency" validate:"omitempty,len=3,alpha"`
	Receipt  string            `json:"receipt,omitempty" validate:"max=40"`
	Notes    map[string]string `json:"notes,omitempty" validate:"max=15"`
}

// GatewayOrder is an order as the payment gateway reports it.
type GatewayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	// Notes is an object, or an empty array when no notes were sent.
	Notes     json.RawMessage `json:"notes,omitempty"`
	CreatedAt int64           `json:"created_at"`
}
