package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/model"
)

// Gateway opens orders with a payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error)
}

// ErrUnavailable is returned when the gateway is not called because its
// circuit is open.
var ErrUnavailable = errors.New("payment gateway unavailable")

// GatewayError is a non-2xx answer from the payment provider.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("payment gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment gateway returned status %d: %s", e.StatusCode, e.Description)
}

// Rejected reports whether the provider refused the request itself, as
// opposed to failing to serve it.
func (e *GatewayError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// IsRejection reports whether err is a GatewayError that Rejected.
func IsRejection(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Rejected()
}
