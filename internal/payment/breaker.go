package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Breaker stops calling a failing gateway for a cooldown period.
// Rejections and caller cancellations do not count as failures.
type Breaker struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[*model.GatewayOrder]
}

// NewBreaker wraps next. The circuit opens after failures consecutive
// failures and lets a single trial call through once cooldown has passed.
func NewBreaker(next Gateway, failures int, cooldown time.Duration, logger zerolog.Logger) *Breaker {
	threshold := uint32(max(failures, 1))

	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("payment gateway circuit changed state")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejection(err) || errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*model.GatewayOrder](settings),
	}
}

// CreateOrder calls the wrapped gateway unless the circuit is open.
func (b *Breaker) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	order, err := b.cb.Execute(func() (*model.GatewayOrder, error) {
		return b.next.CreateOrder(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return order, err
}

// State reports the circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
