package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultCurrency = "INR"

type paymentService struct {
	gateway  payment.Gateway
	keyID    string
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPaymentService creates a payment service. A nil gateway or empty keyID
// leaves payments unavailable.
func NewPaymentService(gateway payment.Gateway, keyID string, logger zerolog.Logger) PaymentService {
	return &paymentService{
		gateway:  gateway,
		keyID:    keyID,
		validate: newValidator(),
		logger:   logger.With().Str("service", "payment").Logger(),
	}
}

func (s *paymentService) Config(ctx context.Context) (*model.PaymentConfigResponse, error) {
	if s.keyID == "" {
		return nil, model.PaymentUnavailableError(nil)
	}
	return &model.PaymentConfigResponse{KeyID: s.keyID}, nil
}

func (s *paymentService) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	if s.gateway == nil {
		return nil, model.PaymentUnavailableError(nil)
	}
	if req == nil {
		return nil, model.ErrInvalidRequest
	}

	normalized := *req
	normalized.Currency = strings.ToUpper(strings.TrimSpace(normalized.Currency))
	if normalized.Currency == "" {
		normalized.Currency = defaultCurrency
	}
	normalized.Receipt = strings.TrimSpace(normalized.Receipt)
	if normalized.Receipt == "" {
		normalized.Receipt = uuid.NewString()
	}

	if err := s.validate.Struct(&normalized); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, model.InvalidRequestError(describe(verrs[0]))
		}
		return nil, model.InvalidRequestError(err.Error())
	}

	order, err := s.gateway.CreateOrder(ctx, &normalized)
	if err != nil {
		return nil, s.gatewayFailure(err, normalized.Receipt)
	}
	return order, nil
}

// gatewayFailure maps a gateway error onto a domain error. A request the
// provider refused is the caller's fault and keeps the provider's reason.
func (s *paymentService) gatewayFailure(err error, receipt string) error {
	if errors.Is(err, payment.ErrUnavailable) {
		s.logger.Warn().Err(err).Str("receipt", receipt).Msg("payment gateway circuit is open")
		return model.PaymentUnavailableError(err)
	}

	var ge *payment.GatewayError
	if errors.As(err, &ge) && ge.Rejected() {
		if ge.Description == "" {
			return model.InvalidRequestError("payment gateway rejected the order")
		}
		return model.InvalidRequestError(ge.Description)
	}

	s.logger.Error().Err(err).Str("receipt", receipt).Msg("failed to create gateway order")
	return model.PaymentGatewayError(err)
}
