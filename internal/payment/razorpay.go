package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// RazorpayClient creates orders through the Razorpay REST API.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewRazorpayClient creates a client authenticating with cfg's key pair.
func NewRazorpayClient(cfg config.PaymentConfig, logger zerolog.Logger) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(cfg.RazorpayBaseURL, "/"),
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("gateway", "razorpay").Logger(),
	}
}

// CreateOrder opens a Razorpay order.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req *model.GatewayOrderRequest) (*model.GatewayOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	if requestID := chimiddleware.GetReqID(ctx); requestID != "" {
		httpReq.Header.Set(chimiddleware.RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("receipt", req.Receipt).Msg("order request failed")
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := decodeGatewayError(resp)
		c.logger.Warn().
			Int("status_code", gerr.StatusCode).
			Str("code", gerr.Code).
			Str("receipt", req.Receipt).
			Msg("order request returned error")
		return nil, gerr
	}

	var order model.GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	c.logger.Info().
		Str("gateway_order_id", order.ID).
		Int64("amount", order.Amount).
		Str("currency", order.Currency).
		Msg("gateway order created")

	return &order, nil
}

func decodeGatewayError(resp *http.Response) *GatewayError {
	var payload struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	// The body is best effort; the status alone is enough to classify.
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)

	return &GatewayError{
		StatusCode:  resp.StatusCode,
		Code:        payload.Error.Code,
		Description: payload.Error.Description,
	}
}
