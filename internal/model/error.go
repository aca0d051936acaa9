package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeTransactionAborted = "TRANSACTION_ABORTED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodePaymentGateway     = "PAYMENT_GATEWAY_ERROR"
	ErrCodePaymentUnavailable = "PAYMENT_UNAVAILABLE"
)

// DomainError is a business error carrying a stable code.
// Two domain errors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors, usable as errors.Is targets.
var (
	ErrUnauthenticated    = NewDomainError(ErrCodeUnauthenticated, "user is not authenticated")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "not authorised to perform this action")
	ErrInvalidRequest     = NewDomainError(ErrCodeInvalidRequest, "invalid request")
	ErrEmptyCart          = NewDomainError(ErrCodeInvalidRequest, "empty cart")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeNotFound, "order not found")
	ErrProductNotFound    = NewDomainError(ErrCodeNotFound, "product not found")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "insufficient stock")
	ErrTransactionAborted = NewDomainError(ErrCodeTransactionAborted, "transaction aborted")
	ErrInternal           = NewDomainError(ErrCodeInternalError, "internal failure")
	ErrPaymentGateway     = NewDomainError(ErrCodePaymentGateway, "payment gateway error")
	ErrPaymentUnavailable = NewDomainError(ErrCodePaymentUnavailable, "payment gateway unavailable")
)

// InvalidRequestError reports a request that failed validation.
func InvalidRequestError(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidRequest, message)
}

// ProductNotFoundError reports a cart line referencing a missing product.
func ProductNotFoundError(productID string) *DomainError {
	return NewDomainError(ErrCodeNotFound, fmt.Sprintf("product %s not found", productID))
}

// InsufficientStockError reports a cart line whose quantity exceeds the product's stock.
func InsufficientStockError(productID string, available int) *DomainError {
	return NewDomainError(
		ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product %s, available %d", productID, available),
	)
}

// TransactionAbortedError wraps the error that caused a transaction to roll back.
func TransactionAbortedError(cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransactionAborted,
		Message: "transaction aborted",
		Err:     cause,
	}
}

// InternalError wraps a store or infrastructure fault.
func InternalError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternalError,
		Message: message,
		Err:     cause,
	}
}

// PaymentGatewayError wraps a failure reported by or on the way to the
// payment gateway.
func PaymentGatewayError(cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentGateway,
		Message: "payment gateway error",
		Err:     cause,
	}
}

// PaymentUnavailableError reports that the payment gateway cannot be called
// right now.
func PaymentUnavailableError(cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentUnavailable,
		Message: "payment gateway unavailable",
		Err:     cause,
	}
}
