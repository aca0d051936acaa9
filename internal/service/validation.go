package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(12,2): at most two decimal places and an
// absolute value below 10^10.
const moneyScale = 2

var moneyLimit = decimal.New(1, 10)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validatePlaceOrder checks a placement request before anything is written.
func validatePlaceOrder(v *validator.Validate, req *model.PlaceOrderRequest) error {
	if req == nil {
		return model.ErrInvalidRequest
	}

	if len(req.CartItems) == 0 {
		return model.ErrEmptyCart
	}

	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return model.InvalidRequestError(describe(verrs[0]))
		}
		return model.InvalidRequestError(err.Error())
	}

	if req.ItemsPrice.IsNegative() || req.ShippingPrice.IsNegative() ||
		(req.TotalPrice != nil && req.TotalPrice.IsNegative()) {
		return model.InvalidRequestError("prices must not be negative")
	}

	for i, item := range req.CartItems {
		if item.Price.IsNegative() {
			return model.InvalidRequestError(fmt.Sprintf("cartItems[%d].price must not be negative", i))
		}
		if err := checkMoney(fmt.Sprintf("cartItems[%d].price", i), item.Price); err != nil {
			return err
		}
	}

	if err := checkMoney("itemsPrice", req.ItemsPrice); err != nil {
		return err
	}
	if err := checkMoney("shippingPrice", req.ShippingPrice); err != nil {
		return err
	}
	if req.TotalPrice != nil && !req.TotalPrice.IsZero() {
		return checkMoney("totalPrice", *req.TotalPrice)
	}
	// The total is derived, so the sum has to fit as well.
	return checkMoney("totalPrice", req.ItemsPrice.Add(req.ShippingPrice))
}

// checkMoney rejects amounts the store would round or could not hold.
func checkMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(moneyScale)) {
		return model.InvalidRequestError(fmt.Sprintf("%s must have at most %d decimal places", field, moneyScale))
	}
	if d.Abs().GreaterThanOrEqual(moneyLimit) {
		return model.InvalidRequestError(fmt.Sprintf("%s must be less than %s", field, moneyLimit))
	}
	return nil
}

// describe renders a field error as "<path> <problem>".
func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", path, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", path, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s entries", path, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", path, fe.Param())
	case "alpha":
		return path + " must contain only letters"
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
