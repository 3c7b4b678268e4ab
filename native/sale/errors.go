package sale

import "errors"

var (
	ErrNilState           = errors.New("sale engine: state not configured")
	ErrNilTokenRegistry   = errors.New("sale engine: token registry not configured")
	ErrCollectionNotFound = errors.New("sale engine: collection not found")
	ErrUnauthorized       = errors.New("sale engine: unauthorized")
	ErrSaleNotActive      = errors.New("sale engine: sale not active")
	ErrInsufficientFunds  = errors.New("sale engine: insufficient funds")
	ErrSupplyExhausted    = errors.New("sale engine: max supply exhausted")
	ErrValueOverflow      = errors.New("sale engine: value overflow")
	ErrInvalidAmount      = errors.New("sale engine: amount must be positive")
	ErrInvalidConfig      = errors.New("sale engine: invalid config")
)
