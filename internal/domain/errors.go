package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist for the given shop
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput wraps validation failures on domain entities
	ErrInvalidInput = errors.New("invalid input")

	// ErrShopNotConnected is returned when a shop has no usable access token
	ErrShopNotConnected = errors.New("shop not connected")
)
