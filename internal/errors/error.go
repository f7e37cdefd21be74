// Package errors provides custom error types for storefront operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrProductUnavailable = errors.New("product is not available")

var ErrCartItemNotFound = errors.New("cart item not found")
var ErrInsufficientStock = errors.New("not enough stock available")
var ErrAccessDenied = errors.New("access denied")
