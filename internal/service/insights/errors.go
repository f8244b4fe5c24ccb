package insights

import "errors"

// Sentinel errors for the insights service layer.
var (
	ErrNotFound   = errors.New("subscriber not found")
	ErrValidation = errors.New("invalid input")
)
