package model

import "errors"

// ErrValidation marks a request rejected before any store round trip.
var ErrValidation = errors.New("validation error")
