package contract

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("item not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrSchemaViolation  = errors.New("model response violates schema")
	ErrDuplicateAgent   = errors.New("duplicate agent id")
)
