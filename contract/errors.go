package contract

import "errors"

// The three failure kinds surfaced by the contract. They are returned as
// values, never panicked, and are kept distinct so callers can tell "not set
// up yet" from "not permitted".
var (
	ErrAlreadyInitialized = errors.New("contract already initialized")
	ErrNotInitialized     = errors.New("contract not initialized")
	ErrUnauthorized       = errors.New("caller is not the administrator")
)
