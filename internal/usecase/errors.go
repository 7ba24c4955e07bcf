package usecase

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("resource not found")
	ErrNotInitialized = errors.New("gateway not initialized")
	ErrRemoteFailure  = errors.New("remote call failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDecodeFailure  = errors.New("malformed credential or stored state")
)
