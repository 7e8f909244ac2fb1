package request

import "errors"

var (
	// ErrInternalServer is reported when a handler fails unexpectedly.
	ErrInternalServer = errors.New("internal server error")

	// ErrUnauthorized is reported when a request does not carry valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTooManyRequests is reported when a client is rate limited.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrInvalidBody is reported when a request body cannot be decoded.
	ErrInvalidBody = errors.New("invalid request body")
)
