// Package services holds the application logic between the HTTP boundary and
// the store: the chat response composer and scheme catalogue access.
//
// Errors declared here are returned for predictable failures so handlers can
// map them to status codes with errors.Is.
package services

import "errors"

var (
	// ErrSchemeNotFound indicates that no scheme has the requested id.
	ErrSchemeNotFound = errors.New("scheme not found")

	// ErrMessageTooLong is returned when a chat message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrInvalidScheme wraps validation failures on scheme creation.
	ErrInvalidScheme = errors.New("invalid scheme")

	// ErrIdempotencyKeyReused is returned when an Idempotency-Key that is
	// still live arrives with a different request body.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")
)
