// Package transport holds the error vocabulary shared by the messaging
// capabilities (NATS client, event log, dispatcher, projection consumers)
// so callers can type-switch on failure class instead of string
// matching — ported from original_source/src/nats/error.rs's NatsError enum.
package transport

import "errors"

var (
	// ErrConnection is returned when the underlying NATS connection cannot
	// be established or has been lost.
	ErrConnection = errors.New("transport: connection error")
	// ErrSubscription is returned when subscribing to a subject fails.
	ErrSubscription = errors.New("transport: subscription error")
	// ErrTimeout classifies a blocking operation that exceeded its
	// deadline; no package in this module currently wraps it.
	ErrTimeout = errors.New("transport: operation timed out")
	// ErrConfiguration is returned for invalid or missing configuration.
	ErrConfiguration = errors.New("transport: configuration error")
)
