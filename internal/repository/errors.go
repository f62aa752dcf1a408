// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios without inspecting SQL driver errors directly.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking exists for the given
// id or code. Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTransactionNotFound is returned when no payment transaction exists
// for the given gateway transaction id. The webhook processor
// translates this into a TRANSACTION_NOT_FOUND outcome.
var ErrTransactionNotFound = errors.New("payment transaction not found")

// ErrDuplicateWebhook is returned when inserting a webhook log row
// whose payload hash already exists. The unique index on payload_hash
// is the mutual-exclusion primitive of the webhook processor: a caller
// receiving this error lost the claim race and must not execute any
// business effects.
var ErrDuplicateWebhook = errors.New("webhook payload already claimed")
