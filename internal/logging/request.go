// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type requestIDKey struct{}

// NewRequestID returns a fresh ULID string.
func NewRequestID() string {
	return ulid.Make().String()
}

// WithRequestID stores id in ctx for log enrichment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
