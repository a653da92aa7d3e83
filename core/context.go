package core

import "context"

// Context keys for analysis options
type contextKey string

const suppressProgressKey contextKey = "suppressProgress"

// WithSuppressProgress disables progress and header output for embedded
// callers (MCP, tests).
func WithSuppressProgress(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressProgressKey, true)
}

// shouldSuppressProgress returns whether progress output is suppressed.
func shouldSuppressProgress(ctx context.Context) bool {
	val := ctx.Value(suppressProgressKey)
	if val == nil {
		return false // default: show progress
	}
	suppress, ok := val.(bool)
	return ok && suppress
}
