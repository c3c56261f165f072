package core

import (
	"context"
	"time"
)

// Context keys for run options
type contextKey string

const (
	suppressProgressKey contextKey = "suppressProgress"
	nowKey              contextKey = "now"
)

// WithSuppressProgress disables per-repository progress lines for callers that
// own stdout/stderr, such as the MCP server.
func WithSuppressProgress(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressProgressKey, true)
}

// shouldSuppressProgress returns whether progress lines should be suppressed from context
func shouldSuppressProgress(ctx context.Context) bool {
	val := ctx.Value(suppressProgressKey)
	if val == nil {
		return false // default: show progress
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withNow pins the reference time used to build monthly windows.
func withNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey, now)
}

// nowFrom returns the pinned reference time, or the wall clock.
func nowFrom(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey).(time.Time); ok {
		return now
	}
	return time.Now()
}
