// Package context carries request correlation values across layers.
package context

import (
	stdctx "context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	routeKey
)

func WithRequestID(ctx stdctx.Context, requestID string) stdctx.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return stdctx.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx stdctx.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithRoute records the matched route template, e.g. "/api/chargebacks".
func WithRoute(ctx stdctx.Context, route string) stdctx.Context {
	route = strings.TrimSpace(route)
	if route == "" {
		return ctx
	}
	return stdctx.WithValue(ctx, routeKey, route)
}

func RouteFromContext(ctx stdctx.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(routeKey).(string)
	return value
}
