package zerolog

import (
	"context"

	"github.com/raykavin/stratbook/pkg/logger"
)

type ctxKey struct{}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback logger.Logger) logger.Logger {
	if l, ok := ctx.Value(ctxKey{}).(logger.Logger); ok && l != nil {
		return l
	}
	return fallback
}
