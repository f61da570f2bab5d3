package internal

import (
	"context"
	"time"
)

// WithTimeout returns a context with a bounded timeout, defaulting to
// 5 seconds if duration is zero or negative. Store transactions run under
// one of these so no call can block indefinitely.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
