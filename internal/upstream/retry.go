package upstream

import (
	"context"
	"math"
	"time"

	"unreal-mcp-go/internal/constants"
)

// backoff returns the wait before retry attempt (0-based): base * 2^attempt,
// capped at UpstreamMaxRetryDelay. Commands are never replayed once written,
// so no jitter is needed to spread load.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = constants.DefaultRetryDelay
	}
	d := float64(base) * math.Pow(constants.RetryBackoffFactor, float64(attempt))
	if d > float64(constants.UpstreamMaxRetryDelay) {
		return constants.UpstreamMaxRetryDelay
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
