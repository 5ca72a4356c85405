package storage

import (
	"context"

	"unreal-mcp-go/internal/constants"
)

// withStorageTimeout adds StorageOpTimeout to ctx unless it already has a
// deadline.
func withStorageTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, constants.StorageOpTimeout)
}
