package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := Init(context.Background())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "upstream", "create_blueprint")
	require.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}
