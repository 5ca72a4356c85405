package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatusClassAndOutcome(t *testing.T) {
	require.Equal(t, "2xx", StatusClass(204))
	require.Equal(t, "5xx", StatusClass(503))
	require.Equal(t, "unknown", StatusClass(0))
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "error", Outcome(errors.New("x")))
}

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("ping_test", "ok"))
	RecordCommand("ping_test", "ok", 10*time.Millisecond, 128)
	require.Equal(t, before+1, testutil.ToFloat64(CommandsTotal.WithLabelValues("ping_test", "ok")))
}

func TestRecordStorageOperation(t *testing.T) {
	before := testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("file", "save_run", "error"))
	RecordStorageOperation("file", "save_run", time.Millisecond, errors.New("disk full"))
	require.Equal(t, before+1, testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("file", "save_run", "error")))
}
