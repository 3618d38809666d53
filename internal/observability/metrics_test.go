package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHandshake("initiator", "daemon", "ok", "27", 3*time.Millisecond)
	RecordHandshake("responder", "inband", "unsupported_version", "", time.Millisecond)
}
