package prompush

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"injuryreport/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "valid", jobName: "injury", gatewayURL: "http://pushgateway:9091", wantJobName: "injury"},
		{name: "default job name", jobName: "", gatewayURL: "http://pushgateway:9091", wantJobName: "injuryreport"},
		{name: "missing gateway", jobName: "injury", gatewayURL: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewBackend() = nil error, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Errorf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounterRouting(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("injury", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter("report_rows_total", 42, metrics.Labels{"kind": "parsed"})
	b.IncCounter("report_tables_total", 3, nil)
	b.IncCounter("no_such_metric", 1, nil)

	if got := readCounterValue(t, b.rowCounter.WithLabelValues("parsed")); got != 42 {
		t.Errorf("report_rows_total{kind=parsed} = %v, want 42", got)
	}
	if got := readCounterValue(t, b.tableCounter); got != 3 {
		t.Errorf("report_tables_total = %v, want 3", got)
	}
}

func TestFlushPushes(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("injury", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter("report_stage_total", 1, metrics.Labels{"stage": "load", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if gotPath != "/metrics/job/injury" {
		t.Errorf("push path = %q, want /metrics/job/injury", gotPath)
	}
}
