package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetMetrics_Singleton(t *testing.T) {
	m1 := GetMetrics()
	m2 := GetMetrics()

	if m1 == nil {
		t.Fatal("GetMetrics() should not return nil")
	}
	if m1 != m2 {
		t.Error("GetMetrics() should return the same instance")
	}
}

func TestRecord(t *testing.T) {
	m := GetMetrics()

	// Must not panic
	m.RecordJob(5 * time.Millisecond)
	m.RecordInvocation(20 * time.Millisecond)
	m.QueueDepth.Set(3)
	m.ActiveInvocations.Inc()
	m.ActiveInvocations.Dec()
	m.PoolWorkers.Set(4)
}

func TestHandler_ExposesPoolMetrics(t *testing.T) {
	GetMetrics().RecordJob(time.Millisecond)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	for _, name := range []string{
		"blockmul_jobs_completed_total",
		"blockmul_job_duration_seconds",
		"blockmul_invocations_total",
		"blockmul_queue_depth",
		"blockmul_pool_workers",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
