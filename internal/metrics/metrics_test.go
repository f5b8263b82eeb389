package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpstream("votes_page", 200, 10*time.Millisecond)
	m.ObserveUpstream("votes_page", 200, 10*time.Millisecond)
	m.ObserveUpstream("votes_page", 0, time.Millisecond)
	m.ObserveResolution("probe")
	m.ObserveList("symbolic")

	if got := promtest.ToFloat64(m.upstreamRequests.WithLabelValues("votes_page", "200")); got != 2 {
		t.Errorf("upstream 200 count = %v, want 2", got)
	}
	if got := promtest.ToFloat64(m.upstreamRequests.WithLabelValues("votes_page", "error")); got != 1 {
		t.Errorf("upstream error count = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.resolutions.WithLabelValues("probe")); got != 1 {
		t.Errorf("probe resolutions = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.listOutcomes.WithLabelValues("symbolic")); got != 1 {
		t.Errorf("symbolic outcomes = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveUpstream("vote", 200, time.Second)
	m.ObserveResolution("match")
	m.ObservePages(3)
	m.ObserveList("rows")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil Handler() status = %d, want 404", rec.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObservePages(2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "rollcall_vote_pages_fetched_count 1") {
		t.Errorf("metrics output missing page histogram:\n%s", body)
	}
}
