package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Transaction("purchase", "in")
	m.Rejection("record_transaction", "insufficient_stock")
	m.ConflictRetry()
	m.LowStock()
	m.FeedingEvent("ok")
	m.AuditDrift("t1", 2)
	m.LockWait(0.01)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transaction("purchase", "in")
	m.Transaction("purchase", "in")
	m.Rejection("record_transaction", "insufficient_stock")

	if got := testutil.ToFloat64(m.transactions.WithLabelValues("purchase", "in")); got != 2 {
		t.Errorf("transactions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("record_transaction", "insufficient_stock")); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).LowStock()
	s := NewServer(":0", reg, true)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "shelter_inventory_low_stock_events_total 1") {
		t.Errorf("/metrics missing low stock counter:\n%s", rec.Body.String())
	}
}
