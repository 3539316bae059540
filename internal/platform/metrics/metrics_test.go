package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest(http.MethodGet, "/api/contacts", http.StatusOK, 20*time.Millisecond)
	c.RecordRequest(http.MethodGet, "/api/contacts", http.StatusOK, 10*time.Millisecond)

	got := testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/api/contacts", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
}

func TestCollectorRecordsAuthOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("google", "succeeded")
	c.RecordRejectedCredential("missing")
	c.RecordRejectedCredential("missing")

	if got := testutil.ToFloat64(c.logins.WithLabelValues("google", "succeeded")); got != 1 {
		t.Fatalf("expected 1 login, got %v", got)
	}
	if got := testutil.ToFloat64(c.credentials.WithLabelValues("missing")); got != 2 {
		t.Fatalf("expected 2 rejections, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin("github", "failed")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "contactbook_oauth_logins_total") {
		t.Fatalf("expected login counter in output")
	}
}
