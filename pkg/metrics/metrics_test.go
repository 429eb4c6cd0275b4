package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(promSubmissions.WithLabelValues("credit"))
	IncSubmission("credit")
	if got := testutil.ToFloat64(promSubmissions.WithLabelValues("credit")); got != before+1 {
		t.Fatalf("expected credit submissions to increment, got %v", got)
	}

	failBefore := testutil.ToFloat64(promPrimary.WithLabelValues("failure"))
	ObservePrimary(false, 0.2)
	if got := testutil.ToFloat64(promPrimary.WithLabelValues("failure")); got != failBefore+1 {
		t.Fatalf("expected primary failures to increment, got %v", got)
	}

	smtpBefore := testutil.ToFloat64(promSecondary.WithLabelValues("smtp", "sent"))
	IncSecondary("smtp", "sent")
	if got := testutil.ToFloat64(promSecondary.WithLabelValues("smtp", "sent")); got != smtpBefore+1 {
		t.Fatalf("expected smtp successes to increment, got %v", got)
	}
}

func TestHandlerExposesRelayMetrics(t *testing.T) {
	IncSubmission("order")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "relay_submissions_total") {
		t.Fatalf("metrics output missing relay counters")
	}
}
