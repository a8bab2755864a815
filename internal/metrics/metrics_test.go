package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterOutcomeLabels(t *testing.T) {
	c := New()
	c.TransitionApplied()
	c.TransitionConflict()
	c.NotificationPublished("submitted")
	c.NotificationSuppressed("submitted")
	c.NotificationFailed("stage_changed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`hireline_transitions_total{outcome="applied"} 1`,
		`hireline_transition_conflicts_total 1`,
		`hireline_notifications_total{kind="submitted",outcome="published"} 1`,
		`hireline_notifications_total{kind="submitted",outcome="suppressed"} 1`,
		`hireline_notifications_total{kind="stage_changed",outcome="failed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.TransitionApplied()
	c.TransitionRejected()
	c.TransitionConflict()
	c.NotificationPublished("submitted")
	c.NotificationSuppressed("submitted")
	c.NotificationFailed("submitted")
	if c.Handler() == nil {
		t.Fatal("nil collector must still return a handler")
	}
}
