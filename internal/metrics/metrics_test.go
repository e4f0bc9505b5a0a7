package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/habmon/habmon/internal/models"
)

func TestObserveTick(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ObserveTick(time.Millisecond, 3, nil)
	m.ObserveTick(time.Millisecond, 1, errors.New("one failed"))
	m.ObserveTick(time.Millisecond, 0, errors.New("all failed"))
	m.ObserveTick(time.Millisecond, 0, nil)

	tests := []struct {
		result string
		want   float64
	}{
		{ResultOK, 2},
		{ResultPartial, 1},
		{ResultError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.decayTicks.WithLabelValues(tt.result)); got != tt.want {
			t.Errorf("ticks{result=%q} = %v, want %v", tt.result, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(m.decayResourcesChanged); got != 4 {
		t.Errorf("resources changed = %v, want 4", got)
	}
}

func TestResourceGauges(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())
	ctx := context.Background()

	_ = m.OnResourceChanged(ctx, models.ResourceCard{Code: "WATER", CurrentPercentage: 42.5})
	_ = m.OnResourceChanged(ctx, models.ResourceCard{Code: "FOOD", CurrentPercentage: 3, IsCritical: true})

	if got := testutil.ToFloat64(m.resourcePercentage.WithLabelValues("WATER")); got != 42.5 {
		t.Errorf("WATER percentage = %v, want 42.5", got)
	}
	if got := testutil.ToFloat64(m.resourceCritical.WithLabelValues("FOOD")); got != 1 {
		t.Errorf("FOOD critical = %v, want 1", got)
	}

	_ = m.OnResourceDeleted(ctx, "FOOD")
	if got := testutil.CollectAndCount(m.resourceCritical); got != 1 {
		t.Errorf("critical series = %d, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.ObserveTick(time.Second, 1, nil)
	m.SetResources([]models.ResourceCard{{Code: "WATER"}})
	m.SubscriberAdded()
	m.EventPublished("resourceUpdate")
	m.DeliveryFailed("resourceUpdate")
	if err := m.OnResourceChanged(context.Background(), models.ResourceCard{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.SubscriberAdded()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "habmon_realtime_subscribers 1") {
		t.Errorf("expected subscriber gauge in output")
	}
}
