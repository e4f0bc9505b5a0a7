package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.Liveness(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr = httptest.NewRecorder()
	h.Readiness(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadinessDatabaseDown(t *testing.T) {
	h := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("database is closed") }), nil)
	rr := httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
