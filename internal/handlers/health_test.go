package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthChecker(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		mode       string
		checks     map[string]CheckFunc
		wantStatus int
		wantBody   string
		wantChecks map[string]string
	}{
		{
			name:       "basic mode skips checks",
			checks:     map[string]CheckFunc{"storage": failing},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name:       "extended mode healthy",
			mode:       "extended",
			checks:     map[string]CheckFunc{"storage": healthy, "queue": healthy},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantChecks: map[string]string{"storage": "healthy", "queue": "healthy"},
		},
		{
			name:       "extended mode unhealthy",
			mode:       "extended",
			checks:     map[string]CheckFunc{"storage": healthy, "queue": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
			wantChecks: map[string]string{"storage": "healthy", "queue": "unhealthy: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker()
			for name, check := range tt.checks {
				h.AddCheck(name, check)
			}
			h.AddCheck("ignored", nil)

			path := "/healthz"
			if tt.mode != "" {
				path += "?mode=" + tt.mode
			}
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantBody)
			}
			if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
				t.Errorf("Timestamp '%s' is not valid RFC3339: %v", resp.Timestamp, err)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Fatalf("Checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("Checks[%s] = %q, want %q", name, resp.Checks[name], want)
				}
			}
		})
	}
}
