package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/analytics"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/security"
)

type fixedSession struct{ snap analytics.SessionSnapshot }

func (f fixedSession) Snapshot() analytics.SessionSnapshot { return f.snap }

func newAnalyticsRouter(t *testing.T, session SessionSource) (http.Handler, *security.Cipher) {
	t.Helper()
	s := newTestStore(t)
	if _, err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	cipher := security.NewCipher(testSecret)
	h := NewAnalyticsHandler(s, analytics.NewEngine(nil, nil), session, cipher, nil)
	h.now = fixedNow
	return newTestRouter(h), cipher
}

func TestAnalyticsHandler_GetAnalytics(t *testing.T) {
	t.Parallel()
	router, _ := newAnalyticsRouter(t, nil)

	w := serve(t, router, http.MethodGet, "/api/v1/analytics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var derived models.DerivedMetrics
	decodeEnvelope(t, w, &derived)
	if derived.EntryCount != 6 {
		t.Errorf("EntryCount = %d, want 6", derived.EntryCount)
	}
	if len(derived.MoodTrends) != 6 {
		t.Errorf("len(MoodTrends) = %d, want 6", len(derived.MoodTrends))
	}
	if derived.MoodTrends[0].Date != "2024-07-15" {
		t.Errorf("first trend point = %s, want ascending order", derived.MoodTrends[0].Date)
	}
}

func TestAnalyticsHandler_GetInsights(t *testing.T) {
	t.Parallel()
	router, _ := newAnalyticsRouter(t, nil)

	w := serve(t, router, http.MethodGet, "/api/v1/insights", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var insights []models.Insight
	decodeEnvelope(t, w, &insights)
	if insights == nil {
		t.Error("insights should be a list, got null")
	}
}

func TestAnalyticsHandler_Session(t *testing.T) {
	t.Parallel()

	start := handlerNow.Add(-10 * time.Minute)
	router, _ := newAnalyticsRouter(t, fixedSession{snap: analytics.SessionSnapshot{
		SessionStart: start, Interactions: 3, FeaturesUsed: []string{"entries"},
	}})
	var snap analytics.SessionSnapshot
	decodeEnvelope(t, serve(t, router, http.MethodGet, "/api/v1/session", nil), &snap)
	if snap.Interactions != 3 || len(snap.FeaturesUsed) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	bare, _ := newAnalyticsRouter(t, nil)
	var empty analytics.SessionSnapshot
	decodeEnvelope(t, serve(t, bare, http.MethodGet, "/api/v1/session", nil), &empty)
	if empty.Interactions != 0 || empty.FeaturesUsed == nil {
		t.Errorf("snapshot without tracker = %+v", empty)
	}
}

func TestAnalyticsHandler_Export(t *testing.T) {
	t.Parallel()
	router, cipher := newAnalyticsRouter(t, fixedSession{snap: analytics.SessionSnapshot{Interactions: 7, FeaturesUsed: []string{}}})

	w := serve(t, router, http.MethodGet, "/api/v1/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Export     string `json:"export"`
		ExportDate string `json:"exportDate"`
	}
	decodeEnvelope(t, w, &resp)
	if resp.ExportDate != "2024-07-20T10:00:00Z" {
		t.Errorf("exportDate = %q", resp.ExportDate)
	}

	var doc analytics.ExportDocument
	if err := cipher.Decrypt(resp.Export, &doc); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if doc.Metrics.EntryCount != 6 {
		t.Errorf("exported EntryCount = %d, want 6", doc.Metrics.EntryCount)
	}
	if doc.RealTime.Interactions != 7 {
		t.Errorf("exported Interactions = %d, want 7", doc.RealTime.Interactions)
	}
	if !doc.ExportDate.Equal(handlerNow) {
		t.Errorf("exported ExportDate = %v", doc.ExportDate)
	}
}
