// Package analytics derives trends, patterns, correlations, triggers and
// improvement metrics from the mood entry history.
package analytics

import (
	"fmt"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
	"go.uber.org/zap"
)

// Encrypter encrypts a JSON-serializable value
type Encrypter interface {
	Encrypt(v any) (string, error)
}

// Engine computes DerivedMetrics. It holds no entry state; each call recomputes from its input.
type Engine struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewEngine creates an engine. Either argument may be nil.
func NewEngine(logger *zap.Logger, metrics *Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, metrics: metrics}
}

// Analyze computes every derived metric for entries. The caller's slice is not reordered.
func (e *Engine) Analyze(entries []models.MoodEntry, now time.Time) models.DerivedMetrics {
	start := time.Now()
	sorted := sortedByDate(entries)

	derived := models.DerivedMetrics{
		EntryCount:         len(sorted),
		AsOf:               now,
		MoodTrends:         MoodTrends(sorted),
		ActivityPatterns:   ActivityPatternsFor(sorted),
		SleepCorrelations:  SleepCorrelations(sorted),
		TriggerAnalysis:    Triggers(sorted),
		ImprovementMetrics: Improvement(sorted, now),
		Baseline:           ComputeBaseline(sorted),
	}

	elapsed := time.Since(start)
	e.metrics.RecordAnalysis(elapsed, len(sorted))
	e.logger.Debug("analytics_computed",
		zap.Int("entries", len(sorted)),
		zap.Duration("duration", elapsed),
		zap.Bool("insufficient_data", derived.ImprovementMetrics.InsufficientData),
	)
	return derived
}

// Insights analyzes entries and thresholds the result into statements
func (e *Engine) Insights(entries []models.MoodEntry, now time.Time) []models.Insight {
	return Insights(e.Analyze(entries, now))
}

// ExportDocument is the plaintext shape of an analytics export
type ExportDocument struct {
	Metrics    models.DerivedMetrics `json:"metrics"`
	RealTime   SessionSnapshot       `json:"realTime"`
	ExportDate time.Time             `json:"exportDate"`
}

// Export encrypts the derived metrics and session snapshot into a portable blob
func (e *Engine) Export(enc Encrypter, derived models.DerivedMetrics, session SessionSnapshot, now time.Time) (string, error) {
	blob, err := enc.Encrypt(ExportDocument{Metrics: derived, RealTime: session, ExportDate: now})
	if err != nil {
		return "", fmt.Errorf("failed to export analytics: %w", err)
	}
	e.logger.Info("analytics_exported", zap.Int("entries", derived.EntryCount))
	return blob, nil
}
