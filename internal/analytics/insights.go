package analytics

import (
	"fmt"
	"math"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Insight types
const (
	InsightPositive    = "positive"
	InsightCorrelation = "correlation"
	InsightPattern     = "pattern"
	InsightWarning     = "warning"
	InsightStreak      = "streak"
	InsightInfo        = "info"
)

const (
	minInsightEntries = 3
	weeklyPatternGap  = 1
	notableStreak     = 3
)

// keepLogging replaces every other insight while the history is too short to analyze
var keepLogging = models.Insight{
	Type:        InsightInfo,
	Title:       "Sigue registrando",
	Description: "Continúa registrando tu estado de ánimo para obtener mejores insights.",
	Icon:        "📝",
}

// Insights thresholds the derived metrics into short statements. Fewer than
// three entries yield only the keep-logging insight.
func Insights(m models.DerivedMetrics) []models.Insight {
	if m.EntryCount < minInsightEntries {
		return []models.Insight{keepLogging}
	}
	insights := []models.Insight{}

	switch m.ImprovementMetrics.Trend {
	case models.TrendImproving:
		insights = append(insights, models.Insight{
			Type:        InsightPositive,
			Title:       "Tendencia Positiva",
			Description: "Tu estado de ánimo ha mostrado una mejora consistente en las últimas semanas.",
			Icon:        "📈",
		})
	case models.TrendDeclining:
		insights = append(insights, models.Insight{
			Type:        InsightWarning,
			Title:       "Tendencia a la Baja",
			Description: "Tu estado de ánimo ha bajado en las últimas semanas. Considera hablar con alguien de confianza.",
			Icon:        "📉",
		})
	}

	if m.SleepCorrelations.Strength == models.StrengthStrong {
		insights = append(insights, models.Insight{
			Type:        InsightCorrelation,
			Title:       "Correlación Sueño-Ánimo",
			Description: "Hay una fuerte relación entre tu calidad de sueño y tu estado de ánimo.",
			Icon:        "😴",
		})
	}

	weekday, weekend := m.ActivityPatterns.Weekday, m.ActivityPatterns.Weekend
	if weekday.Count > 0 && weekend.Count > 0 && math.Abs(weekday.Average-weekend.Average) > weeklyPatternGap {
		description := "Tu ánimo tiende a ser más bajo durante los fines de semana."
		if weekend.Average > weekday.Average {
			description = "Tu ánimo tiende a mejorar los fines de semana."
		}
		insights = append(insights, models.Insight{
			Type:        InsightPattern,
			Title:       "Patrón Semanal",
			Description: description,
			Icon:        "📅",
		})
	}

	if s := m.ImprovementMetrics.StreakAnalysis; s != nil && s.StreakType == models.StreakImproving && s.CurrentStreak >= notableStreak {
		insights = append(insights, models.Insight{
			Type:        InsightStreak,
			Title:       "Racha de Mejora",
			Description: fmt.Sprintf("Llevas %d registros seguidos mejorando tu ánimo.", s.CurrentStreak),
			Icon:        "🔥",
		})
	}

	return insights
}
