package ers

import (
	"math"
	"time"

	"github.com/PabloGalante/paceful/internal/domain"
)

// FormulaVersion identifies the constants below. Bump it when any of them change.
const FormulaVersion = "ers-v1"

const (
	JournalLookback  = 30 * 24 * time.Hour
	MoodLookback     = 30 * 24 * time.Hour
	RecentWindow     = 14 * 24 * time.Hour
	RecentWindowDays = 14

	MaxJournalAnalyses = 60
	MaxMoodEntries     = 240

	// distinct emotions needed for full vocabulary credit
	vocabularyTarget = 6
	// population stddev of daily means at which stability reaches 0
	maxMoodStdDev = 4.5

	NeutralComponent = 50.0
	BaselineOverall  = 50.0

	// |Δ overall| at or below this is "stable"
	TrendDeadBand = 0.5
)

type weightedComponent struct {
	Name   domain.ERSComponent
	Weight float64
}

// Weights sum to 1; the order fixes the summation order of Overall.
var Weights = []weightedComponent{
	{domain.ComponentEmotionalAwareness, 0.15},
	{domain.ComponentInsightFrequency, 0.20},
	{domain.ComponentSentimentBalance, 0.15},
	{domain.ComponentMoodLevel, 0.15},
	{domain.ComponentMoodStability, 0.20},
	{domain.ComponentConsistency, 0.15},
}

// Overall combines component values with Weights. Missing components count as 0.
func Overall(components map[domain.ERSComponent]float64) float64 {
	var total float64
	for _, w := range Weights {
		total += w.Weight * components[w.Name]
	}
	return round2(total)
}

// ClassifyTrend compares the new overall score with the previous one.
func ClassifyTrend(previous *float64, current float64) domain.Trend {
	if previous == nil {
		return domain.TrendStable
	}
	delta := current - *previous
	switch {
	case delta > TrendDeadBand:
		return domain.TrendImproving
	case delta < -TrendDeadBand:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
