package domain

import "time"

// ERSComponent names one sub-score of the Emotional Regulation Score.
type ERSComponent string

const (
	ComponentEmotionalAwareness ERSComponent = "emotional_awareness"
	ComponentInsightFrequency   ERSComponent = "insight_frequency"
	ComponentSentimentBalance   ERSComponent = "sentiment_balance"
	ComponentMoodLevel          ERSComponent = "mood_level"
	ComponentMoodStability      ERSComponent = "mood_stability"
	ComponentConsistency        ERSComponent = "consistency"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// ERSScore is one immutable point of a user's score time series.
type ERSScore struct {
	ID         ScoreID   `json:"id"`
	UserID     UserID    `json:"user_id"`
	ComputedAt time.Time `json:"computed_at"`
	// AsOf is the latest input timestamp the score was computed from.
	AsOf time.Time `json:"as_of"`

	Overall    float64                  `json:"overall"`
	Components map[ERSComponent]float64 `json:"components"`

	Trend           Trend    `json:"trend"`
	PreviousOverall *float64 `json:"previous_overall,omitempty"`

	Baseline       bool   `json:"baseline"`
	JournalCount   int    `json:"journal_count"`
	MoodCount      int    `json:"mood_count"`
	FormulaVersion string `json:"formula_version"`
}
