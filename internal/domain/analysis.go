package domain

import (
	"context"
	"time"
)

// SentimentLevel is an ordered sentiment category. Use Rank to compare levels.
type SentimentLevel string

const (
	SentimentVeryNegative SentimentLevel = "very_negative"
	SentimentNegative     SentimentLevel = "negative"
	SentimentNeutral      SentimentLevel = "neutral"
	SentimentPositive     SentimentLevel = "positive"
	SentimentVeryPositive SentimentLevel = "very_positive"
)

// Rank returns -2..2 for known levels and 0 for anything else.
func (l SentimentLevel) Rank() int {
	switch l {
	case SentimentVeryNegative:
		return -2
	case SentimentNegative:
		return -1
	case SentimentPositive:
		return 1
	case SentimentVeryPositive:
		return 2
	default:
		return 0
	}
}

// ParseSentimentLevel accepts the canonical names only.
func ParseSentimentLevel(s string) (SentimentLevel, bool) {
	switch l := SentimentLevel(s); l {
	case SentimentVeryNegative, SentimentNegative, SentimentNeutral, SentimentPositive, SentimentVeryPositive:
		return l, true
	}
	return SentimentNeutral, false
}

// InsightMarker flags self-reflective or resolution-oriented language.
type InsightMarker string

const (
	MarkerRealization    InsightMarker = "realization"
	MarkerResolution     InsightMarker = "resolution"
	MarkerGratitude      InsightMarker = "gratitude"
	MarkerSelfReflection InsightMarker = "self_reflection"
	MarkerCoping         InsightMarker = "coping"
)

// MarkerOrder is the canonical order markers are reported in.
var MarkerOrder = []InsightMarker{
	MarkerRealization,
	MarkerResolution,
	MarkerGratitude,
	MarkerSelfReflection,
	MarkerCoping,
}

// EmotionTag counts the words that contributed to one emotion.
type EmotionTag struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// NotablePhrase is a surface phrase and the signed weight it contributed.
type NotablePhrase struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// AnalysisResult is derived from exactly one JournalEntry.
// It is replaced as a whole on reanalysis, never patched.
type AnalysisResult struct {
	EntryID        JournalEntryID `json:"entry_id,omitempty"`
	UserID         UserID         `json:"user_id,omitempty"`
	EntryCreatedAt time.Time      `json:"entry_created_at,omitempty"`
	AnalyzedAt     time.Time      `json:"analyzed_at,omitempty"`

	Analyzer       string `json:"analyzer"`
	LexiconVersion string `json:"lexicon_version"`

	Sentiment  SentimentLevel `json:"sentiment"`
	Valence    float64        `json:"valence"`
	RawValence float64        `json:"raw_valence"`

	Emotions       []EmotionTag    `json:"emotions"`
	Markers        []InsightMarker `json:"markers"`
	NotablePhrases []NotablePhrase `json:"notable_phrases"`

	WordCount int `json:"word_count"`
}

// HasMarker reports whether m was detected.
func (a *AnalysisResult) HasMarker(m InsightMarker) bool {
	for _, x := range a.Markers {
		if x == m {
			return true
		}
	}
	return false
}

// EmotionCount returns the count for emotion, 0 if absent.
func (a *AnalysisResult) EmotionCount(emotion string) int {
	for _, e := range a.Emotions {
		if e.Emotion == emotion {
			return e.Count
		}
	}
	return 0
}

// DominantEmotion is the highest-count emotion, or "" when none was detected.
func (a *AnalysisResult) DominantEmotion() string {
	if len(a.Emotions) == 0 {
		return ""
	}
	return a.Emotions[0].Emotion
}

// TextAnalyzer turns one entry's text into an AnalysisResult.
// Implementations must be deterministic for a fixed configuration and must not
// fail on any valid text; ErrInvalidInput is reserved for contract violations.
type TextAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, text string) (*AnalysisResult, error)
}
