package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/PabloGalante/paceful/internal/domain"
)

type journalRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"not null;index:idx_journal_user_created,priority:1;size:128"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_journal_user_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (journalRow) TableName() string { return "journal_entry" }

func journalFromDomain(e *domain.JournalEntry) *journalRow {
	return &journalRow{
		ID:        string(e.ID),
		UserID:    string(e.UserID),
		Text:      e.Text,
		CreatedAt: e.CreatedAt.UTC(),
		UpdatedAt: e.UpdatedAt.UTC(),
	}
}

func (r *journalRow) toDomain() *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:        domain.JournalEntryID(r.ID),
		UserID:    domain.UserID(r.UserID),
		Text:      r.Text,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type analysisRow struct {
	EntryID        string    `gorm:"primaryKey;size:64"`
	UserID         string    `gorm:"not null;index:idx_analysis_user_created,priority:1;size:128"`
	EntryCreatedAt time.Time `gorm:"not null;index:idx_analysis_user_created,priority:2"`
	AnalyzedAt     time.Time `gorm:"not null"`
	Analyzer       string    `gorm:"not null;size:64"`
	LexiconVersion string    `gorm:"size:32"`
	Sentiment      string    `gorm:"not null;size:16"`
	Valence        float64
	RawValence     float64
	Emotions       datatypes.JSON
	Markers        datatypes.JSON
	NotablePhrases datatypes.JSON
	WordCount      int
}

func (analysisRow) TableName() string { return "journal_analysis" }

func analysisFromDomain(a *domain.AnalysisResult) (*analysisRow, error) {
	emotions, err := json.Marshal(a.Emotions)
	if err != nil {
		return nil, err
	}
	markers, err := json.Marshal(a.Markers)
	if err != nil {
		return nil, err
	}
	phrases, err := json.Marshal(a.NotablePhrases)
	if err != nil {
		return nil, err
	}
	return &analysisRow{
		EntryID:        string(a.EntryID),
		UserID:         string(a.UserID),
		EntryCreatedAt: a.EntryCreatedAt.UTC(),
		AnalyzedAt:     a.AnalyzedAt.UTC(),
		Analyzer:       a.Analyzer,
		LexiconVersion: a.LexiconVersion,
		Sentiment:      string(a.Sentiment),
		Valence:        a.Valence,
		RawValence:     a.RawValence,
		Emotions:       datatypes.JSON(emotions),
		Markers:        datatypes.JSON(markers),
		NotablePhrases: datatypes.JSON(phrases),
		WordCount:      a.WordCount,
	}, nil
}

func (r *analysisRow) toDomain() (*domain.AnalysisResult, error) {
	a := &domain.AnalysisResult{
		EntryID:        domain.JournalEntryID(r.EntryID),
		UserID:         domain.UserID(r.UserID),
		EntryCreatedAt: r.EntryCreatedAt.UTC(),
		AnalyzedAt:     r.AnalyzedAt.UTC(),
		Analyzer:       r.Analyzer,
		LexiconVersion: r.LexiconVersion,
		Sentiment:      domain.SentimentLevel(r.Sentiment),
		Valence:        r.Valence,
		RawValence:     r.RawValence,
		Emotions:       []domain.EmotionTag{},
		Markers:        []domain.InsightMarker{},
		NotablePhrases: []domain.NotablePhrase{},
		WordCount:      r.WordCount,
	}
	if err := unmarshalJSON(r.Emotions, &a.Emotions); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Markers, &a.Markers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.NotablePhrases, &a.NotablePhrases); err != nil {
		return nil, err
	}
	return a, nil
}

type moodRow struct {
	ID       string    `gorm:"primaryKey;size:64"`
	UserID   string    `gorm:"not null;index:idx_mood_user_logged,priority:1;size:128"`
	Value    int       `gorm:"not null"`
	Note     string
	LoggedAt time.Time `gorm:"not null;index:idx_mood_user_logged,priority:2"`
}

func (moodRow) TableName() string { return "mood_entry" }

func (r *moodRow) toDomain() *domain.MoodEntry {
	return &domain.MoodEntry{
		ID:       domain.MoodEntryID(r.ID),
		UserID:   domain.UserID(r.UserID),
		Value:    r.Value,
		Note:     r.Note,
		LoggedAt: r.LoggedAt.UTC(),
	}
}

// Seq orders scores inserted within the same clock tick.
type scoreRow struct {
	Seq             uint      `gorm:"primaryKey;autoIncrement"`
	ID              string    `gorm:"uniqueIndex;size:64"`
	UserID          string    `gorm:"not null;index:idx_score_user_seq,priority:1;size:128"`
	ComputedAt      time.Time `gorm:"not null"`
	AsOf            time.Time
	Overall         float64
	Components      datatypes.JSON
	Trend           string `gorm:"size:16"`
	PreviousOverall *float64
	Baseline        bool
	JournalCount    int
	MoodCount       int
	FormulaVersion  string `gorm:"size:16"`
}

func (scoreRow) TableName() string { return "ers_score" }

func scoreFromDomain(s *domain.ERSScore) (*scoreRow, error) {
	components, err := json.Marshal(s.Components)
	if err != nil {
		return nil, err
	}
	return &scoreRow{
		ID:              string(s.ID),
		UserID:          string(s.UserID),
		ComputedAt:      s.ComputedAt.UTC(),
		AsOf:            s.AsOf.UTC(),
		Overall:         s.Overall,
		Components:      datatypes.JSON(components),
		Trend:           string(s.Trend),
		PreviousOverall: s.PreviousOverall,
		Baseline:        s.Baseline,
		JournalCount:    s.JournalCount,
		MoodCount:       s.MoodCount,
		FormulaVersion:  s.FormulaVersion,
	}, nil
}

func (r *scoreRow) toDomain() (*domain.ERSScore, error) {
	s := &domain.ERSScore{
		ID:              domain.ScoreID(r.ID),
		UserID:          domain.UserID(r.UserID),
		ComputedAt:      r.ComputedAt.UTC(),
		AsOf:            r.AsOf.UTC(),
		Overall:         r.Overall,
		Components:      map[domain.ERSComponent]float64{},
		Trend:           domain.Trend(r.Trend),
		PreviousOverall: r.PreviousOverall,
		Baseline:        r.Baseline,
		JournalCount:    r.JournalCount,
		MoodCount:       r.MoodCount,
		FormulaVersion:  r.FormulaVersion,
	}
	if err := unmarshalJSON(r.Components, &s.Components); err != nil {
		return nil, err
	}
	return s, nil
}

func unmarshalJSON(raw datatypes.JSON, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
