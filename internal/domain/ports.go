package domain

import (
	"context"
	"time"
)

// JournalStore defines the minimum operations to persist journal entries.
type JournalStore interface {
	AppendJournalEntry(ctx context.Context, entry *JournalEntry) error
	GetJournalEntry(ctx context.Context, userID UserID, id JournalEntryID) (*JournalEntry, error)
	// ListJournalEntriesByUser returns the last `limit` entries, oldest first.
	ListJournalEntriesByUser(ctx context.Context, userID UserID, limit int) ([]*JournalEntry, error)
}

// AnalysisStore keeps one AnalysisResult per journal entry.
type AnalysisStore interface {
	// SaveAnalysis replaces any previous result for the same entry.
	SaveAnalysis(ctx context.Context, result *AnalysisResult) error
	GetAnalysisByEntry(ctx context.Context, userID UserID, entryID JournalEntryID) (*AnalysisResult, error)
	// ListAnalysesByUser returns results whose entry was created at or after since
	// (zero means no bound), ordered by EntryCreatedAt ascending, capped to the
	// last `limit` results when limit > 0.
	ListAnalysesByUser(ctx context.Context, userID UserID, since time.Time, limit int) ([]*AnalysisResult, error)
}

// MoodStore defines mood entry persistence.
type MoodStore interface {
	AppendMoodEntry(ctx context.Context, entry *MoodEntry) error
	// ListMoodEntriesByUser returns entries with from <= LoggedAt < to, ordered by
	// LoggedAt ascending. Zero bounds are open. limit > 0 keeps the last `limit`.
	ListMoodEntriesByUser(ctx context.Context, userID UserID, from, to time.Time, limit int) ([]*MoodEntry, error)
}

// ScoreStore is the append-only ERS time series.
type ScoreStore interface {
	AppendScore(ctx context.Context, score *ERSScore) error
	// LatestScore returns ErrNotFound when the user has no score yet.
	LatestScore(ctx context.Context, userID UserID) (*ERSScore, error)
	// ListScores returns the last `limit` scores, oldest first.
	ListScores(ctx context.Context, userID UserID, limit int) ([]*ERSScore, error)
}

// RecomputeTrigger is notified whenever a user's ERS inputs change.
type RecomputeTrigger interface {
	Trigger(ctx context.Context, userID UserID) error
}
