package journal_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PabloGalante/paceful/internal/adapters/storage/memory"
	"github.com/PabloGalante/paceful/internal/app/ers"
	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/sentiment"
	"github.com/PabloGalante/paceful/internal/domain"
)

type recordingTrigger struct {
	mu    sync.Mutex
	users []domain.UserID
	err   error
}

func (r *recordingTrigger) Trigger(_ context.Context, u domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return r.err
}

func newService(trigger domain.RecomputeTrigger) (*journal.Service, *memory.AnalysisStore) {
	analyses := memory.NewAnalysisStore()
	svc := journal.NewService(memory.NewJournalStore(), analyses, sentiment.NewRuleBased(), trigger)
	return svc, analyses
}

func TestCreateEntryStoresAnalysisAndTriggers(t *testing.T) {
	ctx := context.Background()
	trigger := &recordingTrigger{}
	svc, analyses := newService(trigger)

	got, err := svc.CreateEntry(ctx, "u1", "I am not anxious anymore, I feel grateful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Entry.ID == "" || got.Analysis == nil {
		t.Fatalf("expected entry with analysis, got %+v", got)
	}
	if got.Analysis.EntryID != got.Entry.ID || got.Analysis.UserID != "u1" {
		t.Fatalf("analysis not linked to entry: %+v", got.Analysis)
	}
	if !got.Analysis.EntryCreatedAt.Equal(got.Entry.CreatedAt) {
		t.Fatalf("analysis should carry the entry timestamp")
	}
	if !got.Analysis.HasMarker(domain.MarkerGratitude) {
		t.Fatalf("markers=%v, want gratitude", got.Analysis.Markers)
	}

	stored, err := analyses.GetAnalysisByEntry(ctx, "u1", got.Entry.ID)
	if err != nil {
		t.Fatalf("analysis not stored: %v", err)
	}
	if stored.Sentiment != got.Analysis.Sentiment {
		t.Fatalf("stored sentiment %s != %s", stored.Sentiment, got.Analysis.Sentiment)
	}

	if len(trigger.users) != 1 || trigger.users[0] != "u1" {
		t.Fatalf("trigger calls = %v", trigger.users)
	}
}

func TestCreateEntryRejectsBlankText(t *testing.T) {
	trigger := &recordingTrigger{}
	svc, _ := newService(trigger)

	for _, text := range []string{"", "   \n\t"} {
		_, err := svc.CreateEntry(context.Background(), "u1", text)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("text=%q: expected ErrInvalidInput, got %v", text, err)
		}
	}
	if len(trigger.users) != 0 {
		t.Fatalf("trigger should not fire for rejected entries")
	}
}

func TestCreateEntryRejectsInvalidUTF8(t *testing.T) {
	svc, _ := newService(nil)
	_, err := svc.CreateEntry(context.Background(), "u1", "bad \xff bytes")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLongEntryIsStoredAndAnalyzed(t *testing.T) {
	ctx := context.Background()
	svc, analyses := newService(nil)
	text := strings.Repeat("I feel calm today. ", 4000)

	preview, err := svc.Analyze(ctx, text)
	if err != nil {
		t.Fatalf("analyze long text: %v", err)
	}
	got, err := svc.CreateEntry(ctx, "u1", text)
	if err != nil {
		t.Fatalf("create long entry: %v", err)
	}
	if len(got.Entry.Text) != len(text) {
		t.Fatalf("stored text truncated to %d bytes", len(got.Entry.Text))
	}
	if got.Analysis.Sentiment != preview.Sentiment || got.Analysis.EmotionCount("calm") == 0 {
		t.Fatalf("unexpected analysis %+v", got.Analysis)
	}
	if _, err := analyses.GetAnalysisByEntry(ctx, "u1", got.Entry.ID); err != nil {
		t.Fatalf("analysis not stored: %v", err)
	}
}

func TestCreateEntryIgnoresTriggerFailure(t *testing.T) {
	svc, _ := newService(&recordingTrigger{err: domain.ErrStorageUnavailable})
	if _, err := svc.CreateEntry(context.Background(), "u1", "Today was calm."); err != nil {
		t.Fatalf("trigger failure should not fail the write: %v", err)
	}
}

func TestListEntriesPairsAnalyses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)

	texts := []string{"I feel hopeful.", "Work was stressful.", "Grateful for a quiet evening."}
	for _, text := range texts {
		if _, err := svc.CreateEntry(ctx, "u1", text); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.CreateEntry(ctx, "u2", "Someone else's day."); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListEntries(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(texts) {
		t.Fatalf("expected %d entries, got %d", len(texts), len(list))
	}
	for i, item := range list {
		if item.Entry.Text != texts[i] {
			t.Fatalf("entry %d = %q, want %q", i, item.Entry.Text, texts[i])
		}
		if item.Analysis == nil || item.Analysis.EntryID != item.Entry.ID {
			t.Fatalf("entry %d missing its analysis", i)
		}
	}

	last, err := svc.ListEntries(ctx, "u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 || last[0].Entry.Text != texts[2] {
		t.Fatalf("limit should keep the newest entry, got %+v", last)
	}
}

func TestGetEntryAndReanalyze(t *testing.T) {
	ctx := context.Background()
	trigger := &recordingTrigger{}
	svc, _ := newService(trigger)

	created, err := svc.CreateEntry(ctx, "u1", "I realized I can handle this.")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetEntry(ctx, "u1", created.Entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Analysis == nil || got.Analysis.Sentiment != created.Analysis.Sentiment {
		t.Fatalf("GetEntry analysis mismatch: %+v", got.Analysis)
	}

	if _, err := svc.GetEntry(ctx, "someone-else", created.Entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}

	again, err := svc.Reanalyze(ctx, "u1", created.Entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Analysis.Valence != created.Analysis.Valence {
		t.Fatalf("reanalysis with the same lexicon changed valence")
	}
	if len(trigger.users) != 2 {
		t.Fatalf("expected a trigger per write, got %d", len(trigger.users))
	}
}

// An analyzed entry feeds the ERS calculation end to end.
func TestEntryFeedsERS(t *testing.T) {
	ctx := context.Background()
	analyses := memory.NewAnalysisStore()
	scores := memory.NewScoreStore()
	ersSvc := ers.NewService(analyses, memory.NewMoodStore(), scores)
	svc := journal.NewService(memory.NewJournalStore(), analyses, sentiment.NewRuleBased(), ers.NewSyncTrigger(ersSvc))

	if _, err := svc.CreateEntry(ctx, "u1", "I am not anxious anymore, I feel grateful"); err != nil {
		t.Fatal(err)
	}
	score, err := scores.LatestScore(ctx, "u1")
	if err != nil {
		t.Fatalf("expected an ers score after the write: %v", err)
	}
	if score.Baseline || score.JournalCount != 1 {
		t.Fatalf("unexpected score: %+v", score)
	}
	if score.Components[domain.ComponentInsightFrequency] != 100 {
		t.Fatalf("insight frequency = %v, want 100", score.Components[domain.ComponentInsightFrequency])
	}
}
