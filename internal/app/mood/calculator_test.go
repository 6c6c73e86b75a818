package mood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PabloGalante/paceful/internal/app/sentiment"
	"github.com/PabloGalante/paceful/internal/domain"
)

func entryAt(t time.Time, v int, note string) *domain.MoodEntry {
	return &domain.MoodEntry{
		ID:       domain.MoodEntryID(t.Format(time.RFC3339Nano)),
		UserID:   "u1",
		Value:    v,
		Note:     note,
		LoggedAt: t,
	}
}

func TestCalculateMoodStats(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []*domain.MoodEntry{
		entryAt(t0, 4, ""),
		entryAt(t0.Add(time.Hour), 6, ""),
		entryAt(t0.Add(2*time.Hour), 6, ""),
		entryAt(t0.Add(3*time.Hour), 8, ""),
	}

	stats, err := CalculateMoodStats(entries, time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 4 || stats.Average != 6 || stats.Min != 4 || stats.Max != 8 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	// population std dev of 4,6,6,8
	if stats.StdDev != 1.41 {
		t.Fatalf("std dev = %v, want 1.41", stats.StdDev)
	}
	if stats.MostCommon != 6 || stats.Distribution[6] != 2 {
		t.Fatalf("most common = %d, distribution = %v", stats.MostCommon, stats.Distribution)
	}
}

func TestCalculateMoodStatsRange(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []*domain.MoodEntry{
		entryAt(t0.Add(-time.Second), 1, ""),
		entryAt(t0, 5, ""),
		entryAt(t0.Add(24*time.Hour), 10, ""),
	}

	stats, err := CalculateMoodStats(entries, t0, t0.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 1 || stats.Average != 5 {
		t.Fatalf("range should be half open, got %+v", stats)
	}

	empty, err := CalculateMoodStats(nil, t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if empty.Count != 0 || empty.Average != 0 || empty.MostCommon != 0 {
		t.Fatalf("empty range should be zero, got %+v", empty)
	}

	_, err = CalculateMoodStats(entries, t0.Add(time.Hour), t0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("reversed range: expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculateMoodStatsRejectsOutOfScale(t *testing.T) {
	_, err := CalculateMoodStats([]*domain.MoodEntry{entryAt(time.Now(), 0, "")}, time.Time{}, time.Time{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculateDailySummaries(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	entries := []*domain.MoodEntry{
		entryAt(t0.Add(26*time.Hour), 9, "felt grateful and calm"),
		entryAt(t0, 3, "anxious about work"),
		entryAt(t0.Add(4*time.Hour), 4, ""),
		entryAt(t0.Add(25*time.Hour), 8, "calm morning"),
	}

	days, err := CalculateDailySummaries(entries, time.Time{}, time.Time{}, nil,
		AnalyzerThemes(context.Background(), sentiment.NewRuleBased()))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	first := days[0]
	if first.Date != "2024-03-01" || first.EntryCount != 2 || first.AverageMood != 3.5 {
		t.Fatalf("unexpected first day %+v", first)
	}
	if first.MinMood != 3 || first.MaxMood != 4 {
		t.Fatalf("min/max = %d/%d", first.MinMood, first.MaxMood)
	}
	// 3.5 rounds to 4
	if first.Label != "Uneasy" || first.Color != colors[4] {
		t.Fatalf("label = %q color = %q", first.Label, first.Color)
	}

	second := days[1]
	if second.Date != "2024-03-02" || second.AverageMood != 8.5 || second.Label != "Great" {
		t.Fatalf("unexpected second day %+v", second)
	}
	if len(second.Themes) == 0 || second.Themes[0] != "calm" {
		t.Fatalf("themes = %v, want calm first", second.Themes)
	}
}

func TestCalculateDailySummariesWithoutThemes(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	days, err := CalculateDailySummaries([]*domain.MoodEntry{entryAt(t0, 8, "calm morning")}, time.Time{}, time.Time{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || len(days[0].Themes) != 0 {
		t.Fatalf("nil extractor should leave themes empty, got %+v", days)
	}
}

type stubAnalyzer struct {
	calls int
}

func (s *stubAnalyzer) Name() string { return "stub" }

func (s *stubAnalyzer) Analyze(context.Context, string) (*domain.AnalysisResult, error) {
	s.calls++
	return &domain.AnalysisResult{Emotions: []domain.EmotionTag{{Emotion: "joy", Count: 1}}}, nil
}

func TestAnalyzerThemesUsesGivenAnalyzer(t *testing.T) {
	stub := &stubAnalyzer{}
	got := AnalyzerThemes(context.Background(), stub)([]string{"one", "two"})
	if stub.calls != 2 || len(got) != 1 || got[0] != "joy" {
		t.Fatalf("themes = %v after %d calls", got, stub.calls)
	}
}

func TestCalculateDailySummariesUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 02:00 UTC is the previous evening in New York
	at := time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC)
	days, err := CalculateDailySummaries([]*domain.MoodEntry{entryAt(at, 7, "")}, time.Time{}, time.Time{}, ny, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0].Date != "2024-03-01" {
		t.Fatalf("unexpected days %+v", days)
	}
}

func TestGetEntriesForDate(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := entryAt(t0, 5, "a")
	b := entryAt(t0, 6, "b")
	c := entryAt(t0.Add(-2*time.Hour), 7, "c")
	other := entryAt(t0.Add(24*time.Hour), 8, "other")

	got := GetEntriesForDate([]*domain.MoodEntry{a, other, b, c}, t0, time.UTC)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0] != c || got[1] != a || got[2] != b {
		t.Fatalf("entries should be ordered by time with ties kept in input order")
	}

	if none := GetEntriesForDate(nil, t0, nil); none == nil || len(none) != 0 {
		t.Fatalf("expected an empty, non-nil slice")
	}
}

func TestDayBoundsAndParseDate(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	start, end := DayBounds(at, nil)
	if !start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || end.Sub(start) != 24*time.Hour {
		t.Fatalf("bounds = %v..%v", start, end)
	}

	d, err := ParseDate(" 2024-03-01 ", time.UTC)
	if err != nil || !d.Equal(start) {
		t.Fatalf("ParseDate = %v, %v", d, err)
	}
	for _, bad := range []string{"", "2024-13-01", "01/03/2024"} {
		if _, err := ParseDate(bad, time.UTC); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("ParseDate(%q) expected ErrInvalidInput, got %v", bad, err)
		}
	}
}
