// Package ers computes the Emotional Regulation Score from analyzed journal
// entries and mood check-ins, and persists it as an append-only time series.
package ers

import (
	"math"
	"sort"
	"time"

	"github.com/PabloGalante/paceful/internal/app/mood"
	"github.com/PabloGalante/paceful/internal/domain"
)

// Input is one user's history. Order does not matter.
type Input struct {
	Analyses []*domain.AnalysisResult
	Moods    []*domain.MoodEntry
}

// Result is a computed score before identity, timestamp and trend are assigned.
type Result struct {
	AsOf         time.Time
	Overall      float64
	Components   map[domain.ERSComponent]float64
	Baseline     bool
	JournalCount int
	MoodCount    int
}

// Calculate is a pure function of its input. Windows are anchored at the latest
// input timestamp so the result does not depend on the wall clock.
func Calculate(in Input) Result {
	analyses := sortedAnalyses(in.Analyses)
	moods := sortedMoods(in.Moods)

	if len(analyses) == 0 && len(moods) == 0 {
		return baselineResult()
	}

	asOf := latest(analyses, moods)

	journal := analysesSince(analyses, asOf.Add(-JournalLookback))
	if len(journal) > MaxJournalAnalyses {
		journal = journal[len(journal)-MaxJournalAnalyses:]
	}
	monthMoods := moodsSince(moods, asOf.Add(-MoodLookback))
	if len(monthMoods) > MaxMoodEntries {
		monthMoods = monthMoods[len(monthMoods)-MaxMoodEntries:]
	}
	recentMoods := moodsSince(monthMoods, asOf.Add(-RecentWindow))

	components := map[domain.ERSComponent]float64{}

	if len(journal) > 0 {
		components[domain.ComponentEmotionalAwareness] = emotionalAwareness(journal)
		components[domain.ComponentInsightFrequency] = insightFrequency(journal)
		components[domain.ComponentSentimentBalance] = sentimentBalance(journal)
	} else {
		components[domain.ComponentEmotionalAwareness] = NeutralComponent
		components[domain.ComponentInsightFrequency] = NeutralComponent
		components[domain.ComponentSentimentBalance] = NeutralComponent
	}

	if len(recentMoods) > 0 {
		components[domain.ComponentMoodLevel] = moodLevel(recentMoods)
		components[domain.ComponentMoodStability] = moodStability(recentMoods)
	} else {
		components[domain.ComponentMoodLevel] = NeutralComponent
		components[domain.ComponentMoodStability] = NeutralComponent
	}

	components[domain.ComponentConsistency] = consistency(analyses, moods, asOf)

	return Result{
		AsOf:         asOf,
		Overall:      Overall(components),
		Components:   components,
		JournalCount: len(journal),
		MoodCount:    len(monthMoods),
	}
}

func baselineResult() Result {
	components := make(map[domain.ERSComponent]float64, len(Weights))
	for _, w := range Weights {
		components[w.Name] = NeutralComponent
	}
	return Result{
		Overall:    Overall(components),
		Components: components,
		Baseline:   true,
	}
}

// 100 * (0.7 * share of entries naming an emotion + 0.3 * vocabulary breadth)
func emotionalAwareness(journal []*domain.AnalysisResult) float64 {
	withEmotion := 0
	distinct := map[string]struct{}{}
	for _, a := range journal {
		if len(a.Emotions) > 0 {
			withEmotion++
		}
		for _, e := range a.Emotions {
			distinct[e.Emotion] = struct{}{}
		}
	}
	share := float64(withEmotion) / float64(len(journal))
	breadth := math.Min(float64(len(distinct))/vocabularyTarget, 1)
	return round2(clamp100(100 * (0.7*share + 0.3*breadth)))
}

// share of entries carrying at least one insight marker
func insightFrequency(journal []*domain.AnalysisResult) float64 {
	withMarker := 0
	for _, a := range journal {
		if len(a.Markers) > 0 {
			withMarker++
		}
	}
	return round2(clamp100(100 * float64(withMarker) / float64(len(journal))))
}

// mean normalized valence mapped from [-1, 1] to [0, 100]
func sentimentBalance(journal []*domain.AnalysisResult) float64 {
	var sum float64
	for _, a := range journal {
		sum += a.Valence
	}
	return round2(clamp100(50 * (1 + sum/float64(len(journal)))))
}

// mean of the recent window mapped from the mood scale to [0, 100]
func moodLevel(moods []*domain.MoodEntry) float64 {
	stats, err := mood.CalculateMoodStats(moods, time.Time{}, time.Time{})
	if err != nil || stats.Count == 0 {
		return NeutralComponent
	}
	// the exact mean, Average is rounded for display
	var sum float64
	for v, n := range stats.Distribution {
		sum += float64(v * n)
	}
	mean := sum / float64(stats.Count)
	span := float64(domain.MaxMoodValue - domain.MinMoodValue)
	return round2(clamp100(100 * (mean - domain.MinMoodValue) / span))
}

// inverse of the spread of daily mean moods, days cut in UTC
func moodStability(moods []*domain.MoodEntry) float64 {
	days, err := mood.CalculateDailySummaries(moods, time.Time{}, time.Time{}, time.UTC, nil)
	if err != nil || len(days) < 2 {
		return NeutralComponent
	}

	var total float64
	for _, d := range days {
		total += d.AverageMood
	}
	mu := total / float64(len(days))
	var sq float64
	for _, d := range days {
		sq += (d.AverageMood - mu) * (d.AverageMood - mu)
	}
	sd := math.Sqrt(sq / float64(len(days)))
	return round2(clamp100(100 * (1 - math.Min(sd/maxMoodStdDev, 1))))
}

// share of the last RecentWindowDays UTC calendar days, the as-of day included,
// with any journal or mood activity
func consistency(analyses []*domain.AnalysisResult, moods []*domain.MoodEntry, asOf time.Time) float64 {
	dayStart, _ := mood.DayBounds(asOf, time.UTC)
	start := dayStart.AddDate(0, 0, -(RecentWindowDays - 1))
	inWindow := func(t time.Time) bool {
		return !t.Before(start) && !t.After(asOf)
	}

	active := map[string]struct{}{}
	for _, a := range analyses {
		if inWindow(a.EntryCreatedAt) {
			active[dayKey(a.EntryCreatedAt)] = struct{}{}
		}
	}
	for _, m := range moods {
		if inWindow(m.LoggedAt) {
			active[dayKey(m.LoggedAt)] = struct{}{}
		}
	}
	return round2(clamp100(100 * float64(len(active)) / RecentWindowDays))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func latest(analyses []*domain.AnalysisResult, moods []*domain.MoodEntry) time.Time {
	var t time.Time
	if n := len(analyses); n > 0 {
		t = analyses[n-1].EntryCreatedAt
	}
	if n := len(moods); n > 0 && moods[n-1].LoggedAt.After(t) {
		t = moods[n-1].LoggedAt
	}
	return t
}

// analysesSince keeps items strictly after cutoff. Input must be sorted.
func analysesSince(analyses []*domain.AnalysisResult, cutoff time.Time) []*domain.AnalysisResult {
	i := sort.Search(len(analyses), func(i int) bool {
		return analyses[i].EntryCreatedAt.After(cutoff)
	})
	return analyses[i:]
}

func moodsSince(moods []*domain.MoodEntry, cutoff time.Time) []*domain.MoodEntry {
	i := sort.Search(len(moods), func(i int) bool {
		return moods[i].LoggedAt.After(cutoff)
	})
	return moods[i:]
}

func sortedAnalyses(in []*domain.AnalysisResult) []*domain.AnalysisResult {
	out := make([]*domain.AnalysisResult, 0, len(in))
	for _, a := range in {
		if a != nil {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryCreatedAt.Before(out[j].EntryCreatedAt)
	})
	return out
}

func sortedMoods(in []*domain.MoodEntry) []*domain.MoodEntry {
	out := make([]*domain.MoodEntry, 0, len(in))
	for _, m := range in {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt.Before(out[j].LoggedAt)
	})
	return out
}
