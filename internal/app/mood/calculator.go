// Package mood aggregates mood check-ins: range statistics, per-day summaries
// and the value to label/color mapping used by display surfaces.
package mood

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PabloGalante/paceful/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	maxThemes  = 3
)

// CalculateMoodStats aggregates entries with from <= LoggedAt < to.
// Zero bounds are open. An empty range yields zero stats.
func CalculateMoodStats(entries []*domain.MoodEntry, from, to time.Time) (domain.MoodStats, error) {
	if err := validateRange(from, to); err != nil {
		return domain.MoodStats{}, err
	}

	stats := domain.MoodStats{Distribution: map[int]int{}}
	var sum float64
	for _, e := range entries {
		if e == nil || !inRange(e.LoggedAt, from, to) {
			continue
		}
		if err := ValidateValue(e.Value); err != nil {
			return domain.MoodStats{}, err
		}
		if stats.Count == 0 || e.Value < stats.Min {
			stats.Min = e.Value
		}
		if stats.Count == 0 || e.Value > stats.Max {
			stats.Max = e.Value
		}
		stats.Count++
		stats.Distribution[e.Value]++
		sum += float64(e.Value)
	}
	if stats.Count == 0 {
		return stats, nil
	}

	mean := sum / float64(stats.Count)
	var sq float64
	for v, n := range stats.Distribution {
		d := float64(v) - mean
		sq += d * d * float64(n)
	}
	stats.Average = round2(mean)
	stats.StdDev = round2(math.Sqrt(sq / float64(stats.Count)))

	best := 0
	for v := domain.MinMoodValue; v <= domain.MaxMoodValue; v++ {
		if n := stats.Distribution[v]; n > best {
			best = n
			stats.MostCommon = v
		}
	}
	return stats, nil
}

// ThemeExtractor names the dominant emotions of one day's notes.
type ThemeExtractor func(notes []string) []string

// AnalyzerThemes ranks the emotions analyzer detects across the notes, at most
// three. Notes the analyzer fails on are skipped.
func AnalyzerThemes(ctx context.Context, analyzer domain.TextAnalyzer) ThemeExtractor {
	return func(notes []string) []string {
		counts := map[string]int{}
		for _, n := range notes {
			res, err := analyzer.Analyze(ctx, n)
			if err != nil {
				continue
			}
			for _, e := range res.Emotions {
				counts[e.Emotion] += e.Count
			}
		}
		themes := make([]string, 0, len(counts))
		for e := range counts {
			themes = append(themes, e)
		}
		sort.Slice(themes, func(i, j int) bool {
			if counts[themes[i]] != counts[themes[j]] {
				return counts[themes[i]] > counts[themes[j]]
			}
			return themes[i] < themes[j]
		})
		if len(themes) > maxThemes {
			themes = themes[:maxThemes]
		}
		return themes
	}
}

// CalculateDailySummaries returns one summary per calendar day in loc, oldest first.
// Days without entries are omitted. A nil loc means UTC and a nil themes leaves
// Themes empty.
func CalculateDailySummaries(entries []*domain.MoodEntry, from, to time.Time, loc *time.Location, themes ThemeExtractor) ([]domain.DailySummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		sum   float64
		count int
		min   int
		max   int
		notes []string
	}
	buckets := map[string]*bucket{}

	for _, e := range sortedByTime(entries) {
		if !inRange(e.LoggedAt, from, to) {
			continue
		}
		if err := ValidateValue(e.Value); err != nil {
			return nil, err
		}
		day := e.LoggedAt.In(loc).Format(dateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{min: e.Value, max: e.Value}
			buckets[day] = b
		}
		b.sum += float64(e.Value)
		b.count++
		if e.Value < b.min {
			b.min = e.Value
		}
		if e.Value > b.max {
			b.max = e.Value
		}
		if note := strings.TrimSpace(e.Note); note != "" {
			b.notes = append(b.notes, note)
		}
	}

	days := make([]string, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]domain.DailySummary, 0, len(days))
	for _, d := range days {
		b := buckets[d]
		avg := b.sum / float64(b.count)
		label, color, err := LabelForAverage(avg)
		if err != nil {
			return nil, err
		}
		var dayThemes []string
		if themes != nil && len(b.notes) > 0 {
			dayThemes = themes(b.notes)
		}
		out = append(out, domain.DailySummary{
			Date:        d,
			AverageMood: round2(avg),
			EntryCount:  b.count,
			MinMood:     b.min,
			MaxMood:     b.max,
			Label:       label,
			Color:       color,
			Themes:      dayThemes,
		})
	}
	return out, nil
}

// GetEntriesForDate keeps the entries logged on the same calendar day as date in loc,
// ordered by LoggedAt. Entries with equal timestamps keep their input order.
func GetEntriesForDate(entries []*domain.MoodEntry, date time.Time, loc *time.Location) []*domain.MoodEntry {
	if loc == nil {
		loc = time.UTC
	}
	day := date.In(loc).Format(dateLayout)

	out := make([]*domain.MoodEntry, 0)
	for _, e := range sortedByTime(entries) {
		if e.LoggedAt.In(loc).Format(dateLayout) == day {
			out = append(out, e)
		}
	}
	return out
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses YYYY-MM-DD in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func sortedByTime(entries []*domain.MoodEntry) []*domain.MoodEntry {
	out := make([]*domain.MoodEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt.Before(out[j].LoggedAt)
	})
	return out
}

func validateRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("%w: range end %s before start %s",
			domain.ErrInvalidInput, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
