package domain

import "time"

const (
	MinMoodValue = 1
	MaxMoodValue = 10
)

// MoodEntry is one ordinal mood check-in.
type MoodEntry struct {
	ID       MoodEntryID `json:"id"`
	UserID   UserID      `json:"user_id"`
	Value    int         `json:"value"`
	Note     string      `json:"note,omitempty"`
	LoggedAt time.Time   `json:"logged_at"`
}

// MoodStats aggregates mood values over a range.
type MoodStats struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Min          int         `json:"min"`
	Max          int         `json:"max"`
	StdDev       float64     `json:"std_dev"`
	MostCommon   int         `json:"most_common"`
	Distribution map[int]int `json:"distribution"`
}

// DailySummary aggregates one calendar day. Days without entries are never synthesized.
type DailySummary struct {
	Date        string   `json:"date"`
	AverageMood float64  `json:"average_mood"`
	EntryCount  int      `json:"entry_count"`
	MinMood     int      `json:"min_mood"`
	MaxMood     int      `json:"max_mood"`
	Label       string   `json:"label"`
	Color       string   `json:"color"`
	Themes      []string `json:"themes,omitempty"`
}

// MoodScalePoint is the display mapping for one mood value.
type MoodScalePoint struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}
