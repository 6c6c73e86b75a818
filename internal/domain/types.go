package domain

import "time"

type UserID string
type JournalEntryID string
type MoodEntryID string
type ScoreID string

type Timestamp = time.Time
