package domain

import "time"

// JournalEntry is a free-text entry written by a user.
// The engine treats Text as input only; edits are the owner's business.
type JournalEntry struct {
	ID     JournalEntryID `json:"id"`
	UserID UserID         `json:"user_id"`
	Text   string         `json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
