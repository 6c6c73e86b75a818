package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PabloGalante/paceful/internal/domain"
)

type JournalStore struct {
	db *gorm.DB
}

func (s *JournalStore) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: journal entry needs a user id", domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	return wrapErr("append journal entry", s.db.WithContext(ctx).Create(journalFromDomain(entry)).Error)
}

func (s *JournalStore) GetJournalEntry(ctx context.Context, userID domain.UserID, id domain.JournalEntryID) (*domain.JournalEntry, error) {
	var row journalRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", string(id), string(userID)).
		First(&row).Error
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("journal entry %s", id), err)
	}
	return row.toDomain(), nil
}

func (s *JournalStore) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", string(userID)).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []journalRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapErr("list journal entries", err)
	}
	out := make([]*domain.JournalEntry, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = rows[i].toDomain()
	}
	return out, nil
}

type AnalysisStore struct {
	db *gorm.DB
}

// SaveAnalysis upserts on the entry id.
func (s *AnalysisStore) SaveAnalysis(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.EntryID == "" || result.UserID == "" {
		return fmt.Errorf("%w: analysis needs entry and user ids", domain.ErrInvalidInput)
	}
	row, err := analysisFromDomain(result)
	if err != nil {
		return fmt.Errorf("%w: encode analysis: %v", domain.ErrInvalidInput, err)
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
	return wrapErr("save analysis", err)
}

func (s *AnalysisStore) GetAnalysisByEntry(ctx context.Context, userID domain.UserID, entryID domain.JournalEntryID) (*domain.AnalysisResult, error) {
	var row analysisRow
	err := s.db.WithContext(ctx).
		Where("entry_id = ? AND user_id = ?", string(entryID), string(userID)).
		First(&row).Error
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("analysis for entry %s", entryID), err)
	}
	a, err := row.toDomain()
	if err != nil {
		return nil, wrapErr("decode analysis", err)
	}
	return a, nil
}

func (s *AnalysisStore) ListAnalysesByUser(ctx context.Context, userID domain.UserID, since time.Time, limit int) ([]*domain.AnalysisResult, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", string(userID))
	if !since.IsZero() {
		q = q.Where("entry_created_at >= ?", since.UTC())
	}
	q = q.Order("entry_created_at DESC").Order("entry_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []analysisRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapErr("list analyses", err)
	}
	out := make([]*domain.AnalysisResult, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, wrapErr("decode analysis", err)
		}
		out[len(rows)-1-i] = a
	}
	return out, nil
}

type MoodStore struct {
	db *gorm.DB
}

func (s *MoodStore) AppendMoodEntry(ctx context.Context, entry *domain.MoodEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: mood entry needs a user id", domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = domain.MoodEntryID(uuid.NewString())
	}
	row := &moodRow{
		ID:       string(entry.ID),
		UserID:   string(entry.UserID),
		Value:    entry.Value,
		Note:     entry.Note,
		LoggedAt: entry.LoggedAt.UTC(),
	}
	return wrapErr("append mood entry", s.db.WithContext(ctx).Create(row).Error)
}

func (s *MoodStore) ListMoodEntriesByUser(ctx context.Context, userID domain.UserID, from, to time.Time, limit int) ([]*domain.MoodEntry, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", string(userID))
	if !from.IsZero() {
		q = q.Where("logged_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("logged_at < ?", to.UTC())
	}
	q = q.Order("logged_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []moodRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapErr("list mood entries", err)
	}
	out := make([]*domain.MoodEntry, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = rows[i].toDomain()
	}
	return out, nil
}

type ScoreStore struct {
	db *gorm.DB
}

func (s *ScoreStore) AppendScore(ctx context.Context, score *domain.ERSScore) error {
	if score == nil || score.UserID == "" {
		return fmt.Errorf("%w: score needs a user id", domain.ErrInvalidInput)
	}
	if score.ID == "" {
		score.ID = domain.ScoreID(uuid.NewString())
	}
	row, err := scoreFromDomain(score)
	if err != nil {
		return fmt.Errorf("%w: encode score: %v", domain.ErrInvalidInput, err)
	}
	return wrapErr("append ers score", s.db.WithContext(ctx).Create(row).Error)
}

func (s *ScoreStore) LatestScore(ctx context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	var row scoreRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", string(userID)).
		Order("seq DESC").
		First(&row).Error
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("ers score for %s", userID), err)
	}
	sc, err := row.toDomain()
	if err != nil {
		return nil, wrapErr("decode score", err)
	}
	return sc, nil
}

func (s *ScoreStore) ListScores(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ERSScore, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", string(userID)).
		Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []scoreRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapErr("list ers scores", err)
	}
	out := make([]*domain.ERSScore, len(rows))
	for i := range rows {
		sc, err := rows[i].toDomain()
		if err != nil {
			return nil, wrapErr("decode score", err)
		}
		out[len(rows)-1-i] = sc
	}
	return out, nil
}
