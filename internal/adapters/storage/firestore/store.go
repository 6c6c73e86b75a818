package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/paceful/internal/domain"
)

// Store implements the journal, analysis, mood and score ports on Firestore.
// Everything lives under users/{uid} so one user's data is one subtree.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: projectID is required for Firestore store", domain.ErrInvalidInput)
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: creating firestore client: %v", domain.ErrStorageUnavailable, err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(userID))
}

func (s *Store) journalCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("journal")
}

func (s *Store) analysesCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("analyses")
}

func (s *Store) moodsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("moods")
}

func (s *Store) scoresCol(userID domain.UserID) *firestore.CollectionRef {
	return s.userDoc(userID).Collection("scores")
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%s: %w: already exists", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}

// collect drains a query iterator, decoding each snapshot with decode.
func collect[T any](it *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer it.Stop()

	var out []T
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type journalDoc struct {
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type emotionDoc struct {
	Emotion string `firestore:"emotion"`
	Count   int    `firestore:"count"`
}

type phraseDoc struct {
	Text   string  `firestore:"text"`
	Weight float64 `firestore:"weight"`
}

type analysisDoc struct {
	EntryCreatedAt time.Time    `firestore:"entry_created_at"`
	AnalyzedAt     time.Time    `firestore:"analyzed_at"`
	Analyzer       string       `firestore:"analyzer"`
	LexiconVersion string       `firestore:"lexicon_version"`
	Sentiment      string       `firestore:"sentiment"`
	Valence        float64      `firestore:"valence"`
	RawValence     float64      `firestore:"raw_valence"`
	Emotions       []emotionDoc `firestore:"emotions"`
	Markers        []string     `firestore:"markers"`
	NotablePhrases []phraseDoc  `firestore:"notable_phrases"`
	WordCount      int          `firestore:"word_count"`
}

type moodDoc struct {
	Value    int       `firestore:"value"`
	Note     string    `firestore:"note"`
	LoggedAt time.Time `firestore:"logged_at"`
}

type scoreDoc struct {
	// Seq orders scores written within the same clock tick.
	Seq             int64              `firestore:"seq"`
	ComputedAt      time.Time          `firestore:"computed_at"`
	AsOf            time.Time          `firestore:"as_of"`
	Overall         float64            `firestore:"overall"`
	Components      map[string]float64 `firestore:"components"`
	Trend           string             `firestore:"trend"`
	PreviousOverall *float64           `firestore:"previous_overall"`
	Baseline        bool               `firestore:"baseline"`
	JournalCount    int                `firestore:"journal_count"`
	MoodCount       int                `firestore:"mood_count"`
	FormulaVersion  string             `firestore:"formula_version"`
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: journal entry needs a user id", domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}

	doc := journalDoc{
		Text:      entry.Text,
		CreatedAt: entry.CreatedAt.UTC(),
		UpdatedAt: entry.UpdatedAt.UTC(),
	}
	_, err := s.journalCol(entry.UserID).Doc(string(entry.ID)).Create(ctx, doc)
	return wrapErr("firestore AppendJournalEntry", err)
}

func (s *Store) GetJournalEntry(ctx context.Context, userID domain.UserID, id domain.JournalEntryID) (*domain.JournalEntry, error) {
	snap, err := s.journalCol(userID).Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, wrapErr("firestore GetJournalEntry", err)
	}
	return decodeJournal(userID)(snap)
}

func decodeJournal(userID domain.UserID) func(*firestore.DocumentSnapshot) (*domain.JournalEntry, error) {
	return func(snap *firestore.DocumentSnapshot) (*domain.JournalEntry, error) {
		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore journal decode: %w", err)
		}
		return &domain.JournalEntry{
			ID:        domain.JournalEntryID(snap.Ref.ID),
			UserID:    userID,
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt.UTC(),
			UpdatedAt: doc.UpdatedAt.UTC(),
		}, nil
	}
}

func (s *Store) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	q := s.journalCol(userID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	out, err := collect(q.Documents(ctx), decodeJournal(userID))
	if err != nil {
		return nil, wrapErr("firestore ListJournalEntriesByUser", err)
	}
	reverse(out)
	if out == nil {
		out = []*domain.JournalEntry{}
	}
	return out, nil
}

// ─────────────────────────────────────────
// AnalysisStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveAnalysis(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.EntryID == "" || result.UserID == "" {
		return fmt.Errorf("%w: analysis needs entry and user ids", domain.ErrInvalidInput)
	}

	doc := analysisDoc{
		EntryCreatedAt: result.EntryCreatedAt.UTC(),
		AnalyzedAt:     result.AnalyzedAt.UTC(),
		Analyzer:       result.Analyzer,
		LexiconVersion: result.LexiconVersion,
		Sentiment:      string(result.Sentiment),
		Valence:        result.Valence,
		RawValence:     result.RawValence,
		WordCount:      result.WordCount,
	}
	for _, e := range result.Emotions {
		doc.Emotions = append(doc.Emotions, emotionDoc{Emotion: e.Emotion, Count: e.Count})
	}
	for _, m := range result.Markers {
		doc.Markers = append(doc.Markers, string(m))
	}
	for _, p := range result.NotablePhrases {
		doc.NotablePhrases = append(doc.NotablePhrases, phraseDoc{Text: p.Text, Weight: p.Weight})
	}

	// Set without merge replaces the previous analysis of the entry
	_, err := s.analysesCol(result.UserID).Doc(string(result.EntryID)).Set(ctx, doc)
	return wrapErr("firestore SaveAnalysis", err)
}

func (s *Store) GetAnalysisByEntry(ctx context.Context, userID domain.UserID, entryID domain.JournalEntryID) (*domain.AnalysisResult, error) {
	snap, err := s.analysesCol(userID).Doc(string(entryID)).Get(ctx)
	if err != nil {
		return nil, wrapErr("firestore GetAnalysisByEntry", err)
	}
	return decodeAnalysis(userID)(snap)
}

func decodeAnalysis(userID domain.UserID) func(*firestore.DocumentSnapshot) (*domain.AnalysisResult, error) {
	return func(snap *firestore.DocumentSnapshot) (*domain.AnalysisResult, error) {
		var doc analysisDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore analysis decode: %w", err)
		}
		a := &domain.AnalysisResult{
			EntryID:        domain.JournalEntryID(snap.Ref.ID),
			UserID:         userID,
			EntryCreatedAt: doc.EntryCreatedAt.UTC(),
			AnalyzedAt:     doc.AnalyzedAt.UTC(),
			Analyzer:       doc.Analyzer,
			LexiconVersion: doc.LexiconVersion,
			Sentiment:      domain.SentimentLevel(doc.Sentiment),
			Valence:        doc.Valence,
			RawValence:     doc.RawValence,
			Emotions:       make([]domain.EmotionTag, 0, len(doc.Emotions)),
			Markers:        make([]domain.InsightMarker, 0, len(doc.Markers)),
			NotablePhrases: make([]domain.NotablePhrase, 0, len(doc.NotablePhrases)),
			WordCount:      doc.WordCount,
		}
		for _, e := range doc.Emotions {
			a.Emotions = append(a.Emotions, domain.EmotionTag{Emotion: e.Emotion, Count: e.Count})
		}
		for _, m := range doc.Markers {
			a.Markers = append(a.Markers, domain.InsightMarker(m))
		}
		for _, p := range doc.NotablePhrases {
			a.NotablePhrases = append(a.NotablePhrases, domain.NotablePhrase{Text: p.Text, Weight: p.Weight})
		}
		return a, nil
	}
}

func (s *Store) ListAnalysesByUser(ctx context.Context, userID domain.UserID, since time.Time, limit int) ([]*domain.AnalysisResult, error) {
	q := s.analysesCol(userID).Query
	if !since.IsZero() {
		q = q.Where("entry_created_at", ">=", since.UTC())
	}
	q = q.OrderBy("entry_created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	out, err := collect(q.Documents(ctx), decodeAnalysis(userID))
	if err != nil {
		return nil, wrapErr("firestore ListAnalysesByUser", err)
	}
	reverse(out)
	if out == nil {
		out = []*domain.AnalysisResult{}
	}
	return out, nil
}

// ─────────────────────────────────────────
// MoodStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMoodEntry(ctx context.Context, entry *domain.MoodEntry) error {
	if entry == nil || entry.UserID == "" {
		return fmt.Errorf("%w: mood entry needs a user id", domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = domain.MoodEntryID(uuid.NewString())
	}
	doc := moodDoc{
		Value:    entry.Value,
		Note:     entry.Note,
		LoggedAt: entry.LoggedAt.UTC(),
	}
	_, err := s.moodsCol(entry.UserID).Doc(string(entry.ID)).Create(ctx, doc)
	return wrapErr("firestore AppendMoodEntry", err)
}

func (s *Store) ListMoodEntriesByUser(ctx context.Context, userID domain.UserID, from, to time.Time, limit int) ([]*domain.MoodEntry, error) {
	q := s.moodsCol(userID).Query
	if !from.IsZero() {
		q = q.Where("logged_at", ">=", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("logged_at", "<", to.UTC())
	}
	q = q.OrderBy("logged_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out, err := collect(q.Documents(ctx), func(snap *firestore.DocumentSnapshot) (*domain.MoodEntry, error) {
		var doc moodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore mood decode: %w", err)
		}
		return &domain.MoodEntry{
			ID:       domain.MoodEntryID(snap.Ref.ID),
			UserID:   userID,
			Value:    doc.Value,
			Note:     doc.Note,
			LoggedAt: doc.LoggedAt.UTC(),
		}, nil
	})
	if err != nil {
		return nil, wrapErr("firestore ListMoodEntriesByUser", err)
	}
	reverse(out)
	if out == nil {
		out = []*domain.MoodEntry{}
	}
	return out, nil
}

// ─────────────────────────────────────────
// ScoreStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendScore(ctx context.Context, score *domain.ERSScore) error {
	if score == nil || score.UserID == "" {
		return fmt.Errorf("%w: score needs a user id", domain.ErrInvalidInput)
	}
	if score.ID == "" {
		score.ID = domain.ScoreID(uuid.NewString())
	}

	components := make(map[string]float64, len(score.Components))
	for k, v := range score.Components {
		components[string(k)] = v
	}
	doc := scoreDoc{
		Seq:             time.Now().UnixNano(),
		ComputedAt:      score.ComputedAt.UTC(),
		AsOf:            score.AsOf.UTC(),
		Overall:         score.Overall,
		Components:      components,
		Trend:           string(score.Trend),
		PreviousOverall: score.PreviousOverall,
		Baseline:        score.Baseline,
		JournalCount:    score.JournalCount,
		MoodCount:       score.MoodCount,
		FormulaVersion:  score.FormulaVersion,
	}
	_, err := s.scoresCol(score.UserID).Doc(string(score.ID)).Create(ctx, doc)
	return wrapErr("firestore AppendScore", err)
}

func decodeScore(userID domain.UserID) func(*firestore.DocumentSnapshot) (*domain.ERSScore, error) {
	return func(snap *firestore.DocumentSnapshot) (*domain.ERSScore, error) {
		var doc scoreDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore score decode: %w", err)
		}
		components := make(map[domain.ERSComponent]float64, len(doc.Components))
		for k, v := range doc.Components {
			components[domain.ERSComponent(k)] = v
		}
		return &domain.ERSScore{
			ID:              domain.ScoreID(snap.Ref.ID),
			UserID:          userID,
			ComputedAt:      doc.ComputedAt.UTC(),
			AsOf:            doc.AsOf.UTC(),
			Overall:         doc.Overall,
			Components:      components,
			Trend:           domain.Trend(doc.Trend),
			PreviousOverall: doc.PreviousOverall,
			Baseline:        doc.Baseline,
			JournalCount:    doc.JournalCount,
			MoodCount:       doc.MoodCount,
			FormulaVersion:  doc.FormulaVersion,
		}, nil
	}
}

func (s *Store) LatestScore(ctx context.Context, userID domain.UserID) (*domain.ERSScore, error) {
	list, err := s.ListScores(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("ers score for %s: %w", userID, domain.ErrNotFound)
	}
	return list[0], nil
}

func (s *Store) ListScores(ctx context.Context, userID domain.UserID, limit int) ([]*domain.ERSScore, error) {
	q := s.scoresCol(userID).OrderBy("seq", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	out, err := collect(q.Documents(ctx), decodeScore(userID))
	if err != nil {
		return nil, wrapErr("firestore ListScores", err)
	}
	reverse(out)
	if out == nil {
		out = []*domain.ERSScore{}
	}
	return out, nil
}
