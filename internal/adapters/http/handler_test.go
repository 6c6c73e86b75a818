package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	httpadapter "github.com/PabloGalante/paceful/internal/adapters/http"
	"github.com/PabloGalante/paceful/internal/adapters/storage/memory"
	"github.com/PabloGalante/paceful/internal/app/ers"
	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/mood"
	"github.com/PabloGalante/paceful/internal/app/sentiment"
	"github.com/PabloGalante/paceful/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testStores struct {
	journal  domain.JournalStore
	analyses domain.AnalysisStore
	moods    domain.MoodStore
	scores   domain.ScoreStore
}

func memoryStores() testStores {
	return testStores{
		journal:  memory.NewJournalStore(),
		analyses: memory.NewAnalysisStore(),
		moods:    memory.NewMoodStore(),
		scores:   memory.NewScoreStore(),
	}
}

func newTestServer(t *testing.T, st testStores, opts httpadapter.Options) http.Handler {
	t.Helper()

	ersSvc := ers.NewService(st.analyses, st.moods, st.scores)
	trigger := ers.NewSyncTrigger(ersSvc)
	journalSvc := journal.NewService(st.journal, st.analyses, sentiment.NewRuleBased(), trigger)
	moodSvc := mood.NewService(st.moods, sentiment.NewRuleBased(), trigger)

	return httpadapter.NewServer(journalSvc, moodSvc, ersSvc, opts)
}

func localServer(t *testing.T) http.Handler {
	return newTestServer(t, memoryStores(), httpadapter.Options{TrustUserHeader: true})
}

func do(t *testing.T, srv http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestHealthz(t *testing.T) {
	srv := localServer(t)
	w := do(t, srv, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestRequiresUser(t *testing.T) {
	srv := localServer(t)
	w := do(t, srv, http.MethodGet, "/v1/ers", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if body := decode[errorBody](t, w); body.Error.Code != "unauthorized" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestJournalFlowUpdatesERS(t *testing.T) {
	srv := localServer(t)

	w := do(t, srv, http.MethodPost, "/v1/journal", "u1", map[string]string{
		"text": "I am not anxious anymore, I feel grateful",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	created := decode[journal.EntryWithAnalysis](t, w)
	if created.Entry == nil || created.Analysis == nil {
		t.Fatalf("expected entry with analysis, got %s", w.Body.String())
	}
	if !created.Analysis.HasMarker(domain.MarkerGratitude) {
		t.Fatalf("markers = %v", created.Analysis.Markers)
	}

	w = do(t, srv, http.MethodGet, "/v1/journal/"+string(created.Entry.ID), "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get entry: %d %s", w.Code, w.Body.String())
	}
	w = do(t, srv, http.MethodGet, "/v1/journal/"+string(created.Entry.ID), "u2", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("other user should get 404, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/v1/journal?limit=10", "u1", nil)
	list := decode[struct {
		Items []journal.EntryWithAnalysis `json:"items"`
	}](t, w)
	if len(list.Items) != 1 {
		t.Fatalf("expected one entry, got %d", len(list.Items))
	}

	w = do(t, srv, http.MethodGet, "/v1/ers", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get ers: %d %s", w.Code, w.Body.String())
	}
	score := decode[domain.ERSScore](t, w)
	if score.Baseline || score.JournalCount != 1 {
		t.Fatalf("score should reflect the entry: %+v", score)
	}
}

func TestBlankJournalIsBadRequest(t *testing.T) {
	srv := localServer(t)
	w := do(t, srv, http.MethodPost, "/v1/journal", "u1", map[string]string{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decode[errorBody](t, w); body.Error.Code != "invalid_input" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestAnalyzeDoesNotPersist(t *testing.T) {
	st := memoryStores()
	srv := newTestServer(t, st, httpadapter.Options{TrustUserHeader: true})

	w := do(t, srv, http.MethodPost, "/v1/analyze", "u1", map[string]string{"text": "I feel hopeless."})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decode[domain.AnalysisResult](t, w)
	if res.Sentiment.Rank() >= 0 {
		t.Fatalf("expected negative sentiment, got %s", res.Sentiment)
	}
	entries, _ := st.journal.ListJournalEntriesByUser(context.Background(), "u1", 0)
	if len(entries) != 0 {
		t.Fatalf("analyze must not store entries")
	}
}

func TestMoodEndpoints(t *testing.T) {
	srv := localServer(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, v := range []int{4, 6, 8} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		w := do(t, srv, http.MethodPost, "/v1/moods", "u1", map[string]any{"value": v, "logged_at": at})
		if w.Code != http.StatusCreated {
			t.Fatalf("log mood: %d %s", w.Code, w.Body.String())
		}
	}

	w := do(t, srv, http.MethodPost, "/v1/moods", "u1", map[string]any{"value": 11})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range mood should be 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/v1/moods/stats?from=2024-03-01&to=2024-03-03", "u1", nil)
	stats := decode[domain.MoodStats](t, w)
	if stats.Count != 3 || stats.Average != 6 || stats.Min != 4 || stats.Max != 8 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	w = do(t, srv, http.MethodGet, "/v1/moods/daily?from=2024-03-01&to=2024-03-03", "u1", nil)
	daily := decode[struct {
		Items []domain.DailySummary `json:"items"`
	}](t, w)
	if len(daily.Items) != 3 || daily.Items[0].Date != "2024-03-01" {
		t.Fatalf("unexpected daily summaries %+v", daily.Items)
	}

	w = do(t, srv, http.MethodGet, "/v1/moods/day/2024-03-02", "u1", nil)
	day := decode[struct {
		Items []domain.MoodEntry `json:"items"`
	}](t, w)
	if len(day.Items) != 1 || day.Items[0].Value != 6 {
		t.Fatalf("unexpected entries for day %+v", day.Items)
	}

	w = do(t, srv, http.MethodGet, "/v1/moods/day/not-a-date", "u1", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date should be 400, got %d", w.Code)
	}
	w = do(t, srv, http.MethodGet, "/v1/moods?tz=Nowhere/Special", "u1", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad tz should be 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/v1/moods/scale", "u1", nil)
	scale := decode[struct {
		Items []domain.MoodScalePoint `json:"items"`
	}](t, w)
	if len(scale.Items) != domain.MaxMoodValue {
		t.Fatalf("expected %d scale points, got %d", domain.MaxMoodValue, len(scale.Items))
	}
}

func TestERSHistoryAndRecompute(t *testing.T) {
	srv := localServer(t)

	for i := 0; i < 3; i++ {
		w := do(t, srv, http.MethodPost, "/v1/ers/recompute", "u1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("recompute: %d %s", w.Code, w.Body.String())
		}
	}
	w := do(t, srv, http.MethodGet, "/v1/ers/history?limit=2", "u1", nil)
	history := decode[struct {
		Items []domain.ERSScore `json:"items"`
	}](t, w)
	if len(history.Items) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(history.Items))
	}
	for _, s := range history.Items {
		if !s.Baseline || s.Overall != ers.BaselineOverall {
			t.Fatalf("user without data should get baseline scores, got %+v", s)
		}
	}

	w = do(t, srv, http.MethodGet, "/v1/ers/history?limit=-1", "u1", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative limit should be 400, got %d", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv := localServer(t)

	do(t, srv, http.MethodPost, "/v1/moods", "u1", map[string]any{"value": 7, "note": "calm walk"})
	do(t, srv, http.MethodPost, "/v1/journal", "u1", map[string]string{"text": "Grateful for a quiet day."})

	w := do(t, srv, http.MethodGet, "/v1/dashboard?tz=Europe/Madrid", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		ERS           *domain.ERSScore            `json:"ers"`
		MoodStats     domain.MoodStats            `json:"mood_stats"`
		Daily         []domain.DailySummary       `json:"daily"`
		RecentEntries []journal.EntryWithAnalysis `json:"recent_entries"`
		TimeZone      string                      `json:"time_zone"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ERS == nil || body.ERS.Baseline {
		t.Fatalf("expected a non-baseline score, got %+v", body.ERS)
	}
	if body.MoodStats.Count != 1 || len(body.Daily) != 1 || len(body.RecentEntries) != 1 {
		t.Fatalf("unexpected dashboard %s", w.Body.String())
	}
	if body.TimeZone != "Europe/Madrid" {
		t.Fatalf("time zone = %q", body.TimeZone)
	}
}

func TestDashboardFirstScoreIsInHistory(t *testing.T) {
	srv := localServer(t)

	w := do(t, srv, http.MethodGet, "/v1/dashboard", "fresh-user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		ERS        *domain.ERSScore   `json:"ers"`
		ERSHistory []*domain.ERSScore `json:"ers_history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ERS == nil || !body.ERS.Baseline {
		t.Fatalf("expected a baseline score, got %+v", body.ERS)
	}
	if len(body.ERSHistory) != 1 || body.ERSHistory[0].ID != body.ERS.ID {
		t.Fatalf("history should contain the score just created, got %+v", body.ERSHistory)
	}
}

type downScores struct {
	*memory.ScoreStore
}

func (downScores) LatestScore(context.Context, domain.UserID) (*domain.ERSScore, error) {
	return nil, domain.ErrStorageUnavailable
}

func TestStorageFailureIsServiceUnavailable(t *testing.T) {
	st := memoryStores()
	st.scores = downScores{memory.NewScoreStore()}
	srv := newTestServer(t, st, httpadapter.Options{TrustUserHeader: true})

	w := do(t, srv, http.MethodGet, "/v1/ers", "u1", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if body := decode[errorBody](t, w); body.Error.Code != "storage_unavailable" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	srv := newTestServer(t, memoryStores(), httpadapter.Options{JWTSecret: secret, TrustUserHeader: true})

	sign := func(key, sub string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		s, err := tok.SignedString([]byte(key))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + sign(secret, "jwt-user"), http.StatusOK},
		{"wrong key", "Bearer " + sign("other", "jwt-user"), http.StatusUnauthorized},
		{"missing subject", "Bearer " + sign(secret, ""), http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/moods/scale", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			// ignored once a secret is configured
			req.Header.Set("X-User-ID", "header-user")
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
