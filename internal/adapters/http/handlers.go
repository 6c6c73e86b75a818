package httpadapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/mood"
	"github.com/PabloGalante/paceful/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type analyzeRequest struct {
	Text string `json:"text"`
}

type createJournalRequest struct {
	Text string `json:"text"`
}

type logMoodRequest struct {
	Value    int        `json:"value"`
	Note     string     `json:"note,omitempty"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// ─────────────────────────────────────────────
// Analysis & journal
// ─────────────────────────────────────────────

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	res, err := s.journal.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCreateJournal(c *gin.Context) {
	var req createJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	out, err := s.journal.CreateEntry(c.Request.Context(), currentUser(c), req.Text)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) handleListJournal(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := s.journal.ListEntries(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*journal.EntryWithAnalysis]{Items: out})
}

func (s *Server) handleGetJournal(c *gin.Context) {
	out, err := s.journal.GetEntry(c.Request.Context(), currentUser(c), domain.JournalEntryID(c.Param("id")))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleReanalyze(c *gin.Context) {
	out, err := s.journal.Reanalyze(c.Request.Context(), currentUser(c), domain.JournalEntryID(c.Param("id")))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ─────────────────────────────────────────────
// Moods
// ─────────────────────────────────────────────

func (s *Server) handleLogMood(c *gin.Context) {
	var req logMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	in := mood.LogMoodInput{
		UserID: currentUser(c),
		Value:  req.Value,
		Note:   req.Note,
	}
	if req.LoggedAt != nil {
		in.LoggedAt = *req.LoggedAt
	}
	entry, err := s.moods.LogMood(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListMoods(c *gin.Context) {
	_, from, to, ok := queryRange(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := s.moods.ListMoods(c.Request.Context(), currentUser(c), from, to, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*domain.MoodEntry]{Items: out})
}

func (s *Server) handleMoodStats(c *gin.Context) {
	_, from, to, ok := queryRange(c)
	if !ok {
		return
	}
	stats, err := s.moods.Stats(c.Request.Context(), currentUser(c), from, to)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleDailySummaries(c *gin.Context) {
	loc, from, to, ok := queryRange(c)
	if !ok {
		return
	}
	out, err := s.moods.DailySummaries(c.Request.Context(), currentUser(c), from, to, loc)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[domain.DailySummary]{Items: out})
}

func (s *Server) handleMoodsForDay(c *gin.Context) {
	loc, ok := queryLocation(c)
	if !ok {
		return
	}
	day, err := mood.ParseDate(c.Param("date"), loc)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	out, err := s.moods.EntriesForDate(c.Request.Context(), currentUser(c), day, loc)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*domain.MoodEntry]{Items: out})
}

func (s *Server) handleMoodScale(c *gin.Context) {
	c.JSON(http.StatusOK, listResponse[domain.MoodScalePoint]{Items: mood.Scale()})
}

// ─────────────────────────────────────────────
// ERS
// ─────────────────────────────────────────────

func (s *Server) handleLatestERS(c *gin.Context) {
	score, err := s.ers.Latest(c.Request.Context(), currentUser(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (s *Server) handleRecomputeERS(c *gin.Context) {
	score, err := s.ers.CalculateAndStoreERSScore(c.Request.Context(), currentUser(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (s *Server) handleERSHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := s.ers.History(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*domain.ERSScore]{Items: out})
}

// ─────────────────────────────────────────────
// Query helpers
// ─────────────────────────────────────────────

// queryInt returns 0 when the parameter is absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// queryLocation reads the IANA "tz" parameter, defaulting to UTC.
func queryLocation(c *gin.Context) (*time.Location, bool) {
	name := strings.TrimSpace(c.Query("tz"))
	if name == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		badRequest(c, "unknown time zone "+strconv.Quote(name))
		return nil, false
	}
	return loc, true
}

// queryRange reads optional "from"/"to" bounds as RFC 3339 instants or
// YYYY-MM-DD days in tz. A day-only "to" is inclusive of that day.
func queryRange(c *gin.Context) (*time.Location, time.Time, time.Time, bool) {
	loc, ok := queryLocation(c)
	if !ok {
		return nil, time.Time{}, time.Time{}, false
	}
	from, ok := queryTime(c, "from", loc, false)
	if !ok {
		return nil, time.Time{}, time.Time{}, false
	}
	to, ok := queryTime(c, "to", loc, true)
	if !ok {
		return nil, time.Time{}, time.Time{}, false
	}
	return loc, from, to, true
}

func queryTime(c *gin.Context, name string, loc *time.Location, endOfDay bool) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	day, err := mood.ParseDate(raw, loc)
	if err != nil {
		badRequest(c, name+" must be RFC 3339 or YYYY-MM-DD")
		return time.Time{}, false
	}
	if endOfDay {
		_, end := mood.DayBounds(day, loc)
		return end, true
	}
	return day, true
}
