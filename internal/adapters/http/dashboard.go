package httpadapter

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/mood"
	"github.com/PabloGalante/paceful/internal/domain"
)

const (
	dashboardDays    = 7
	dashboardStats   = 30
	dashboardEntries = 5
	dashboardHistory = 14
)

type dashboardResponse struct {
	ERS           *domain.ERSScore             `json:"ers"`
	ERSHistory    []*domain.ERSScore           `json:"ers_history"`
	MoodStats     domain.MoodStats             `json:"mood_stats"`
	Daily         []domain.DailySummary        `json:"daily"`
	RecentEntries []*journal.EntryWithAnalysis `json:"recent_entries"`
	GeneratedAt   time.Time                    `json:"generated_at"`
	TimeZone      string                       `json:"time_zone"`
}

// handleDashboard reads the panels concurrently; the first failure wins. History
// is read after Latest so a first score shows up in both.
func (s *Server) handleDashboard(c *gin.Context) {
	loc, ok := queryLocation(c)
	if !ok {
		return
	}
	user := currentUser(c)
	now := time.Now()
	_, todayEnd := mood.DayBounds(now, loc)

	var out dashboardResponse
	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		score, err := s.ers.Latest(ctx, user)
		if err != nil {
			return err
		}
		out.ERS = score
		history, err := s.ers.History(ctx, user, dashboardHistory)
		out.ERSHistory = history
		return err
	})
	g.Go(func() error {
		stats, err := s.moods.Stats(ctx, user, todayEnd.AddDate(0, 0, -dashboardStats), todayEnd)
		out.MoodStats = stats
		return err
	})
	g.Go(func() error {
		daily, err := s.moods.DailySummaries(ctx, user, todayEnd.AddDate(0, 0, -dashboardDays), todayEnd, loc)
		out.Daily = daily
		return err
	})
	g.Go(func() error {
		entries, err := s.journal.ListEntries(ctx, user, dashboardEntries)
		out.RecentEntries = entries
		return err
	})

	if err := g.Wait(); err != nil {
		respondDomainError(c, err)
		return
	}

	out.GeneratedAt = now.UTC()
	out.TimeZone = loc.String()
	c.JSON(http.StatusOK, out)
}
