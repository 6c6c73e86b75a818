// Package httpadapter exposes the journal, mood and ERS services over HTTP with gin.
package httpadapter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/PabloGalante/paceful/internal/app/ers"
	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/mood"
)

type Options struct {
	// ServiceName tags spans when Tracing is on.
	ServiceName string
	Tracing     bool
	// JWTSecret enables bearer auth. When empty, TrustUserHeader allows X-User-ID.
	JWTSecret       string
	TrustUserHeader bool
	AllowedOrigins  []string
}

type Server struct {
	journal *journal.Service
	moods   *mood.Service
	ers     *ers.Service
}

// NewServer builds the router. The returned engine is ready to be served.
func NewServer(journalSvc *journal.Service, moodSvc *mood.Service, ersSvc *ers.Service, opts Options) *gin.Engine {
	s := &Server{journal: journalSvc, moods: moodSvc, ers: ersSvc}

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Tracing {
		name := opts.ServiceName
		if name == "" {
			name = "paceful-api"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(requestContext())
	r.Use(requestLogger())
	r.Use(corsMiddleware(opts.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", "route not found")
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := authenticator{secret: []byte(opts.JWTSecret), trustHeader: opts.TrustUserHeader}

	v1 := r.Group("/v1")
	v1.Use(auth.middleware())
	{
		v1.POST("/analyze", s.handleAnalyze)

		v1.POST("/journal", s.handleCreateJournal)
		v1.GET("/journal", s.handleListJournal)
		v1.GET("/journal/:id", s.handleGetJournal)
		v1.POST("/journal/:id/reanalyze", s.handleReanalyze)

		v1.POST("/moods", s.handleLogMood)
		v1.GET("/moods", s.handleListMoods)
		v1.GET("/moods/stats", s.handleMoodStats)
		v1.GET("/moods/daily", s.handleDailySummaries)
		v1.GET("/moods/day/:date", s.handleMoodsForDay)
		v1.GET("/moods/scale", s.handleMoodScale)

		v1.GET("/ers", s.handleLatestERS)
		v1.POST("/ers/recompute", s.handleRecomputeERS)
		v1.GET("/ers/history", s.handleERSHistory)

		v1.GET("/dashboard", s.handleDashboard)
	}

	return r
}
