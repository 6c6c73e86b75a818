package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/PabloGalante/paceful/internal/adapters/debounce"
	httpadapter "github.com/PabloGalante/paceful/internal/adapters/http"
	"github.com/PabloGalante/paceful/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/paceful/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/paceful/internal/adapters/storage/memory"
	"github.com/PabloGalante/paceful/internal/adapters/storage/postgres"
	"github.com/PabloGalante/paceful/internal/app/ers"
	"github.com/PabloGalante/paceful/internal/app/journal"
	"github.com/PabloGalante/paceful/internal/app/mood"
	"github.com/PabloGalante/paceful/internal/app/sentiment"
	"github.com/PabloGalante/paceful/internal/config"
	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

const serviceName = "paceful-api"

type stores struct {
	journal  domain.JournalStore
	analyses domain.AnalysisStore
	moods    domain.MoodStore
	scores   domain.ScoreStore
	closer   io.Closer
}

func main() {
	// a local .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("error reading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := observability.Init(cfg.LogMode, cfg.LogFile); err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}
	defer observability.Sync()
	logger := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, serviceName, cfg.OTelEnabled)

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalw("error initializing storage", "backend", cfg.StorageBackend, "error", err)
	}
	if st.closer != nil {
		defer st.closer.Close()
	}

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		logger.Fatalw("error initializing analyzer", "analyzer", cfg.Analyzer, "error", err)
	}
	logger.Infow("analyzer ready", "name", analyzer.Name())

	ersSvc := ers.NewService(st.analyses, st.moods, st.scores)

	var trigger domain.RecomputeTrigger
	schedulerDone := make(chan struct{})
	switch cfg.RecomputeMode {
	case config.RecomputeDebounced:
		d, closeDebouncer, err := newDebouncer(ctx, cfg)
		if err != nil {
			logger.Fatalw("error initializing debouncer", "error", err)
		}
		defer closeDebouncer()
		trigger = ers.NewDebouncedTrigger(d)

		scheduler := ers.NewScheduler(ersSvc, d, cfg.RecomputeInterval)
		go func() {
			defer close(schedulerDone)
			_ = scheduler.Run(ctx)
		}()
	default:
		trigger = ers.NewSyncTrigger(ersSvc)
		close(schedulerDone)
	}

	journalSvc := journal.NewService(st.journal, st.analyses, analyzer, trigger)
	// daily themes stay on the local lexicon
	moodSvc := mood.NewService(st.moods, sentiment.NewRuleBased(), trigger)

	handler := httpadapter.NewServer(journalSvc, moodSvc, ersSvc, httpadapter.Options{
		ServiceName:     serviceName,
		Tracing:         cfg.OTelEnabled,
		JWTSecret:       cfg.JWTSecret,
		TrustUserHeader: cfg.TrustUserHeader,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("Paceful API listening",
			"port", cfg.Port,
			"mode", cfg.Mode,
			"storage", cfg.StorageBackend,
			"recompute", cfg.RecomputeMode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http shutdown failed", "error", err)
	}
	<-schedulerDone
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warnw("tracing shutdown failed", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	logger := observability.Logger()

	switch cfg.StorageBackend {
	case config.StorageFirestore:
		logger.Infow("using Firestore storage", "project", cfg.GCPProjectID)
		fs, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, err
		}
		// 1 store, implements 4 interfaces
		return &stores{journal: fs, analyses: fs, moods: fs, scores: fs, closer: fs}, nil

	case config.StoragePostgres, config.StorageSQLite:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.StorageBackend == config.StoragePostgres {
			logger.Infow("using Postgres storage")
			db, err = postgres.Open(cfg.PostgresDSN)
		} else {
			logger.Infow("using SQLite storage", "path", cfg.SQLitePath)
			db, err = postgres.OpenSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		s := postgres.NewStores(db)
		return &stores{journal: s.Journal, analyses: s.Analyses, moods: s.Moods, scores: s.Scores, closer: s}, nil

	default:
		logger.Infow("using in-memory storage")
		return &stores{
			journal:  memstore.NewJournalStore(),
			analyses: memstore.NewAnalysisStore(),
			moods:    memstore.NewMoodStore(),
			scores:   memstore.NewScoreStore(),
		}, nil
	}
}

func newAnalyzer(ctx context.Context, cfg *config.Config) (domain.TextAnalyzer, error) {
	switch cfg.Analyzer {
	case config.AnalyzerVertex:
		return llm.NewVertexAnalyzer(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
	case config.AnalyzerOpenAI:
		return llm.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.ModelName)
	default:
		return sentiment.NewRuleBased(), nil
	}
}

// newDebouncer prefers Redis so marks survive restarts and are shared between instances.
func newDebouncer(ctx context.Context, cfg *config.Config) (ers.Debouncer, func(), error) {
	if cfg.RedisAddr == "" {
		observability.Logger().Infow("using in-memory ers debouncer")
		return debounce.NewMemory(), func() {}, nil
	}
	r, err := debounce.NewRedis(ctx, cfg.RedisAddr, "")
	if err != nil {
		return nil, nil, err
	}
	observability.Logger().Infow("using redis ers debouncer", "addr", cfg.RedisAddr)
	return r, func() { _ = r.Close() }, nil
}
