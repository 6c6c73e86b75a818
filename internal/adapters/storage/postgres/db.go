// Package postgres implements the storage ports with gorm. Production uses
// Postgres; tests and single-node setups can open the same schema on SQLite.
package postgres

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/PabloGalante/paceful/internal/domain"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: missing postgres dsn", domain.ErrInvalidInput)
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to Postgres: %v", domain.ErrStorageUnavailable, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database (":memory:" for an ephemeral one) with the same schema.
func OpenSQLite(path string) (*gorm.DB, error) {
	cfg := gormConfig()
	cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite: %v", domain.ErrStorageUnavailable, err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&journalRow{}, &analysisRow{}, &moodRow{}, &scoreRow{}); err != nil {
		return fmt.Errorf("%w: auto-migrate: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Stores bundles the four port implementations over one connection.
type Stores struct {
	Journal  *JournalStore
	Analyses *AnalysisStore
	Moods    *MoodStore
	Scores   *ScoreStore

	db *gorm.DB
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Journal:  &JournalStore{db: db},
		Analyses: &AnalysisStore{db: db},
		Moods:    &MoodStore{db: db},
		Scores:   &ScoreStore{db: db},
		db:       db,
	}
}

// Close releases the underlying connection pool.
func (s *Stores) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
