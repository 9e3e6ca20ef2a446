package repositories

import (
	"context"
	"database/sql"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
)

type DayRepository interface {
	GetAll(ctx context.Context, sessionID string) ([]models.TrackedDay, error)
	Get(ctx context.Context, sessionID string, date time.Time) (*models.TrackedDay, error)
	Upsert(ctx context.Context, sessionID string, day models.TrackedDay) error
	UpsertMany(ctx context.Context, sessionID string, days []models.TrackedDay) error
	Delete(ctx context.Context, sessionID string, date time.Time) error
	DeleteAll(ctx context.Context, sessionID string) error
}

type SessionRepository interface {
	Touch(ctx context.Context, sessionID string, at time.Time) error
	DeleteIdleSince(ctx context.Context, before time.Time) (int64, error)
}

type Repositories struct {
	Days     DayRepository
	Sessions SessionRepository
}

func NewPostgres(db postgres.DB) *Repositories {
	return &Repositories{
		Days:     &PostgresDayRepository{db: db},
		Sessions: &PostgresSessionRepository{db: db},
	}
}

func NewSQLite(db *sql.DB) *Repositories {
	return &Repositories{
		Days:     &SQLiteDayRepository{db: db},
		Sessions: &SQLiteSessionRepository{db: db},
	}
}
