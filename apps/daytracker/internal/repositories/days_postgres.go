package repositories

import (
	"context"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
)

type PostgresDayRepository struct {
	db postgres.DB
}

func (repo *PostgresDayRepository) GetAll(
	ctx context.Context,
	sessionID string,
) ([]models.TrackedDay, error) {
	query := `
		SELECT date, category
		FROM daytracker.days
		WHERE session_id = $1
		ORDER BY date
	`

	rows, err := repo.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	days := []models.TrackedDay{}
	for rows.Next() {
		//nolint:exhaustruct //fields are scanned
		day := models.TrackedDay{}

		err = rows.Scan(&day.Date, &day.Category)
		if err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}

		day.Date = models.Truncate(day.Date)
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return days, nil
}

func (repo *PostgresDayRepository) Get(
	ctx context.Context,
	sessionID string,
	date time.Time,
) (*models.TrackedDay, error) {
	query := `
		SELECT date, category
		FROM daytracker.days
		WHERE session_id = $1 AND date = $2
	`

	//nolint:exhaustruct //fields are scanned
	day := models.TrackedDay{}

	err := repo.db.QueryRow(ctx, query, sessionID, date).Scan(&day.Date, &day.Category)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	day.Date = models.Truncate(day.Date)
	return &day, nil
}

func (repo *PostgresDayRepository) Upsert(
	ctx context.Context,
	sessionID string,
	day models.TrackedDay,
) error {
	query := `
		INSERT INTO daytracker.days (session_id, date, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, date)
		DO UPDATE SET category = $3
	`

	_, err := repo.db.Exec(ctx, query, sessionID, day.Date, string(day.Category))
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *PostgresDayRepository) UpsertMany(
	ctx context.Context,
	sessionID string,
	days []models.TrackedDay,
) error {
	if len(days) == 0 {
		return nil
	}

	query := `
		INSERT INTO daytracker.days (session_id, date, category)
		SELECT $1, t.date, t.category
		FROM unnest($2::date[], $3::varchar[]) AS t(date, category)
		ON CONFLICT (session_id, date)
		DO UPDATE SET category = excluded.category
	`

	dates := make([]time.Time, 0, len(days))
	categories := make([]string, 0, len(days))
	for _, day := range days {
		dates = append(dates, day.Date)
		categories = append(categories, string(day.Category))
	}

	_, err := repo.db.Exec(ctx, query, sessionID, dates, categories)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *PostgresDayRepository) Delete(
	ctx context.Context,
	sessionID string,
	date time.Time,
) error {
	query := `
		DELETE FROM daytracker.days
		WHERE session_id = $1 AND date = $2
	`

	result, err := repo.db.Exec(ctx, query, sessionID, date)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	if result.RowsAffected() == 0 {
		return database.ErrResourceNotFound
	}

	return nil
}

func (repo *PostgresDayRepository) DeleteAll(
	ctx context.Context,
	sessionID string,
) error {
	query := `
		DELETE FROM daytracker.days
		WHERE session_id = $1
	`

	_, err := repo.db.Exec(ctx, query, sessionID)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

type PostgresSessionRepository struct {
	db postgres.DB
}

func (repo *PostgresSessionRepository) Touch(
	ctx context.Context,
	sessionID string,
	at time.Time,
) error {
	query := `
		INSERT INTO daytracker.sessions (id, last_seen_at)
		VALUES ($1, $2)
		ON CONFLICT (id)
		DO UPDATE SET last_seen_at = $2
	`

	_, err := repo.db.Exec(ctx, query, sessionID, at)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *PostgresSessionRepository) DeleteIdleSince(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	query := `
		DELETE FROM daytracker.sessions
		WHERE last_seen_at < $1
	`

	result, err := repo.db.Exec(ctx, query, before)
	if err != nil {
		return 0, postgres.PgxErrorToHTTPError(err)
	}

	return result.RowsAffected(), nil
}
