package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteDriver = "sqlite"

// OpenSQLite opens the database at path, ":memory:" included. The pool is
// limited to one connection so pragmas and in-memory data are shared by all
// queries.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA foreign_keys=ON"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err = db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

func sqliteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrResourceNotFound
	}
	return err
}

type SQLiteDayRepository struct {
	db *sql.DB
}

func scanSQLiteDay(scanner interface{ Scan(dest ...any) error }) (*models.TrackedDay, error) {
	var (
		date string
		day  models.TrackedDay
	)

	if err := scanner.Scan(&date, &day.Category); err != nil {
		return nil, sqliteError(err)
	}

	parsed, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", date, err)
	}
	day.Date = parsed

	return &day, nil
}

func (repo *SQLiteDayRepository) GetAll(
	ctx context.Context,
	sessionID string,
) ([]models.TrackedDay, error) {
	query := `
		SELECT date, category
		FROM days
		WHERE session_id = ?
		ORDER BY date
	`

	rows, err := repo.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []models.TrackedDay{}
	for rows.Next() {
		day, errScan := scanSQLiteDay(rows)
		if errScan != nil {
			return nil, errScan
		}
		days = append(days, *day)
	}

	return days, rows.Err()
}

func (repo *SQLiteDayRepository) Get(
	ctx context.Context,
	sessionID string,
	date time.Time,
) (*models.TrackedDay, error) {
	query := `
		SELECT date, category
		FROM days
		WHERE session_id = ? AND date = ?
	`

	row := repo.db.QueryRowContext(ctx, query, sessionID, dateKey(date))
	return scanSQLiteDay(row)
}

func (repo *SQLiteDayRepository) Upsert(
	ctx context.Context,
	sessionID string,
	day models.TrackedDay,
) error {
	return repo.UpsertMany(ctx, sessionID, []models.TrackedDay{day})
}

func (repo *SQLiteDayRepository) UpsertMany(
	ctx context.Context,
	sessionID string,
	days []models.TrackedDay,
) error {
	if len(days) == 0 {
		return nil
	}

	query := `
		INSERT INTO days (session_id, date, category)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, date)
		DO UPDATE SET category = excluded.category
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck //no-op after commit

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, day := range days {
		_, err = stmt.ExecContext(ctx, sessionID, day.Key(), string(day.Category))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (repo *SQLiteDayRepository) Delete(
	ctx context.Context,
	sessionID string,
	date time.Time,
) error {
	query := `
		DELETE FROM days
		WHERE session_id = ? AND date = ?
	`

	result, err := repo.db.ExecContext(ctx, query, sessionID, dateKey(date))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return database.ErrResourceNotFound
	}

	return nil
}

func (repo *SQLiteDayRepository) DeleteAll(
	ctx context.Context,
	sessionID string,
) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM days WHERE session_id = ?`, sessionID)
	return err
}

type SQLiteSessionRepository struct {
	db *sql.DB
}

func (repo *SQLiteSessionRepository) Touch(
	ctx context.Context,
	sessionID string,
	at time.Time,
) error {
	query := `
		INSERT INTO sessions (id, last_seen_at)
		VALUES (?, ?)
		ON CONFLICT (id)
		DO UPDATE SET last_seen_at = excluded.last_seen_at
	`

	_, err := repo.db.ExecContext(ctx, query, sessionID, at.Unix())
	return err
}

func (repo *SQLiteSessionRepository) DeleteIdleSince(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	result, err := repo.db.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE last_seen_at < ?`,
		before.Unix(),
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func dateKey(date time.Time) string {
	return models.TrackedDay{Date: date, Category: ""}.Key()
}
