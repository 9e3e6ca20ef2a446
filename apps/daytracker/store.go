package daytracker

import (
	"log/slog"
	"strings"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
)

const sqliteScheme = "sqlite:"

// Store is the database the tracker keeps its days in.
type Store struct {
	Repositories *repositories.Repositories
	migrate      func(app *DayTracker) error
	close        func()
}

// OpenStore connects to dsn: a postgres URL, or a SQLite path prefixed with
// "sqlite:".
func OpenStore(logger *slog.Logger, dsn string) (*Store, error) {
	if path, ok := strings.CutPrefix(dsn, sqliteScheme); ok {
		return openSQLiteStore(path)
	}
	return openPostgresStore(logger, dsn)
}

func openSQLiteStore(path string) (*Store, error) {
	db, err := repositories.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repositories: repositories.NewSQLite(db),
		migrate: func(app *DayTracker) error {
			return app.ApplySQLiteMigrations(db)
		},
		close: func() { db.Close() },
	}, nil
}

func openPostgresStore(logger *slog.Logger, dsn string) (*Store, error) {
	db, err := postgres.Connect(
		logger,
		dsn,
		25, //nolint:mnd //no magic number
		"15m",
		60,             //nolint:mnd //no magic number
		10*time.Second, //nolint:mnd //no magic number
		5*time.Minute,  //nolint:mnd //no magic number
	)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repositories: repositories.NewPostgres(postgres.NewSpanDB(db)),
		migrate: func(app *DayTracker) error {
			return app.ApplyPostgresMigrations(db)
		},
		close: db.Close,
	}, nil
}

// Migrate brings the store's schema up to date for app.
func (store *Store) Migrate(app *DayTracker) error {
	return store.migrate(app)
}

func (store *Store) Close() {
	store.close()
}
