package daytracker

import (
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/jobs"
	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"daytracker.xdoubleu.com/apps/daytracker/internal/services"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/calendarview"
	"daytracker.xdoubleu.com/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/xdoubleu/essentia/v2/pkg/threading"
	"github.com/xhit/go-str2duration/v2"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

//go:embed templates/html/**/*html
var htmlTemplates embed.FS

type DayTracker struct {
	logger       *slog.Logger
	Config       config.Config
	Services     *services.Services
	Repositories *repositories.Repositories
	tpl          *template.Template
	jobQueue     *threading.JobQueue
}

func New(
	logger *slog.Logger,
	cfg config.Config,
	repos *repositories.Repositories,
) (*DayTracker, error) {
	sessionExpiry, err := str2duration.ParseDuration(cfg.SessionExpiry)
	if err != nil {
		return nil, fmt.Errorf("invalid session expiry %q: %w", cfg.SessionExpiry, err)
	}

	if cfg.MaxDays < 1 {
		return nil, fmt.Errorf("invalid max days %d: must be at least 1", cfg.MaxDays)
	}

	if cfg.LookbackPeriod < 1 {
		return nil, fmt.Errorf(
			"invalid lookback period %d: must be at least 1",
			cfg.LookbackPeriod,
		)
	}

	tpl := template.Must(
		template.New("").
			Funcs(template.FuncMap{
				"cellClass":   calendarview.CellClass,
				"cellContent": cellContent,
			}).
			ParseFS(htmlTemplates, "templates/html/**/*.html"),
	)

	//nolint:mnd //no magic number
	jobQueue := threading.NewJobQueue(logger, 1, 10)

	app := &DayTracker{
		logger:       logger,
		Config:       cfg,
		Repositories: repos,
		Services:     services.New(logger, cfg, repos, sessionExpiry),
		tpl:          tpl,
		jobQueue:     jobQueue,
	}

	return app, nil
}

// StartJobs schedules the background jobs. They stop with Close.
func (app *DayTracker) StartJobs() error {
	return app.jobQueue.AddJob(
		jobs.NewPurgeSessionsJob(app.Services.Sessions),
		app.logJobState,
	)
}

func (app *DayTracker) logJobState(id string, isRunning bool, lastRunTime *time.Time) {
	app.logger.Debug(
		"job state changed",
		"job", id,
		"running", isRunning,
		"lastRun", lastRunTime,
	)
}

func (app *DayTracker) Close() {
	app.jobQueue.Clear()
}

func (app *DayTracker) ApplyPostgresMigrations(db *pgxpool.Pool) error {
	return app.applyMigrations(stdlib.OpenDBFromPool(db), goose.DialectPostgres, "postgres")
}

func (app *DayTracker) ApplySQLiteMigrations(db *sql.DB) error {
	return app.applyMigrations(db, goose.DialectSQLite3, "sqlite")
}

func (app *DayTracker) applyMigrations(
	db *sql.DB,
	dialect goose.Dialect,
	dir string,
) error {
	goose.SetLogger(slog.NewLogLogger(app.logger.Handler(), slog.LevelInfo))

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return err
	}

	if err := goose.Up(db, "migrations/"+dir); err != nil {
		return err
	}

	return nil
}

func (app *DayTracker) GetName() string {
	return "daytracker"
}
