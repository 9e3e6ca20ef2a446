package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"daytracker.xdoubleu.com/apps/daytracker"
	"daytracker.xdoubleu.com/internal/config"
	"github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"github.com/xdoubleu/essentia/v2/pkg/sentrytools"
)

type Application struct {
	logger *slog.Logger
	config config.Config
	app    *daytracker.DayTracker
}

func main() {
	cfg := config.New(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	logger := slog.New(sentrytools.NewLogHandler(cfg.Env,
		slog.NewTextHandler(os.Stdout, nil)))

	store, err := daytracker.OpenStore(logger, cfg.DBDsn)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	app, err := NewApplication(logger, cfg, store)
	if err != nil {
		panic(err)
	}
	defer app.app.Close()

	err = app.app.StartJobs()
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,  //nolint:mnd //no magic number
		WriteTimeout: 10 * time.Second, //nolint:mnd //no magic number
	}
	err = httptools.Serve(logger, srv, cfg.Env)
	if err != nil {
		logger.Error("failed to serve server", logging.ErrAttr(err))
	}
}

func NewApplication(
	logger *slog.Logger,
	cfg config.Config,
	store *daytracker.Store,
) (*Application, error) {
	app, err := daytracker.New(logger, cfg, store.Repositories)
	if err != nil {
		return nil, err
	}

	err = store.Migrate(app)
	if err != nil {
		return nil, err
	}

	return &Application{
		logger: logger,
		config: cfg,
		app:    app,
	}, nil
}
