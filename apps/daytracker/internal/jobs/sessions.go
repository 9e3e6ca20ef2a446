package jobs

import (
	"context"
	"log/slog"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/services"
)

type PurgeSessionsJob struct {
	sessionService *services.SessionService
}

func NewPurgeSessionsJob(sessionService *services.SessionService) PurgeSessionsJob {
	return PurgeSessionsJob{
		sessionService: sessionService,
	}
}

func (j PurgeSessionsJob) ID() string {
	return "purge-sessions"
}

func (j PurgeSessionsJob) RunEvery() time.Duration {
	//nolint:mnd //no magic number
	return 24 * time.Hour
}

func (j PurgeSessionsJob) Run(ctx context.Context, logger *slog.Logger) error {
	purged, err := j.sessionService.PurgeIdle(ctx)
	if err != nil {
		return err
	}

	logger.Debug("purged idle sessions", "amount", purged)
	return nil
}
