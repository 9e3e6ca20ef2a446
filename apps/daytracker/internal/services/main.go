package services

import (
	"log/slog"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"daytracker.xdoubleu.com/internal/config"
	configtools "github.com/xdoubleu/essentia/v2/pkg/config"
)

type Services struct {
	Calendar *CalendarService
	Days     *DayService
	Schedule *ScheduleService
	Sessions *SessionService
	Updates  *UpdateService
}

func New(
	logger *slog.Logger,
	cfg config.Config,
	repositories *repositories.Repositories,
	sessionExpiry time.Duration,
) *Services {
	calendar := NewCalendarService(cfg.MaxDays, cfg.LookbackPeriod, time.Now)
	updates := NewUpdateService()
	days := &DayService{
		logger:   logger,
		days:     repositories.Days,
		calendar: calendar,
		updates:  updates,
	}
	schedule := &ScheduleService{
		logger:     logger,
		days:       repositories.Days,
		dayService: days,
		webURL:     cfg.WebURL,
		now:        time.Now,
	}
	sessions := &SessionService{
		sessions:         repositories.Sessions,
		expiry:           sessionExpiry,
		useSecureCookies: cfg.Env == configtools.ProdEnv,
		now:              time.Now,
	}

	return &Services{
		Calendar: calendar,
		Days:     days,
		Schedule: schedule,
		Sessions: sessions,
		Updates:  updates,
	}
}
