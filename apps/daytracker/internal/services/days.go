package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/xdoubleu/essentia/v2/pkg/database"
)

type DayService struct {
	logger   *slog.Logger
	days     repositories.DayRepository
	calendar *CalendarService
	updates  *UpdateService
}

func (service *DayService) GetCalendar(
	ctx context.Context,
	sessionID string,
) (tracker.CalendarData, error) {
	days, err := service.days.GetAll(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return service.calendar.Build(days), nil
}

// Toggle removes date when it is tracked under category, retags it when it
// is tracked under another category and tracks it otherwise.
func (service *DayService) Toggle(
	ctx context.Context,
	sessionID string,
	date time.Time,
	category tracker.Category,
) (tracker.CalendarData, error) {
	current, err := service.days.Get(ctx, sessionID, date)
	switch {
	case errors.Is(err, database.ErrResourceNotFound):
		current = nil
	case err != nil:
		return nil, err
	}

	day := models.TrackedDay{Date: date, Category: category}

	if current != nil && current.Category == category {
		err = service.days.Delete(ctx, sessionID, date)
		service.logger.Debug("untracked day", "date", day.Key())
	} else {
		err = service.days.Upsert(ctx, sessionID, day)
		service.logger.Debug("tracked day", "date", day.Key(), "category", category)
	}

	if err != nil {
		return nil, err
	}

	data, err := service.GetCalendar(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	service.updates.Publish(sessionID, data)
	return data, nil
}

func (service *DayService) Reset(
	ctx context.Context,
	sessionID string,
) (tracker.CalendarData, error) {
	if err := service.days.DeleteAll(ctx, sessionID); err != nil {
		return nil, err
	}

	data := service.calendar.Build(nil)
	service.updates.Publish(sessionID, data)
	return data, nil
}

// Publish sends the session's current calendar to its live connections.
func (service *DayService) Publish(ctx context.Context, sessionID string) error {
	if service.updates.Subscribers(sessionID) == 0 {
		return nil
	}

	data, err := service.GetCalendar(ctx, sessionID)
	if err != nil {
		return err
	}

	service.updates.Publish(sessionID, data)
	return nil
}
