package tracker

import (
	"context"
)

type Client interface {
	GetCalendarPage(ctx context.Context) ([]byte, error)
	ToggleDay(ctx context.Context, date string, category Category) (CalendarData, error)
	ResetDays(ctx context.Context) (CalendarData, error)
	Updates(ctx context.Context) (<-chan CalendarData, error)
	Session() string
}

type ToggleDayRequest struct {
	Date     string   `json:"date"`
	Category Category `json:"category"`
}

type CalendarResponse struct {
	Success      bool         `json:"success"`
	CalendarData CalendarData `json:"calendar_data,omitempty"`
}
