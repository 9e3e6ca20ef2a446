package services

import (
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
)

const (
	// days on either side of today that carry accumulated counts
	rangeDays = 365
	// years on either side of the current year shown in the calendar
	yearSpan   = 1
	daysInWeek = 7
)

type CalendarService struct {
	maxDays  int
	lookback int
	now      func() time.Time
}

func NewCalendarService(maxDays int, lookback int, now func() time.Time) *CalendarService {
	return &CalendarService{
		maxDays:  maxDays,
		lookback: lookback,
		now:      now,
	}
}

func (service *CalendarService) MaxDays() int {
	return service.maxDays
}

func (service *CalendarService) Lookback() int {
	return service.lookback
}

func (service *CalendarService) Today() time.Time {
	return models.Truncate(service.now())
}

type dayStats struct {
	inDenmark   bool
	accumulated int
	category    tracker.Category
}

// accumulate counts, for every date within rangeDays of today, the tracked
// dates inside the lookback window ending on it. Only dates inside the range
// are counted.
func (service *CalendarService) accumulate(
	today time.Time,
	tracked map[string]tracker.Category,
) (time.Time, []dayStats) {
	start := today.AddDate(0, 0, -rangeDays)
	total := 2*rangeDays + 1

	stats := make([]dayStats, total)
	prefix := make([]int, total+1)

	for i := range total {
		category, ok := tracked[start.AddDate(0, 0, i).Format(tracker.DateFormat)]
		if !ok {
			category = tracker.None
		}

		stats[i].inDenmark = ok
		stats[i].category = category

		prefix[i+1] = prefix[i]
		if ok {
			prefix[i+1]++
		}
	}

	for i := range total {
		windowStart := max(0, i-(service.lookback-1))
		stats[i].accumulated = prefix[i+1] - prefix[windowStart]
	}

	return start, stats
}

// Build returns the calendar grid for the years around today with the
// tracked days applied.
func (service *CalendarService) Build(days []models.TrackedDay) tracker.CalendarData {
	today := service.Today()

	tracked := make(map[string]tracker.Category, len(days))
	for _, day := range days {
		tracked[day.Key()] = day.Category
	}

	start, stats := service.accumulate(today, tracked)

	data := tracker.CalendarData{}
	for year := today.Year() - yearSpan; year <= today.Year()+yearSpan; year++ {
		data[year] = make(map[int]tracker.Month, 12) //nolint:mnd //months

		for month := time.January; month <= time.December; month++ {
			data[year][int(month)] = service.buildMonth(year, month, today, start, stats)
		}
	}

	return data
}

func (service *CalendarService) buildMonth(
	year int,
	month time.Month,
	today time.Time,
	start time.Time,
	stats []dayStats,
) tracker.Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	padding := mondayOffset(first.Weekday())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	records := make([]tracker.DayRecord, 0, padding+daysInMonth)
	for range padding {
		//nolint:exhaustruct //padding records carry no date
		records = append(records, tracker.DayRecord{Category: tracker.None})
	}

	for dayOfMonth := 1; dayOfMonth <= daysInMonth; dayOfMonth++ {
		date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)

		//nolint:exhaustruct //stats are filled in below when in range
		record := tracker.DayRecord{
			Day:      tracker.DayOfMonth(dayOfMonth),
			Date:     date.Format(tracker.DateFormat),
			Category: tracker.None,
			Past:     date.Before(today),
		}

		index := int(date.Sub(start).Hours() / 24) //nolint:mnd //hours per day
		if index >= 0 && index < len(stats) {
			record.InDenmark = stats[index].inDenmark
			record.Accumulated = stats[index].accumulated
			record.Category = stats[index].category
			record.Warning = record.Accumulated > service.maxDays
		}

		records = append(records, record)
	}

	return tracker.Month{
		Name: month.String(),
		Days: records,
	}
}

func mondayOffset(weekday time.Weekday) int {
	return (int(weekday) + daysInWeek - 1) % daysInWeek
}
