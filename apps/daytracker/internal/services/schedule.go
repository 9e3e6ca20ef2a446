package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/emersion/go-ical"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

const (
	ScheduleCSVName = "denmark_schedule.csv"
	ScheduleICSName = "denmark_schedule.ics"

	csvDateColumn     = "date"
	csvCategoryColumn = "category"

	icsProductID = "-//daytracker//Denmark days//EN"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

//nolint:gochecknoglobals //compiled once
var summaryCategory = regexp.MustCompile(`\((\w+)\)\s*$`)

type ScheduleService struct {
	logger     *slog.Logger
	days       repositories.DayRepository
	dayService *DayService
	webURL     string
	now        func() time.Time
}

func (service *ScheduleService) ExportCSV(
	ctx context.Context,
	sessionID string,
	w io.Writer,
) error {
	days, err := service.days.GetAll(ctx, sessionID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)

	err = writer.Write([]string{csvDateColumn, csvCategoryColumn})
	if err != nil {
		return err
	}

	for _, day := range days {
		err = writer.Write([]string{day.Key(), string(day.Category)})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (service *ScheduleService) ExportICS(
	ctx context.Context,
	sessionID string,
	w io.Writer,
) error {
	days, err := service.days.GetAll(ctx, sessionID)
	if err != nil {
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	host := "daytracker"
	if u, errParse := url.Parse(service.webURL); errParse == nil && u.Host != "" {
		host = u.Hostname()
	}

	stamp := service.now().UTC()
	for _, day := range days {
		vevent := ical.NewComponent(ical.CompEvent)

		vevent.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s@%s", day.Key(), sessionID, host))
		vevent.Props.SetText(ical.PropSummary, fmt.Sprintf("In Denmark (%s)", day.Category))
		vevent.Props.SetText(ical.PropCategories, string(day.Category))
		vevent.Props.SetText(ical.PropTransparency, "TRANSPARENT")

		dtstart := ical.NewProp(ical.PropDateTimeStart)
		dtstart.SetDate(day.Date)
		vevent.Props.Set(dtstart)

		dtend := ical.NewProp(ical.PropDateTimeEnd)
		dtend.SetDate(day.Date.AddDate(0, 0, 1))
		vevent.Props.Set(dtend)

		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

		cal.Children = append(cal.Children, vevent)
	}

	return ical.NewEncoder(w).Encode(cal)
}

// Import merges the schedule in r into the session's tracked days. filename
// selects the format: ".csv" or ".ics". Nothing is stored unless every entry
// is valid.
func (service *ScheduleService) Import(
	ctx context.Context,
	sessionID string,
	filename string,
	r io.Reader,
) (int, error) {
	var (
		days []models.TrackedDay
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		days, err = parseCSVSchedule(r)
	case ".ics":
		days, err = parseICSSchedule(r)
	default:
		return 0, fmt.Errorf("%w: unsupported file %q", ErrInvalidSchedule, filename)
	}

	if err != nil {
		return 0, err
	}

	days = latestPerDate(days)

	if err = service.days.UpsertMany(ctx, sessionID, days); err != nil {
		return 0, err
	}

	if err = service.dayService.Publish(ctx, sessionID); err != nil {
		service.logger.Warn("failed to publish imported schedule", logging.ErrAttr(err))
	}

	service.logger.Debug("imported schedule", "file", filename, "days", len(days))
	return len(days), nil
}

// latestPerDate keeps one entry per date, the last one in the file, at the
// position of the first.
func latestPerDate(days []models.TrackedDay) []models.TrackedDay {
	index := make(map[string]int, len(days))
	unique := make([]models.TrackedDay, 0, len(days))

	for _, day := range days {
		if i, ok := index[day.Key()]; ok {
			unique[i] = day
			continue
		}
		index[day.Key()] = len(unique)
		unique = append(unique, day)
	}

	return unique
}

func parseCSVSchedule(r io.Reader) ([]models.TrackedDay, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %w", ErrInvalidSchedule, err)
	}

	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	dateIndex := slices.Index(header, csvDateColumn)
	if dateIndex < 0 {
		return nil, fmt.Errorf("%w: no %q column", ErrInvalidSchedule, csvDateColumn)
	}
	categoryIndex := slices.Index(header, csvCategoryColumn)

	days := []models.TrackedDay{}
	for line := 2; ; line++ {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, errRead)
		}

		rawCategory := ""
		if categoryIndex >= 0 && categoryIndex < len(record) {
			rawCategory = record[categoryIndex]
		}

		rawDate := ""
		if dateIndex < len(record) {
			rawDate = record[dateIndex]
		}

		day, errParse := parseScheduleEntry(rawDate, rawCategory)
		if errParse != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidSchedule, line, errParse)
		}

		days = append(days, day)
	}

	return days, nil
}

func parseICSSchedule(r io.Reader) ([]models.TrackedDay, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	days := []models.TrackedDay{}
	for _, event := range cal.Events() {
		start, errStart := event.DateTimeStart(time.UTC)
		if errStart != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, errStart)
		}

		category := ""
		if prop := event.Props.Get(ical.PropCategories); prop != nil {
			category = prop.Value
		} else if prop = event.Props.Get(ical.PropSummary); prop != nil {
			if match := summaryCategory.FindStringSubmatch(prop.Value); match != nil {
				category = match[1]
			}
		}

		day, errParse := parseScheduleEntry(start.Format(tracker.DateFormat), category)
		if errParse != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, errParse)
		}

		days = append(days, day)
	}

	return days, nil
}

func parseScheduleEntry(rawDate string, rawCategory string) (models.TrackedDay, error) {
	date, err := models.ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return models.TrackedDay{}, fmt.Errorf("date %q: %w", rawDate, err)
	}

	category := tracker.Category(strings.ToLower(strings.TrimSpace(rawCategory)))
	if category == "" {
		category = tracker.Work
	}

	if !category.IsTracked() {
		return models.TrackedDay{}, fmt.Errorf("unknown category %q", rawCategory)
	}

	return models.TrackedDay{Date: date, Category: category}, nil
}
