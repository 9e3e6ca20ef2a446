package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

const DateFormat = "2006-01-02"

type Category string

const (
	Work    Category = "work"
	Holiday Category = "holiday"
	Other   Category = "other"
	None    Category = "none"
)

// Categories are the tags a day can be tracked under.
//
//nolint:gochecknoglobals //ok
var Categories = []Category{Work, Holiday, Other}

func (c Category) IsTracked() bool {
	return slices.Contains(Categories, c)
}

func (c Category) IsValid() bool {
	return c == None || c.IsTracked()
}

// DayOfMonth is zero for padding records. It is encoded as "" for padding,
// which is what the calendar page expects for empty grid cells.
type DayOfMonth int

func (d DayOfMonth) IsPadding() bool {
	return d == 0
}

func (d DayOfMonth) MarshalJSON() ([]byte, error) {
	if d.IsPadding() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(int(d))), nil
}

func (d *DayOfMonth) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `""`, "null":
		*d = 0
		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid day of month %s: %w", data, err)
	}

	*d = DayOfMonth(value)
	return nil
}

type DayRecord struct {
	Day         DayOfMonth `json:"day"`
	Date        string     `json:"date,omitempty"`
	InDenmark   bool       `json:"in_denmark"`
	Accumulated int        `json:"accumulated"`
	Category    Category   `json:"category"`
	Warning     bool       `json:"warning"`
	Past        bool       `json:"past"`
}

type Month struct {
	Name string      `json:"name"`
	Days []DayRecord `json:"days"`
}

// CalendarData maps year to month number to the month's grid.
type CalendarData map[int]map[int]Month

var ErrInvalidCalendarData = errors.New("invalid calendar data")

func (data CalendarData) Years() []int {
	return slices.Sorted(maps.Keys(data))
}

func (data CalendarData) Months(year int) []int {
	return slices.Sorted(maps.Keys(data[year]))
}

// Validate rejects payloads that cannot be rendered as a whole.
func (data CalendarData) Validate() error {
	for _, year := range data.Years() {
		for _, month := range data.Months(year) {
			if month < 1 || month > 12 {
				return fmt.Errorf("%w: month %d of %d", ErrInvalidCalendarData, month, year)
			}

			for i, day := range data[year][month].Days {
				if err := day.validate(); err != nil {
					return fmt.Errorf(
						"%w: %d-%d record %d: %w",
						ErrInvalidCalendarData,
						year,
						month,
						i,
						err,
					)
				}
			}
		}
	}

	return nil
}

func (day DayRecord) validate() error {
	if day.Day.IsPadding() {
		return nil
	}

	if day.Day < 1 || day.Day > 31 {
		return fmt.Errorf("day of month %d out of range", day.Day)
	}

	if _, err := time.Parse(DateFormat, day.Date); err != nil {
		return fmt.Errorf("date %q: %w", day.Date, err)
	}

	if !day.Category.IsValid() {
		return fmt.Errorf("unknown category %q", day.Category)
	}

	if day.Accumulated < 0 {
		return fmt.Errorf("negative accumulated count %d", day.Accumulated)
	}

	return nil
}

// Lookup returns the record for date, if any month of data carries it.
func (data CalendarData) Lookup(date string) (DayRecord, bool) {
	for _, months := range data {
		for _, month := range months {
			for _, day := range month.Days {
				if !day.Day.IsPadding() && day.Date == date {
					return day, true
				}
			}
		}
	}

	return DayRecord{}, false
}
