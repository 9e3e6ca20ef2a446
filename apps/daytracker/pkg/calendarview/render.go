package calendarview

import (
	"fmt"
	"strconv"
	"strings"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/PuerkitoBio/goquery"
)

//nolint:gochecknoglobals //lookup table
var categoryClasses = map[tracker.Category][]string{
	tracker.Work:    {"bg-success", "text-white"},
	tracker.Holiday: {"bg-info", "text-white"},
	tracker.Other:   {"bg-warning"},
}

//nolint:gochecknoglobals //lookup table
var warningClasses = []string{"border", "border-danger", "border-3"}

const pastClass = "bg-opacity-50"

// CellClasses returns the classes a calendar cell carries for day.
func CellClasses(day tracker.DayRecord) []string {
	classes := []string{}

	if day.InDenmark {
		classes = append(classes, categoryClasses[day.Category]...)
		if day.Warning {
			classes = append(classes, warningClasses...)
		}
	}

	if day.Past {
		classes = append(classes, pastClass)
	}

	return classes
}

func CellClass(day tracker.DayRecord) string {
	return strings.Join(CellClasses(day), " ")
}

// CellContent returns the inner HTML of a calendar cell for day.
func CellContent(day tracker.DayRecord) string {
	var sb strings.Builder

	fmt.Fprintf(
		&sb,
		`<div class="day-cell" title="Days in Denmark: %d">%d`,
		day.Accumulated,
		day.Day,
	)

	if day.InDenmark {
		fmt.Fprintf(
			&sb,
			` <span class="badge rounded-pill bg-light text-dark">%d</span>`,
			day.Accumulated,
		)
	}

	sb.WriteString("</div>")

	return sb.String()
}

func monthSelector(year int, month int) string {
	return fmt.Sprintf(`#year-%d div[data-month="%d"]`, year, month)
}

// UpdateCalendar patches every cell of doc named by data and returns how
// many cells were written. Months or cells missing from doc are skipped.
func UpdateCalendar(doc *goquery.Document, data tracker.CalendarData) int {
	updated := 0

	for _, year := range data.Years() {
		for _, monthNum := range data.Months(year) {
			monthElement := doc.Find(monthSelector(year, monthNum)).First()
			if monthElement.Length() == 0 {
				continue
			}

			for _, day := range data[year][monthNum].Days {
				if day.Day.IsPadding() {
					continue
				}

				dayCell := findCell(monthElement.Find("td[data-date]"), day.Date)
				if dayCell == nil {
					continue
				}

				renderCell(dayCell, day)
				updated++
			}
		}
	}

	return updated
}

func findCell(cells *goquery.Selection, date string) *goquery.Selection {
	var found *goquery.Selection

	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if value, _ := cell.Attr("data-date"); value == date {
			found = cell
			return false
		}
		return true
	})

	return found
}

func renderCell(cell *goquery.Selection, day tracker.DayRecord) {
	cell.SetAttr("data-in-denmark", strconv.FormatBool(day.InDenmark))
	cell.SetAttr("data-accumulated", strconv.Itoa(day.Accumulated))
	cell.SetAttr("data-category", string(day.Category))

	cell.SetAttr("class", CellClass(day))

	cell.SetHtml(CellContent(day))
}
