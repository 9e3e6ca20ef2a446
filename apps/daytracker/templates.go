package daytracker

import (
	"html/template"
	"net/http"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/calendarview"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	tpltools "github.com/xdoubleu/essentia/v2/pkg/tpl"
)

const daysInWeek = 7

func (app *DayTracker) templateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", app.sessionAccess(app.indexHandler))
}

type IndexData struct {
	CurrentYear int
	MaxDays     int
	Lookback    int
	Categories  []tracker.Category
	Years       []YearData
}

type YearData struct {
	Year   int
	Active bool
	Months []MonthData
}

type MonthData struct {
	Number int
	Name   string
	Weeks  [][]tracker.DayRecord
}

func (app *DayTracker) indexHandler(w http.ResponseWriter, r *http.Request) {
	data, err := app.Services.Days.GetCalendar(r.Context(), getSession(r))
	if err != nil {
		panic(err)
	}

	tpltools.RenderWithPanic(app.tpl, w, "index.html", app.indexData(data))
}

func (app *DayTracker) indexData(data tracker.CalendarData) IndexData {
	currentYear := app.Services.Calendar.Today().Year()

	indexData := IndexData{
		CurrentYear: currentYear,
		MaxDays:     app.Services.Calendar.MaxDays(),
		Lookback:    app.Services.Calendar.Lookback(),
		Categories:  tracker.Categories,
		Years:       []YearData{},
	}

	for _, year := range data.Years() {
		yearData := YearData{
			Year:   year,
			Active: year == currentYear,
			Months: []MonthData{},
		}

		for _, month := range data.Months(year) {
			yearData.Months = append(yearData.Months, MonthData{
				Number: month,
				Name:   data[year][month].Name,
				Weeks:  weeks(data[year][month].Days),
			})
		}

		indexData.Years = append(indexData.Years, yearData)
	}

	return indexData
}

// weeks splits a month grid into rows of seven, padding the last row.
func weeks(days []tracker.DayRecord) [][]tracker.DayRecord {
	rows := [][]tracker.DayRecord{}

	for start := 0; start < len(days); start += daysInWeek {
		row := make([]tracker.DayRecord, daysInWeek)
		for i := range row {
			row[i].Category = tracker.None
		}
		copy(row, days[start:min(start+daysInWeek, len(days))])
		rows = append(rows, row)
	}

	return rows
}

// cellContent renders the inner markup of a day cell. It only interpolates
// numbers, so it is safe to embed unescaped.
//
//nolint:gosec //content is generated from integers
func cellContent(day tracker.DayRecord) template.HTML {
	return template.HTML(calendarview.CellContent(day))
}
