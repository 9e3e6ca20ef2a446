package calendarview_test

import (
	"context"
	"strings"
	"testing"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/calendarview"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

const testPage = `<!DOCTYPE html>
<html>
<body>
<div class="btn-group">
	<button class="btn active" data-category="work">Work</button>
	<button class="btn" data-category="holiday">Holiday</button>
	<button class="btn" data-category="other">Other</button>
</div>
<button id="resetDaysButton">Reset</button>
<div id="year-2024">
	<div class="month" data-month="3">
		<table class="calendar-table">
			<tr>
				<td class="empty"></td>
				<td data-date="2024-03-14" class="stale">14</td>
				<td data-date="2024-03-15">15</td>
				<td data-date="2024-03-16" class="bg-info text-white" data-accumulated="3">16</td>
			</tr>
		</table>
	</div>
</div>
</body>
</html>`

func day(
	dayOfMonth int,
	date string,
	inDenmark bool,
	accumulated int,
	category tracker.Category,
) tracker.DayRecord {
	//nolint:exhaustruct //flags are set by the callers
	return tracker.DayRecord{
		Day:         tracker.DayOfMonth(dayOfMonth),
		Date:        date,
		InDenmark:   inDenmark,
		Accumulated: accumulated,
		Category:    category,
	}
}

func march2024(days ...tracker.DayRecord) tracker.CalendarData {
	return tracker.CalendarData{
		2024: {
			3: {Name: "March", Days: days},
		},
	}
}

func newDocument(t *testing.T) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(testPage))
	require.NoError(t, err)

	return doc
}

func startController(
	t *testing.T,
	client tracker.Client,
	confirmer calendarview.Confirmer,
) *calendarview.Controller {
	t.Helper()

	ctrl, err := calendarview.NewFromHTML(
		logging.NewNopLogger(),
		client,
		confirmer,
		[]byte(testPage),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ctrl
}

type cellState struct {
	Class       string
	InDenmark   string
	Accumulated string
	Category    string
	Title       string
	Label       string
	Badge       string
	HasBadge    bool
}

func readCell(doc *goquery.Document, date string) cellState {
	cell := doc.Find(`td[data-date="` + date + `"]`)
	dayCell := cell.Find(".day-cell")
	badge := dayCell.Find(".badge")

	class, _ := cell.Attr("class")
	inDenmark, _ := cell.Attr("data-in-denmark")
	accumulated, _ := cell.Attr("data-accumulated")
	category, _ := cell.Attr("data-category")
	title, _ := dayCell.Attr("title")

	label := ""
	if dayCell.Length() > 0 {
		label = strings.TrimSpace(dayCell.Contents().First().Text())
	}

	return cellState{
		Class:       class,
		InDenmark:   inDenmark,
		Accumulated: accumulated,
		Category:    category,
		Title:       title,
		Label:       label,
		Badge:       badge.Text(),
		HasBadge:    badge.Length() > 0,
	}
}

func inspectCell(ctrl *calendarview.Controller, date string) cellState {
	var state cellState
	ctrl.Inspect(func(doc *goquery.Document) {
		state = readCell(doc, date)
	})
	return state
}
