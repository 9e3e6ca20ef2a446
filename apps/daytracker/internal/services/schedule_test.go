package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/services"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCSV(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	schedule := "\ufeffDate, Category\n2024-03-15,holiday\n2024-03-16,\n2024-03-17,OTHER\n"

	imported, err := srv.Schedule.Import(ctx, sessionID, "trip.CSV", strings.NewReader(schedule))
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	var buf bytes.Buffer
	require.NoError(t, srv.Schedule.ExportCSV(ctx, sessionID, &buf))
	assert.Equal(
		t,
		"date,category\n2024-03-15,holiday\n2024-03-16,work\n2024-03-17,other\n",
		buf.String(),
	)
}

func TestImportCSVWithoutCategoryColumn(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	imported, err := srv.Schedule.Import(
		ctx,
		sessionID,
		"trip.csv",
		strings.NewReader("date\n2024-03-15\n"),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	var buf bytes.Buffer
	require.NoError(t, srv.Schedule.ExportCSV(ctx, sessionID, &buf))
	assert.Equal(t, "date,category\n2024-03-15,work\n", buf.String())
}

func TestImportRepeatedDateKeepsLastRow(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	schedule := "date,category\n2024-03-15,work\n2024-03-16,work\n2024-03-15,holiday\n"

	imported, err := srv.Schedule.Import(ctx, sessionID, "trip.csv", strings.NewReader(schedule))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	var buf bytes.Buffer
	require.NoError(t, srv.Schedule.ExportCSV(ctx, sessionID, &buf))
	assert.Equal(
		t,
		"date,category\n2024-03-15,holiday\n2024-03-16,work\n",
		buf.String(),
	)
}

func TestImportRejectsInvalidSchedules(t *testing.T) {
	tcs := map[string]struct {
		filename string
		content  string
	}{
		"wrong extension":  {"trip.txt", "date\n2024-03-15\n"},
		"no extension":     {"csv", "date\n2024-03-15\n"},
		"no date column":   {"trip.csv", "day,category\n2024-03-15,work\n"},
		"bad date":         {"trip.csv", "date,category\n15/03/2024,work\n"},
		"unknown category": {"trip.csv", "date,category\n2024-03-15,vacation\n"},
		"empty":            {"trip.csv", ""},
		"bad calendar":     {"trip.ics", "not a calendar"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			srv, _ := newServices(t)
			ctx := context.Background()

			_, err := srv.Schedule.Import(ctx, sessionID, tc.filename, strings.NewReader(tc.content))
			require.ErrorIs(t, err, services.ErrInvalidSchedule)

			var buf bytes.Buffer
			require.NoError(t, srv.Schedule.ExportCSV(ctx, sessionID, &buf))
			assert.Equal(t, "date,category\n", buf.String())
		})
	}
}

func TestImportKeepsNothingFromPartiallyInvalidCSV(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	_, err := srv.Schedule.Import(
		ctx,
		sessionID,
		"trip.csv",
		strings.NewReader("date,category\n2024-03-15,work\nnope,work\n"),
	)
	require.ErrorIs(t, err, services.ErrInvalidSchedule)

	data, err := srv.Days.GetCalendar(ctx, sessionID)
	require.NoError(t, err)
	for _, record := range data[2024][3].Days {
		assert.False(t, record.InDenmark)
	}
}

func TestExportICS(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	_, err := srv.Schedule.Import(
		ctx,
		sessionID,
		"trip.csv",
		strings.NewReader("date,category\n2024-03-15,holiday\n2024-03-16,work\n"),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, srv.Schedule.ExportICS(ctx, sessionID, &buf))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "In Denmark (holiday)", summary)

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15-"+sessionID+"@days.example.com", uid)

	start, err := events[1].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", start.Format(tracker.DateFormat))

	end, err := events[1].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-17", end.Format(tracker.DateFormat))
}

func TestICSRoundTrip(t *testing.T) {
	srv, _ := newServices(t)
	ctx := context.Background()

	_, err := srv.Schedule.Import(
		ctx,
		sessionID,
		"trip.csv",
		strings.NewReader("date,category\n2024-03-15,holiday\n2024-03-16,other\n"),
	)
	require.NoError(t, err)

	var feed bytes.Buffer
	require.NoError(t, srv.Schedule.ExportICS(ctx, sessionID, &feed))

	other, _ := newServices(t)
	imported, err := other.Schedule.Import(ctx, sessionID, "feed.ics", &feed)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	var buf bytes.Buffer
	require.NoError(t, other.Schedule.ExportCSV(ctx, sessionID, &buf))
	assert.Equal(
		t,
		"date,category\n2024-03-15,holiday\n2024-03-16,other\n",
		buf.String(),
	)
}
