package tracker_test

import (
	"encoding/json"
	"testing"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOfMonthJSON(t *testing.T) {
	marshalled, err := json.Marshal([]tracker.DayOfMonth{0, 15})
	require.NoError(t, err)
	assert.JSONEq(t, `["", 15]`, string(marshalled))

	var days []tracker.DayOfMonth
	require.NoError(t, json.Unmarshal([]byte(`["", null, 3]`), &days))
	assert.Equal(t, []tracker.DayOfMonth{0, 0, 3}, days)

	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &days))
}

func TestCategories(t *testing.T) {
	assert.True(t, tracker.Work.IsTracked())
	assert.False(t, tracker.None.IsTracked())
	assert.True(t, tracker.None.IsValid())
	assert.False(t, tracker.Category("vacation").IsValid())
}

func TestValidate(t *testing.T) {
	//nolint:exhaustruct //flags default to false
	valid := tracker.DayRecord{
		Day:      1,
		Date:     "2024-03-01",
		Category: tracker.None,
	}

	tcs := []struct {
		name  string
		data  tracker.CalendarData
		valid bool
	}{
		{
			name:  "ok",
			data:  tracker.CalendarData{2024: {3: {Name: "March", Days: []tracker.DayRecord{{}, valid}}}},
			valid: true,
		},
		{
			name:  "month out of range",
			data:  tracker.CalendarData{2024: {0: {Name: "", Days: nil}}},
			valid: false,
		},
		{
			name: "bad date",
			data: tracker.CalendarData{2024: {3: {Name: "March", Days: []tracker.DayRecord{
				{Day: 1, Date: "01/03/2024", Category: tracker.None},
			}}}},
			valid: false,
		},
		{
			name: "bad category",
			data: tracker.CalendarData{2024: {3: {Name: "March", Days: []tracker.DayRecord{
				{Day: 1, Date: "2024-03-01", Category: "vacation"},
			}}}},
			valid: false,
		},
		{
			name: "negative accumulated",
			data: tracker.CalendarData{2024: {3: {Name: "March", Days: []tracker.DayRecord{
				{Day: 1, Date: "2024-03-01", Category: tracker.Work, Accumulated: -1},
			}}}},
			valid: false,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tracker.ErrInvalidCalendarData)
			}
		})
	}
}

func TestYearsAndMonthsSorted(t *testing.T) {
	data := tracker.CalendarData{
		2025: {2: {}, 1: {}},
		2023: {12: {}},
		2024: {},
	}

	assert.Equal(t, []int{2023, 2024, 2025}, data.Years())
	assert.Equal(t, []int{1, 2}, data.Months(2025))
}
