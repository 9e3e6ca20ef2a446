package calendarview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/mocks"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/calendarview"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

func clearedCalendar(
	_ context.Context,
	_ *tracker.ToggleDayRequest,
) (tracker.CalendarData, error) {
	return march2024(day(15, "2024-03-15", false, 0, tracker.None)), nil
}

func activeCategories(ctrl *calendarview.Controller) []string {
	active := []string{}
	ctrl.Inspect(func(doc *goquery.Document) {
		doc.Find(".btn-group .active").Each(func(_ int, s *goquery.Selection) {
			value, _ := s.Attr("data-category")
			active = append(active, value)
		})
	})
	return active
}

func TestDefaultCategoryIsWork(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	assert.Equal(t, tracker.Work, ctrl.SelectedCategory())
}

func TestClickCategory(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	ctrl.ClickCategory(tracker.Holiday)
	ctrl.Wait()

	assert.Equal(t, tracker.Holiday, ctrl.SelectedCategory())
	assert.Equal(t, []string{"holiday"}, activeCategories(ctrl))
	assert.Empty(t, client.ToggleRequests())
}

func TestToggleSendsSelectedCategory(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, func(
		_ context.Context,
		req *tracker.ToggleDayRequest,
	) (tracker.CalendarData, error) {
		return march2024(day(15, req.Date, true, 12, req.Category)), nil
	})
	ctrl := startController(t, client, nil)

	ctrl.ClickCategory(tracker.Holiday)
	ctrl.ClickCell("2024-03-15")
	ctrl.Wait()

	assert.Equal(
		t,
		[]tracker.ToggleDayRequest{{Date: "2024-03-15", Category: tracker.Holiday}},
		client.ToggleRequests(),
	)

	cell := inspectCell(ctrl, "2024-03-15")
	assert.Equal(t, "bg-info text-white", cell.Class)
	assert.Equal(t, "12", cell.Badge)
	assert.Equal(t, "Days in Denmark: 12", cell.Title)
}

func TestToggleWithoutSelectionUsesWork(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	ctrl.ClickCell("2024-03-14")
	ctrl.Wait()

	require.Len(t, client.ToggleRequests(), 1)
	assert.Equal(t, tracker.Work, client.ToggleRequests()[0].Category)
}

func TestToggleFailureLeavesPage(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, func(
		context.Context,
		*tracker.ToggleDayRequest,
	) (tracker.CalendarData, error) {
		return nil, errors.New("connection refused")
	})
	ctrl := startController(t, client, nil)

	before, err := ctrl.HTML()
	require.NoError(t, err)

	ctrl.ClickCell("2024-03-15")
	ctrl.Wait()

	after, err := ctrl.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, client.ToggleRequests(), 1)
}

func TestMalformedPayloadIsNotApplied(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, func(
		context.Context,
		*tracker.ToggleDayRequest,
	) (tracker.CalendarData, error) {
		return march2024(
			day(14, "2024-03-14", true, 1, tracker.Work),
			day(15, "not-a-date", true, 1, tracker.Work),
		), nil
	})
	ctrl := startController(t, client, nil)

	before, err := ctrl.HTML()
	require.NoError(t, err)

	ctrl.ClickCell("2024-03-14")
	ctrl.Wait()

	after, err := ctrl.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResetConfirmed(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, clearedCalendar)

	var asked string
	ctrl := startController(t, client, calendarview.ConfirmFunc(func(msg string) bool {
		asked = msg
		return true
	}))

	ctrl.ClickReset()
	ctrl.Wait()

	assert.Equal(t, calendarview.ResetConfirmation, asked)
	assert.Equal(t, 1, client.ResetCount())

	cell := inspectCell(ctrl, "2024-03-15")
	assert.Empty(t, cell.Class)
	assert.Equal(t, "false", cell.InDenmark)
	assert.False(t, cell.HasBadge)
}

func TestResetDeclined(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, clearedCalendar)
	ctrl := startController(t, client, calendarview.ConfirmFunc(func(string) bool {
		return false
	}))

	before, err := ctrl.HTML()
	require.NoError(t, err)

	ctrl.ClickReset()
	ctrl.Wait()

	after, err := ctrl.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, client.ResetCount())
}

func TestNilConfirmerDeclines(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, clearedCalendar)
	ctrl := startController(t, client, nil)

	ctrl.ClickReset()
	ctrl.Wait()

	assert.Equal(t, 0, client.ResetCount())
}

func TestOverlappingTogglesLastResolvedWins(t *testing.T) {
	releaseFirst := make(chan struct{})

	client := mocks.NewMockTrackerClient(nil, func(
		ctx context.Context,
		req *tracker.ToggleDayRequest,
	) (tracker.CalendarData, error) {
		if req.Category == tracker.Work {
			select {
			case <-releaseFirst:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return march2024(day(15, req.Date, true, 1, tracker.Work)), nil
		}
		return march2024(day(15, req.Date, true, 2, tracker.Holiday)), nil
	})
	ctrl := startController(t, client, nil)

	ctrl.ClickCell("2024-03-15")
	ctrl.ClickCategory(tracker.Holiday)
	ctrl.ClickCell("2024-03-15")

	assert.Eventually(t, func() bool {
		return inspectCell(ctrl, "2024-03-15").Category == "holiday"
	}, time.Second, 10*time.Millisecond)

	close(releaseFirst)
	ctrl.Wait()

	cell := inspectCell(ctrl, "2024-03-15")
	assert.Equal(t, "work", cell.Category)
	assert.Equal(t, "bg-success text-white", cell.Class)
	assert.Equal(t, "1", cell.Badge)
}

func TestUnboundClickIsIgnored(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	var empty *goquery.Selection
	ctrl.Inspect(func(doc *goquery.Document) {
		empty = doc.Find("td.empty")
	})
	require.Equal(t, 1, empty.Length())

	ctrl.Click(empty.Get(0))
	ctrl.ClickCell("2025-01-01")
	ctrl.Wait()

	assert.Empty(t, client.ToggleRequests())
	assert.Equal(t, 0, client.ResetCount())
}

func TestClicksAfterStopAreDropped(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)

	ctrl, err := calendarview.NewFromHTML(
		logging.NewNopLogger(),
		client,
		nil,
		[]byte(testPage),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, ctrl.Run(ctx))

	ctrl.ClickCell("2024-03-15")
	ctrl.Wait()

	assert.Empty(t, client.ToggleRequests())
}

func TestApplyRendersPushedData(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	assert.True(t, ctrl.Apply(march2024(day(15, "2024-03-15", true, 7, tracker.Other))))
	ctrl.Wait()

	cell := inspectCell(ctrl, "2024-03-15")
	assert.Equal(t, "other", cell.Category)
	assert.Equal(t, "bg-warning", cell.Class)
	assert.Equal(t, "7", cell.Badge)
	assert.Empty(t, client.ToggleRequests())
}

func TestApplyRejectsInvalidData(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	before, err := ctrl.HTML()
	require.NoError(t, err)

	assert.True(t, ctrl.Apply(march2024(
		day(14, "2024-03-14", true, 1, tracker.Work),
		day(15, "2024-03-15", true, 1, "vacation"),
	)))
	ctrl.Wait()

	after, err := ctrl.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyFollowsUpdates(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)
	ctrl := startController(t, client, nil)

	updates, err := client.Updates(context.Background())
	require.NoError(t, err)

	go func() {
		for data := range updates {
			ctrl.Apply(data)
		}
	}()

	client.Push(march2024(day(15, "2024-03-15", true, 2, tracker.Holiday)))

	assert.Eventually(t, func() bool {
		return inspectCell(ctrl, "2024-03-15").Category == "holiday"
	}, time.Second, 10*time.Millisecond)
}

func TestApplyAfterStop(t *testing.T) {
	client := mocks.NewMockTrackerClient(nil, nil)

	ctrl, err := calendarview.NewFromHTML(
		logging.NewNopLogger(),
		client,
		nil,
		[]byte(testPage),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, ctrl.Run(ctx))

	assert.False(t, ctrl.Apply(march2024(day(15, "2024-03-15", true, 2, tracker.Holiday))))
}

func TestWaitReturnsWhenPostsRaceStop(t *testing.T) {
	for range 50 {
		client := mocks.NewMockTrackerClient(nil, nil)

		ctrl, err := calendarview.NewFromHTML(
			logging.NewNopLogger(),
			client,
			nil,
			[]byte(testPage),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = ctrl.Run(ctx)
		}()

		posted := make(chan struct{})
		go func() {
			defer close(posted)
			for range 100 {
				ctrl.Apply(march2024(day(15, "2024-03-15", true, 2, tracker.Holiday)))
			}
		}()

		cancel()
		<-done
		<-posted

		waited := make(chan struct{})
		go func() {
			defer close(waited)
			ctrl.Wait()
		}()

		select {
		case <-waited:
		case <-time.After(time.Second):
			t.Fatal("Wait did not return after the controller stopped")
		}
	}
}
