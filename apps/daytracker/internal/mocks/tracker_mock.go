//nolint:exhaustruct //ignore
package mocks

import (
	"context"
	"sync"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
)

// ResponderFunc answers a request. req is nil for a reset.
type ResponderFunc func(
	ctx context.Context,
	req *tracker.ToggleDayRequest,
) (tracker.CalendarData, error)

type MockTrackerClient struct {
	mu      sync.Mutex
	page    []byte
	respond ResponderFunc
	toggles []tracker.ToggleDayRequest
	resets  int
	session string
	updates chan tracker.CalendarData
}

func NewMockTrackerClient(page []byte, respond ResponderFunc) *MockTrackerClient {
	if respond == nil {
		respond = func(context.Context, *tracker.ToggleDayRequest) (tracker.CalendarData, error) {
			return tracker.CalendarData{}, nil
		}
	}

	return &MockTrackerClient{
		page:    page,
		respond: respond,
		session: "4001e9cf-3fbe-4b09-863f-bd1654cfbf76",
		updates: make(chan tracker.CalendarData),
	}
}

func (client *MockTrackerClient) GetCalendarPage(_ context.Context) ([]byte, error) {
	return client.page, nil
}

func (client *MockTrackerClient) ToggleDay(
	ctx context.Context,
	date string,
	category tracker.Category,
) (tracker.CalendarData, error) {
	req := tracker.ToggleDayRequest{Date: date, Category: category}

	client.mu.Lock()
	client.toggles = append(client.toggles, req)
	client.mu.Unlock()

	return client.respond(ctx, &req)
}

func (client *MockTrackerClient) ResetDays(ctx context.Context) (tracker.CalendarData, error) {
	client.mu.Lock()
	client.resets++
	client.mu.Unlock()

	return client.respond(ctx, nil)
}

func (client *MockTrackerClient) Updates(
	_ context.Context,
) (<-chan tracker.CalendarData, error) {
	return client.updates, nil
}

// Push hands data to the reader of Updates, blocking until it is received.
func (client *MockTrackerClient) Push(data tracker.CalendarData) {
	client.updates <- data
}

func (client *MockTrackerClient) Session() string {
	return client.session
}

func (client *MockTrackerClient) ToggleRequests() []tracker.ToggleDayRequest {
	client.mu.Lock()
	defer client.mu.Unlock()

	return append([]tracker.ToggleDayRequest{}, client.toggles...)
}

func (client *MockTrackerClient) ResetCount() int {
	client.mu.Lock()
	defer client.mu.Unlock()

	return client.resets
}
