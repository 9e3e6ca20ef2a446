package services

import (
	"sync"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
)

// UpdateService fans the calendar data of a session out to the live
// connections of that session.
type UpdateService struct {
	mu          sync.Mutex
	subscribers map[string]map[chan tracker.CalendarData]struct{}
}

func NewUpdateService() *UpdateService {
	return &UpdateService{
		mu:          sync.Mutex{},
		subscribers: make(map[string]map[chan tracker.CalendarData]struct{}),
	}
}

// Subscribe registers a listener for sessionID. A slow listener only keeps
// the latest update it has not received yet. The returned func unregisters
// the listener.
func (service *UpdateService) Subscribe(
	sessionID string,
) (<-chan tracker.CalendarData, func()) {
	updates := make(chan tracker.CalendarData, 1)

	service.mu.Lock()
	defer service.mu.Unlock()

	if service.subscribers[sessionID] == nil {
		service.subscribers[sessionID] = make(map[chan tracker.CalendarData]struct{})
	}
	service.subscribers[sessionID][updates] = struct{}{}

	return updates, func() {
		service.mu.Lock()
		defer service.mu.Unlock()

		delete(service.subscribers[sessionID], updates)
		if len(service.subscribers[sessionID]) == 0 {
			delete(service.subscribers, sessionID)
		}
	}
}

func (service *UpdateService) Publish(sessionID string, data tracker.CalendarData) {
	service.mu.Lock()
	defer service.mu.Unlock()

	for updates := range service.subscribers[sessionID] {
		select {
		case updates <- data:
			continue
		default:
		}

		// replace the undelivered update
		select {
		case <-updates:
		default:
		}
		updates <- data
	}
}

func (service *UpdateService) Subscribers(sessionID string) int {
	service.mu.Lock()
	defer service.mu.Unlock()

	return len(service.subscribers[sessionID])
}
