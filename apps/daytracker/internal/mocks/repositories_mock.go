//nolint:exhaustruct //ignore
package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"github.com/xdoubleu/essentia/v2/pkg/database"
)

// ErrDuplicateDay matches Postgres refusing to upsert one row twice in a
// single statement.
var ErrDuplicateDay = errors.New("day repeated in one upsert")

type MockStore struct {
	mu       sync.Mutex
	days     map[string]map[string]models.TrackedDay
	sessions map[string]time.Time
}

func NewMockRepositories() (*repositories.Repositories, *MockStore) {
	store := &MockStore{
		days:     map[string]map[string]models.TrackedDay{},
		sessions: map[string]time.Time{},
	}

	return &repositories.Repositories{
		Days:     mockDayRepository{store: store},
		Sessions: mockSessionRepository{store: store},
	}, store
}

func (store *MockStore) LastSeen(sessionID string) (time.Time, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	at, ok := store.sessions[sessionID]
	return at, ok
}

type mockDayRepository struct {
	store *MockStore
}

func (repo mockDayRepository) GetAll(
	_ context.Context,
	sessionID string,
) ([]models.TrackedDay, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	days := []models.TrackedDay{}
	for _, day := range repo.store.days[sessionID] {
		days = append(days, day)
	}

	slices.SortFunc(days, func(a, b models.TrackedDay) int {
		return strings.Compare(a.Key(), b.Key())
	})

	return days, nil
}

func (repo mockDayRepository) Get(
	_ context.Context,
	sessionID string,
	date time.Time,
) (*models.TrackedDay, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	day, ok := repo.store.days[sessionID][models.TrackedDay{Date: date}.Key()]
	if !ok {
		return nil, database.ErrResourceNotFound
	}

	return &day, nil
}

func (repo mockDayRepository) Upsert(
	ctx context.Context,
	sessionID string,
	day models.TrackedDay,
) error {
	return repo.UpsertMany(ctx, sessionID, []models.TrackedDay{day})
}

func (repo mockDayRepository) UpsertMany(
	_ context.Context,
	sessionID string,
	days []models.TrackedDay,
) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	seen := make(map[string]struct{}, len(days))
	for _, day := range days {
		if _, ok := seen[day.Key()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDay, day.Key())
		}
		seen[day.Key()] = struct{}{}
	}

	if repo.store.days[sessionID] == nil {
		repo.store.days[sessionID] = map[string]models.TrackedDay{}
	}

	for _, day := range days {
		repo.store.days[sessionID][day.Key()] = day
	}

	return nil
}

func (repo mockDayRepository) Delete(
	_ context.Context,
	sessionID string,
	date time.Time,
) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	key := models.TrackedDay{Date: date}.Key()
	if _, ok := repo.store.days[sessionID][key]; !ok {
		return database.ErrResourceNotFound
	}

	delete(repo.store.days[sessionID], key)
	return nil
}

func (repo mockDayRepository) DeleteAll(_ context.Context, sessionID string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	delete(repo.store.days, sessionID)
	return nil
}

type mockSessionRepository struct {
	store *MockStore
}

func (repo mockSessionRepository) Touch(
	_ context.Context,
	sessionID string,
	at time.Time,
) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	repo.store.sessions[sessionID] = at
	return nil
}

func (repo mockSessionRepository) DeleteIdleSince(
	_ context.Context,
	before time.Time,
) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	var deleted int64
	for id, at := range repo.store.sessions {
		if at.Before(before) {
			delete(repo.store.sessions, id)
			delete(repo.store.days, id)
			deleted++
		}
	}

	return deleted, nil
}
