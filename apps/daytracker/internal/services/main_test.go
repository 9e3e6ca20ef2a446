package services_test

import (
	"testing"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/mocks"
	"daytracker.xdoubleu.com/apps/daytracker/internal/services"
	"daytracker.xdoubleu.com/internal/config"
	configtools "github.com/xdoubleu/essentia/v2/pkg/config"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

const sessionID = "4001e9cf-3fbe-4b09-863f-bd1654cfbf76"

func newServices(t *testing.T) (*services.Services, *mocks.MockStore) {
	t.Helper()

	cfg := config.New(logging.NewNopLogger())
	cfg.Env = configtools.TestEnv
	cfg.WebURL = "https://days.example.com"

	repos, store := mocks.NewMockRepositories()

	return services.New(logging.NewNopLogger(), cfg, repos, 24*time.Hour), store
}

func todayString() string {
	return time.Now().Format("2006-01-02")
}
