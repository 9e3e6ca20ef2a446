package services

import (
	"context"
	"net/http"
	"time"

	"daytracker.xdoubleu.com/apps/daytracker/internal/repositories"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/google/uuid"
)

type SessionService struct {
	sessions         repositories.SessionRepository
	expiry           time.Duration
	useSecureCookies bool
	now              func() time.Time
}

func (service *SessionService) Expiry() time.Duration {
	return service.expiry
}

// Resolve returns the session named by value, or a new one when value is not
// a session ID.
func (service *SessionService) Resolve(value string) (string, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.NewString(), true
	}
	return id.String(), false
}

func (service *SessionService) Touch(ctx context.Context, sessionID string) error {
	return service.sessions.Touch(ctx, sessionID, service.now().UTC())
}

func (service *SessionService) CreateCookie(sessionID string) *http.Cookie {
	//nolint:exhaustruct //other fields are optional
	return &http.Cookie{
		Name:     tracker.SessionCookieName,
		Value:    sessionID,
		Expires:  service.now().Add(service.expiry),
		SameSite: http.SameSiteStrictMode,
		HttpOnly: true,
		Secure:   service.useSecureCookies,
		Path:     "/",
	}
}

// PurgeIdle deletes the sessions whose cookie has expired, together with
// their tracked days.
func (service *SessionService) PurgeIdle(ctx context.Context) (int64, error) {
	return service.sessions.DeleteIdleSince(ctx, service.now().UTC().Add(-service.expiry))
}
