package daytracker

import (
	"context"
	"errors"
	"net/http"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"daytracker.xdoubleu.com/internal/constants"
	"github.com/getsentry/sentry-go"
	"github.com/xdoubleu/essentia/v2/pkg/contexttools"
)

// sessionAccess resolves the visitor's anonymous session, renewing its
// cookie, and hands the session ID to next through the request context.
func (app *DayTracker) sessionAccess(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := ""
		if cookie, err := r.Cookie(tracker.SessionCookieName); err == nil {
			value = cookie.Value
		}

		sessionID, created := app.Services.Sessions.Resolve(value)
		if created {
			app.logger.Debug("started session", "session", sessionID)
		}

		if err := app.Services.Sessions.Touch(r.Context(), sessionID); err != nil {
			panic(err)
		}

		http.SetCookie(w, app.Services.Sessions.CreateCookie(sessionID))

		r = r.WithContext(contextSetSession(r.Context(), sessionID))
		next(w, r)
	})
}

func contextSetSession(ctx context.Context, sessionID string) context.Context {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		//nolint:exhaustruct //other fields are optional
		hub.Scope().SetUser(sentry.User{
			ID: sessionID,
		})
	}

	return context.WithValue(ctx, constants.SessionContextKey, sessionID)
}

func getSession(r *http.Request) string {
	sessionID := contexttools.GetValue[string](r.Context(), constants.SessionContextKey)
	if sessionID == nil {
		panic(errors.New("no session"))
	}
	return *sessionID
}
