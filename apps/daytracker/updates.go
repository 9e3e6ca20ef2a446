package daytracker

import (
	"net/http"
	"net/url"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

func (app *DayTracker) updatesRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /updates", app.sessionAccess(app.updatesHandler))
}

// updatesHandler streams the session's calendar to the client after every
// change made to its days, from this or any other connection.
func (app *DayTracker) updatesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSession(r)

	conn, err := websocket.Accept(
		w,
		r,
		//nolint:exhaustruct //other fields are optional
		&websocket.AcceptOptions{OriginPatterns: app.originPatterns()},
	)
	if err != nil {
		app.logger.Debug("websocket accept error", logging.ErrAttr(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing connection")

	updates, unsubscribe := app.Services.Updates.Subscribe(sessionID)
	defer unsubscribe()

	// the client never writes, reading only observes the close
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-updates:
			err = wsjson.Write(ctx, conn, tracker.CalendarResponse{
				Success:      true,
				CalendarData: data,
			})
			if err != nil {
				app.logger.Debug("failed to push update", logging.ErrAttr(err))
				return
			}
		}
	}
}

func (app *DayTracker) originPatterns() []string {
	u, err := url.Parse(app.Config.WebURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
