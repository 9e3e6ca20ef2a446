package daytracker

import (
	"net/http"

	"daytracker.xdoubleu.com/apps/daytracker/internal/dtos"
	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

func (app *DayTracker) daysRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /toggle_day", app.sessionAccess(app.toggleDayHandler))
	mux.HandleFunc("POST /reset_days", app.sessionAccess(app.resetDaysHandler))
}

func (app *DayTracker) toggleDayHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := getSession(r)

	var toggleDayDto dtos.ToggleDayDto

	err := httptools.ReadJSON(r.Body, &toggleDayDto)
	if err != nil {
		app.logger.Debug("malformed toggle request", logging.ErrAttr(err))
		app.writeCalendar(w, r, http.StatusBadRequest, nil)
		return
	}

	if ok, errs := toggleDayDto.Validate(); !ok {
		app.logger.Debug("invalid toggle request", "errors", errs)
		app.writeCalendar(w, r, http.StatusBadRequest, nil)
		return
	}

	date, _ := models.ParseDate(toggleDayDto.Date)

	data, err := app.Services.Days.Toggle(
		r.Context(),
		sessionID,
		date,
		toggleDayDto.Category,
	)
	if err != nil {
		httptools.HandleError(w, r, err)
		return
	}

	app.writeCalendar(w, r, http.StatusOK, data)
}

func (app *DayTracker) resetDaysHandler(w http.ResponseWriter, r *http.Request) {
	data, err := app.Services.Days.Reset(r.Context(), getSession(r))
	if err != nil {
		httptools.HandleError(w, r, err)
		return
	}

	app.writeCalendar(w, r, http.StatusOK, data)
}

// writeCalendar answers with the calendar data, or with a failure when data
// is nil.
func (app *DayTracker) writeCalendar(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	data tracker.CalendarData,
) {
	response := tracker.CalendarResponse{
		Success:      data != nil,
		CalendarData: data,
	}

	err := httptools.WriteJSON(w, status, response, nil)
	if err != nil {
		httptools.HandleError(w, r, err)
	}
}
