package daytracker

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"daytracker.xdoubleu.com/apps/daytracker/internal/services"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
)

//nolint:mnd //no magic number
const maxImportSize = 10 << 20

func (app *DayTracker) scheduleRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /export_schedule", app.sessionAccess(app.exportCSVHandler))
	mux.HandleFunc("GET /export_schedule.ics", app.sessionAccess(app.exportICSHandler))
	mux.HandleFunc("POST /import_schedule", app.sessionAccess(app.importScheduleHandler))
}

func (app *DayTracker) exportCSVHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	err := app.Services.Schedule.ExportCSV(r.Context(), getSession(r), &buf)
	if err != nil {
		panic(err)
	}

	writeAttachment(w, &buf, "text/csv", services.ScheduleCSVName)
}

func (app *DayTracker) exportICSHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	err := app.Services.Schedule.ExportICS(r.Context(), getSession(r), &buf)
	if err != nil {
		panic(err)
	}

	writeAttachment(w, &buf, "text/calendar", services.ScheduleICSName)
}

func writeAttachment(w http.ResponseWriter, body io.Reader, contentType string, name string) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)

	_, _ = io.Copy(w, body)
}

// importScheduleHandler merges an uploaded schedule and returns to the
// calendar whether or not the upload could be used.
func (app *DayTracker) importScheduleHandler(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	sessionID := getSession(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		app.logger.Debug("no schedule uploaded", logging.ErrAttr(err))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		return
	}

	imported, err := app.Services.Schedule.Import(r.Context(), sessionID, header.Filename, file)
	if err != nil {
		app.logger.Warn(
			"failed to import schedule",
			"file", header.Filename,
			logging.ErrAttr(err),
		)
		return
	}

	app.logger.Info("imported schedule", "file", header.Filename, "days", imported)
}
