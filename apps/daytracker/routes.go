package daytracker

import (
	"net/http"
)

func (app *DayTracker) Routes(mux *http.ServeMux) {
	app.templateRoutes(mux)
	app.daysRoutes(mux)
	app.scheduleRoutes(mux)
	app.updatesRoutes(mux)
}
