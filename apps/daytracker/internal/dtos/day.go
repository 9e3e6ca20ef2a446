package dtos

import (
	"daytracker.xdoubleu.com/apps/daytracker/internal/models"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/xdoubleu/essentia/v2/pkg/validate"
)

type ToggleDayDto tracker.ToggleDayRequest

func (dto *ToggleDayDto) Validate() (bool, map[string]string) {
	if dto.Category == "" {
		dto.Category = tracker.Work
	}

	v := validate.New()

	validate.Check(v, "date", dto.Date, validate.IsNotEmpty)
	validate.Check(v, "date", dto.Date, isDate)
	validate.Check(v, "category", dto.Category, validate.IsInSlice(tracker.Categories))

	return v.Valid(), v.Errors()
}

func isDate(value string) (bool, string) {
	if _, err := models.ParseDate(value); err != nil {
		return false, "must be a date formatted as YYYY-MM-DD"
	}
	return true, ""
}
