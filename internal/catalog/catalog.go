package catalog

import (
	"fmt"
	"time"

	"shiftmark/internal/model"
)

// Catalog is the fixed set of shift templates for a deployment. Templates are
// never created or destroyed at runtime.
type Catalog struct {
	templates []model.ShiftTemplate
}

// Default returns the three-shift catalog used by this deployment.
func Default() *Catalog {
	return New([]model.ShiftTemplate{
		{ID: 1, Name: "Morning", StartTime: "06:00", EndTime: "14:00"},
		{ID: 2, Name: "General", StartTime: "09:00", EndTime: "18:00"},
		{ID: 3, Name: "Evening", StartTime: "14:00", EndTime: "22:00"},
	})
}

func New(templates []model.ShiftTemplate) *Catalog {
	c := &Catalog{templates: make([]model.ShiftTemplate, len(templates))}
	copy(c.templates, templates)
	return c
}

// ByID looks up a template; the second return is false for unknown ids.
func (c *Catalog) ByID(id int) (model.ShiftTemplate, bool) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, true
		}
	}
	return model.ShiftTemplate{}, false
}

// All returns a copy of the catalog in declaration order.
func (c *Catalog) All() []model.ShiftTemplate {
	out := make([]model.ShiftTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// ParseWireTime interprets a bare HH:MM or HH:MM:SS wire string as a time of
// day in loc on the given date. The server omits timezone information on
// purpose: these values are organization-local, and parsing them as UTC would
// shift every displayed time by the local offset.
func ParseWireTime(date time.Time, s string, loc *time.Location) (time.Time, error) {
	var layout string
	switch len(s) {
	case len("15:04"):
		layout = "15:04"
	case len("15:04:05"):
		layout = "15:04:05"
	default:
		return time.Time{}, fmt.Errorf("bad time of day %q", s)
	}
	tod, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, loc), nil
}
