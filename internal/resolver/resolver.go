package resolver

import (
	"time"

	"shiftmark/internal/catalog"
	"shiftmark/internal/model"
)

// Resolver reconciles "today's shift" for a user out of two independently
// evolving server lists: the assignment records embedded in the attendance
// response (authoritative — what the server believes is in force) and the
// plain assignment list (fallback for shifts created but not yet reflected in
// the attendance view).
type Resolver struct {
	cat *catalog.Catalog
	loc *time.Location
}

func New(cat *catalog.Catalog, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{cat: cat, loc: loc}
}

// Resolve returns the effective shift for userID on today's calendar day, or
// nil when neither source has a match. It never mutates its inputs.
func (r *Resolver) Resolve(
	userID int,
	today time.Time,
	att *model.ShiftAttendanceListResponse,
	assigns *model.AssignmentListResponse,
	stations []model.Station,
	gates []model.Gate,
) *model.EffectiveShift {
	if att != nil {
		if a := r.matchToday(userID, today, att.AssignedRecordsEmbedded); a != nil {
			return r.build(a, stations, gates, true)
		}
	}
	if assigns != nil {
		if a := r.matchToday(userID, today, assigns.AssignShifts); a != nil {
			return r.build(a, stations, gates, false)
		}
	}
	return nil
}

// TodayAttendance returns the user's attendance record for today, or nil.
func (r *Resolver) TodayAttendance(userID int, today time.Time, att *model.ShiftAttendanceListResponse) *model.AttendanceRecord {
	if att == nil {
		return nil
	}
	for i := range att.Attendance {
		rec := &att.Attendance[i]
		if rec.UserID != userID {
			continue
		}
		if d, ok := r.parseWireDate(rec.Date); ok && sameDay(d, today, r.loc) {
			return rec
		}
	}
	return nil
}

func (r *Resolver) matchToday(userID int, today time.Time, list []model.Assignment) *model.Assignment {
	for i := range list {
		a := &list[i]
		if a.UserID != userID {
			continue
		}
		d, ok := r.parseWireDate(a.AssignedDate)
		if !ok || !sameDay(d, today, r.loc) {
			continue
		}
		return a
	}
	return nil
}

// build fills the EffectiveShift, preferring names embedded in the record
// when allowed, else resolving by id against the reference lists.
func (r *Resolver) build(a *model.Assignment, stations []model.Station, gates []model.Gate, useEmbedded bool) *model.EffectiveShift {
	es := &model.EffectiveShift{
		AssignmentID:    a.ID,
		ShiftTemplateID: a.ShiftTemplateID,
		StationID:       a.StationID,
		GateID:          a.GateID,
	}

	if tpl, ok := r.cat.ByID(a.ShiftTemplateID); ok {
		es.Name = tpl.Name
		es.StartTime = tpl.StartTime
		es.EndTime = tpl.EndTime
	}
	if useEmbedded {
		if a.ShiftName != "" {
			es.Name = a.ShiftName
		}
		if a.StartTime != "" {
			es.StartTime = a.StartTime
		}
		if a.EndTime != "" {
			es.EndTime = a.EndTime
		}
		es.StationName = a.StationName
		es.GateName = a.GateName
	}

	if es.StationName == "" {
		for i := range stations {
			if stations[i].ID == a.StationID {
				es.StationName = stations[i].Name
				break
			}
		}
	}
	if es.GateName == "" {
		for i := range gates {
			if gates[i].ID == a.GateID {
				es.GateName = gates[i].Name
				break
			}
		}
	}
	return es
}

var wireDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// parseWireDate accepts the date spellings the server is known to emit. The
// value carries no timezone and is interpreted in the organization zone.
func (r *Resolver) parseWireDate(s string) (time.Time, bool) {
	for _, layout := range wireDateLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sameDay compares calendar days in loc; time-of-day is irrelevant.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
