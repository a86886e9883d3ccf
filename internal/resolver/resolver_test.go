package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftmark/internal/catalog"
	"shiftmark/internal/model"
)

var (
	testLoc = time.Local
	today   = time.Date(2026, 8, 31, 10, 15, 0, 0, testLoc)
)

func newResolver() *Resolver {
	return New(catalog.Default(), testLoc)
}

func refData() ([]model.Station, []model.Gate) {
	lat, lon := 12.97, 77.59
	stations := []model.Station{{ID: 1, Name: "Central Depot", Latitude: &lat, Longitude: &lon}}
	gates := []model.Gate{{ID: 7, Name: "Gate A", StationID: 1}}
	return stations, gates
}

func TestEmbeddedListWinsOverFallback(t *testing.T) {
	stations, gates := refData()
	att := &model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: []model.Assignment{
			{ID: 10, UserID: 5, ShiftTemplateID: 1, StationID: 1, GateID: 7, AssignedDate: "2026-08-31"},
		},
	}
	assigns := &model.AssignmentListResponse{
		AssignShifts: []model.Assignment{
			{ID: 11, UserID: 5, ShiftTemplateID: 2, StationID: 1, GateID: 7, AssignedDate: "2026-08-31"},
		},
	}

	es := newResolver().Resolve(5, today, att, assigns, stations, gates)
	require.NotNil(t, es)
	assert.Equal(t, 10, es.AssignmentID)
	assert.Equal(t, 1, es.ShiftTemplateID)
	assert.Equal(t, "Morning", es.Name)
}

func TestFallbackListWhenEmbeddedEmpty(t *testing.T) {
	stations, gates := refData()
	assigns := &model.AssignmentListResponse{
		AssignShifts: []model.Assignment{
			{ID: 11, UserID: 5, ShiftTemplateID: 2, StationID: 1, GateID: 7, AssignedDate: "2026-08-31"},
		},
	}

	es := newResolver().Resolve(5, today, &model.ShiftAttendanceListResponse{}, assigns, stations, gates)
	require.NotNil(t, es)
	assert.Equal(t, 11, es.AssignmentID)
	assert.Equal(t, "General", es.Name)
	assert.Equal(t, "09:00", es.StartTime)
	assert.Equal(t, "Central Depot", es.StationName)
	assert.Equal(t, "Gate A", es.GateName)
}

func TestEmbeddedNamesPreferredOverLookup(t *testing.T) {
	stations, gates := refData()
	att := &model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: []model.Assignment{{
			ID: 10, UserID: 5, ShiftTemplateID: 1, StationID: 1, GateID: 7,
			AssignedDate: "2026-08-31",
			StationName:  "Central Depot (North)", GateName: "Gate A1",
			ShiftName: "Morning Special", StartTime: "05:30", EndTime: "13:30",
		}},
	}

	es := newResolver().Resolve(5, today, att, nil, stations, gates)
	require.NotNil(t, es)
	assert.Equal(t, "Central Depot (North)", es.StationName)
	assert.Equal(t, "Gate A1", es.GateName)
	assert.Equal(t, "Morning Special", es.Name)
	assert.Equal(t, "05:30", es.StartTime)
}

func TestEmbeddedWithoutNamesFallsBackToLookup(t *testing.T) {
	stations, gates := refData()
	att := &model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: []model.Assignment{
			{ID: 10, UserID: 5, ShiftTemplateID: 3, StationID: 1, GateID: 7, AssignedDate: "2026-08-31"},
		},
	}

	es := newResolver().Resolve(5, today, att, nil, stations, gates)
	require.NotNil(t, es)
	assert.Equal(t, "Central Depot", es.StationName)
	assert.Equal(t, "Gate A", es.GateName)
	assert.Equal(t, "Evening", es.Name)
}

func TestDateMatchIgnoresTimeOfDay(t *testing.T) {
	stations, gates := refData()
	r := newResolver()

	att := &model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: []model.Assignment{
			{ID: 10, UserID: 5, ShiftTemplateID: 1, StationID: 1, GateID: 7, AssignedDate: "2026-08-31 23:59:59"},
		},
	}
	assert.NotNil(t, r.Resolve(5, today, att, nil, stations, gates))

	att.AssignedRecordsEmbedded[0].AssignedDate = "2026-08-30 23:59:59"
	assert.Nil(t, r.Resolve(5, today, att, nil, stations, gates))
}

func TestNoMatchForOtherUsersOrDays(t *testing.T) {
	stations, gates := refData()
	r := newResolver()

	att := &model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: []model.Assignment{
			{ID: 10, UserID: 6, ShiftTemplateID: 1, StationID: 1, GateID: 7, AssignedDate: "2026-08-31"},
		},
	}
	assigns := &model.AssignmentListResponse{
		AssignShifts: []model.Assignment{
			{ID: 11, UserID: 5, ShiftTemplateID: 2, StationID: 1, GateID: 7, AssignedDate: "2026-09-01"},
		},
	}
	assert.Nil(t, r.Resolve(5, today, att, assigns, stations, gates))
	assert.Nil(t, r.Resolve(5, today, nil, nil, stations, gates))
}

func TestTodayAttendance(t *testing.T) {
	r := newResolver()
	in := "08:59:02"
	att := &model.ShiftAttendanceListResponse{
		Attendance: []model.AttendanceRecord{
			{ID: 1, UserID: 5, Date: "2026-08-30", Status: "PRESENT"},
			{ID: 2, UserID: 5, Date: "2026-08-31", Status: "PRESENT", CheckInTime: &in},
			{ID: 3, UserID: 9, Date: "2026-08-31", Status: "PRESENT"},
		},
	}

	rec := r.TodayAttendance(5, today, att)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.ID)
	assert.True(t, rec.CheckedIn())
	assert.False(t, rec.CheckedOut())

	assert.Nil(t, r.TodayAttendance(7, today, att))
	assert.Nil(t, r.TodayAttendance(5, today, nil))
}
