package model

import "time"

// Coordinates is a plain lat/lon pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ShiftTemplate is one entry of the fixed shift catalog. Start and end are
// bare HH:MM strings in the organization's local time.
type ShiftTemplate struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Assignment binds a user to a shift template at a station/gate on one
// calendar date. Records coming from the attendance endpoint may carry
// embedded display names; records from the plain assignment list do not.
type Assignment struct {
	ID               int    `json:"id"`
	UserID           int    `json:"userId"`
	ShiftTemplateID  int    `json:"shiftTemplateId"`
	StationID        int    `json:"stationId"`
	GateID           int    `json:"gateId"`
	AssignedDate     string `json:"assignedDate"`
	AssignedByUserID int    `json:"assignedByUserId"`
	IsCompleted      bool   `json:"isCompleted"`
	IsActive         bool   `json:"isActive"`

	StationName string `json:"stationName,omitempty"`
	GateName    string `json:"gateName,omitempty"`
	ShiftName   string `json:"shiftName,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// AttendanceRecord is one user's actual presence on one date. At most one
// exists per (userId, date); the server enforces this.
type AttendanceRecord struct {
	ID           int      `json:"id"`
	UserID       int      `json:"userId"`
	AssignmentID int      `json:"assignmentId"`
	Date         string   `json:"date"`
	Status       string   `json:"status"`
	CheckInTime  *string  `json:"checkInTime"`
	CheckOutTime *string  `json:"checkOutTime"`
	CheckInLat   *float64 `json:"checkInLat"`
	CheckInLon   *float64 `json:"checkInLon"`
	CheckOutLat  *float64 `json:"checkOutLat"`
	CheckOutLon  *float64 `json:"checkOutLon"`
	Remarks      string   `json:"remarks"`
}

// CheckedIn reports whether the record has an open check-in.
func (a *AttendanceRecord) CheckedIn() bool {
	return a != nil && a.CheckInTime != nil && *a.CheckInTime != ""
}

// CheckedOut reports whether the record has been closed for the day.
func (a *AttendanceRecord) CheckedOut() bool {
	return a != nil && a.CheckOutTime != nil && *a.CheckOutTime != ""
}

// Station reference data. Coordinates are optional; stations without them
// skip the geofence check.
type Station struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type Gate struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StationID int    `json:"stationId"`
}

// EffectiveShift is the resolver's output: the single shift that applies to
// the user today. Derived, never persisted or cached across reloads.
type EffectiveShift struct {
	AssignmentID    int
	ShiftTemplateID int
	Name            string
	StartTime       string
	EndTime         string
	StationID       int
	StationName     string
	GateID          int
	GateName        string
}

// SubmissionLog is the client-local audit trail of check-in/out attempts.
// It is not a retry queue; failed rows are never resubmitted.
type SubmissionLog struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	UserID       int       `json:"user_id"`
	Purpose      string    `json:"purpose"`
	AssignmentID int       `json:"assignment_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ForceMark    bool      `json:"force_mark"`
	Succeeded    bool      `json:"succeeded"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// CachedStation and CachedGate mirror the reference lists locally so the
// assignment form can render without a network round-trip.
type CachedStation struct {
	ID        int    `gorm:"primaryKey"`
	Name      string
	Latitude  *float64
	Longitude *float64
	FetchedAt time.Time
}

type CachedGate struct {
	ID        int `gorm:"primaryKey"`
	Name      string
	StationID int
	FetchedAt time.Time
}

func (SubmissionLog) TableName() string { return "submission_logs" }
func (CachedStation) TableName() string { return "cached_stations" }
func (CachedGate) TableName() string    { return "cached_gates" }
