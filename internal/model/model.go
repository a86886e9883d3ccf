package model

// Wire shapes of the remote attendance API. Field names follow the server's
// camelCase contract.

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID int    `json:"organizationId"`
}

// ShiftAttendanceListResponse is the per-user view: the attendance records for
// the authenticated user plus the assignment records the server considers in
// force. The embedded assignments take precedence during resolution.
type ShiftAttendanceListResponse struct {
	AssignedRecordsEmbedded []Assignment       `json:"assignedRecordsEmbedded"`
	Attendance              []AttendanceRecord `json:"attendance"`
}

// AssignmentListResponse is the broader assignment list; for team leads it may
// include other users' records.
type AssignmentListResponse struct {
	AssignShifts []Assignment `json:"assignShifts"`
}

type StationsResponse struct {
	Stations []Station `json:"stations"`
}

type GatesResponse struct {
	Gates []Gate `json:"gates"`
}

// StatusResponse is the envelope of every mutating endpoint.
type StatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// CheckInRequest carries the multipart fields of POST checkIn. The selfie
// image travels alongside as a file part.
type CheckInRequest struct {
	AssignmentID   int
	OrganizationID int
	Latitude       float64
	Longitude      float64
	ForceMark      bool
}

// CheckOutRequest additionally references the attendance record being closed.
type CheckOutRequest struct {
	AttendanceID   int
	AssignmentID   int
	OrganizationID int
	Latitude       float64
	Longitude      float64
	ForceMark      bool
}

// AssignShiftRequest is the JSON body of POST assignShift. AssignedDate is
// transmitted as YYYY/MM/DD.
type AssignShiftRequest struct {
	AssignedDate    string `json:"assignedDate" validate:"required"`
	UserID          int    `json:"userId" validate:"required"`
	ShiftTemplateID int    `json:"shiftTemplateId" validate:"required"`
	StationID       int    `json:"stationId" validate:"required"`
	GateID          int    `json:"gateId" validate:"required"`
	OrganizationID  int    `json:"organizationId" validate:"required"`
}
