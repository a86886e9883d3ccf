package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shiftmark/internal/api"
	"shiftmark/internal/capture"
	"shiftmark/internal/device"
	"shiftmark/internal/geofence"
	"shiftmark/internal/logger"
	"shiftmark/internal/model"
	"shiftmark/internal/resolver"
)

type State string

const (
	StateNoShift            State = "NO_SHIFT"
	StateAwaitingCheckIn    State = "AWAITING_CHECK_IN"
	StateSubmittingCheckIn  State = "SUBMITTING_CHECK_IN"
	StateCheckedIn          State = "CHECKED_IN"
	StateSubmittingCheckOut State = "SUBMITTING_CHECK_OUT"
	StateCheckedOut         State = "CHECKED_OUT"
)

var (
	// ErrBusy: a submission is already in flight; the trigger is a no-op.
	ErrBusy = errors.New("submission in progress")
	// ErrNoShift: nothing resolved for today; the user should self-assign.
	ErrNoShift = errors.New("no shift assigned for today")
	// ErrWrongState: the requested operation does not apply to the current state.
	ErrWrongState = errors.New("operation not available in current state")
	// ErrSubmissionCancelled: the operator declined the force-mark prompt.
	ErrSubmissionCancelled = errors.New("submission cancelled")
)

// Recorder is the optional local audit sink. A nil Recorder disables both
// history logging and reference caching.
type Recorder interface {
	LogSubmission(log model.SubmissionLog) error
	CacheReference(stations []model.Station, gates []model.Gate) error
}

// Attendance is the top-level check-in/check-out orchestrator. Its current
// state doubles as the mutual-exclusion mechanism: a second trigger while a
// submission is in flight fails with ErrBusy.
type Attendance struct {
	api      *api.Client
	flow     *capture.Flow
	locator  device.Locator
	prompter device.Prompter
	policy   *geofence.Policy
	res      *resolver.Resolver
	rec      Recorder
	loc      *time.Location

	// Now is injected for tests; defaults to time.Now.
	Now func() time.Time

	mu         sync.Mutex
	state      State
	shift      *model.EffectiveShift
	attendance *model.AttendanceRecord
	stations   []model.Station
	gates      []model.Gate
}

func NewAttendance(
	apiClient *api.Client,
	flow *capture.Flow,
	locator device.Locator,
	prompter device.Prompter,
	policy *geofence.Policy,
	res *resolver.Resolver,
	rec Recorder,
	loc *time.Location,
) *Attendance {
	if loc == nil {
		loc = time.Local
	}
	return &Attendance{
		api:      apiClient,
		flow:     flow,
		locator:  locator,
		prompter: prompter,
		policy:   policy,
		res:      res,
		rec:      rec,
		loc:      loc,
		Now:      time.Now,
		state:    StateNoShift,
	}
}

func (s *Attendance) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Shift returns the resolved effective shift, nil when none.
func (s *Attendance) Shift() *model.EffectiveShift {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shift == nil {
		return nil
	}
	cp := *s.shift
	return &cp
}

// TodayAttendance returns today's attendance record, nil when none.
func (s *Attendance) TodayAttendance() *model.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attendance == nil {
		return nil
	}
	cp := *s.attendance
	return &cp
}

func (s *Attendance) Stations() []model.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Station, len(s.stations))
	copy(out, s.stations)
	return out
}

func (s *Attendance) Gates() []model.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Gate, len(s.gates))
	copy(out, s.gates)
	return out
}

// Refresh re-fetches both lists plus reference data and re-runs the resolver,
// so the visible state always reflects server-side truth rather than a
// locally synthesized record.
func (s *Attendance) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSubmittingCheckIn || s.state == StateSubmittingCheckOut {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()

	return s.reload(ctx)
}

func (s *Attendance) reload(ctx context.Context) error {
	now := s.Now().In(s.loc)
	date := now.Format("2006-01-02")

	att, err := s.api.ShiftAttendanceList(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch attendance list: %w", err)
	}
	assigns, err := s.api.AssignmentList(ctx)
	if err != nil {
		return fmt.Errorf("fetch assignment list: %w", err)
	}
	stations, err := s.api.Stations(ctx)
	if err != nil {
		return fmt.Errorf("fetch stations: %w", err)
	}
	gates, err := s.api.Gates(ctx)
	if err != nil {
		return fmt.Errorf("fetch gates: %w", err)
	}

	if s.rec != nil {
		if err := s.rec.CacheReference(stations, gates); err != nil {
			logger.Warn("reference cache update failed", "err", err)
		}
	}

	userID := s.api.User().ID
	shift := s.res.Resolve(userID, now, att, assigns, stations, gates)
	record := s.res.TodayAttendance(userID, now, att)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = shift
	s.attendance = record
	s.stations = stations
	s.gates = gates
	s.state = deriveState(shift, record)
	logger.Info("attendance refreshed", "state", string(s.state), "user", userID, "date", date)
	return nil
}

// deriveState maps resolver output onto the day's state. NO_SHIFT and
// CHECKED_OUT are terminal until the next calendar day's reload.
func deriveState(shift *model.EffectiveShift, record *model.AttendanceRecord) State {
	switch {
	case shift == nil:
		return StateNoShift
	case record.CheckedOut():
		return StateCheckedOut
	case record.CheckedIn():
		return StateCheckedIn
	default:
		return StateAwaitingCheckIn
	}
}

// CheckIn runs the full proof-of-presence sequence: location, selfie,
// geofence, then one submission attempt. Every failure path returns the
// machine to AWAITING_CHECK_IN; nothing is retried automatically and the
// capture attempt is never reused.
func (s *Attendance) CheckIn(ctx context.Context) error {
	shift, err := s.begin(StateAwaitingCheckIn, StateSubmittingCheckIn)
	if err != nil {
		return err
	}

	coords, attempt, forceMark, err := s.gatherProof(ctx, capture.PurposeCheckIn, shift)
	if err != nil {
		s.revert(StateAwaitingCheckIn)
		return err
	}

	req := model.CheckInRequest{
		AssignmentID:   shift.AssignmentID,
		OrganizationID: s.api.User().OrganizationID,
		Latitude:       coords.Latitude,
		Longitude:      coords.Longitude,
		ForceMark:      forceMark,
	}
	_, err = s.api.CheckIn(ctx, req, attempt.Image, attempt.Filename)
	s.record(capture.PurposeCheckIn, shift.AssignmentID, coords, forceMark, err)
	if err != nil {
		s.revert(StateAwaitingCheckIn)
		return fmt.Errorf("check-in rejected: %w", err)
	}

	logger.Info("check-in accepted", "assignment", shift.AssignmentID, "force_mark", forceMark)
	return s.settle(ctx, StateCheckedIn)
}

// CheckOut mirrors CheckIn against the open attendance record.
func (s *Attendance) CheckOut(ctx context.Context) error {
	shift, err := s.begin(StateCheckedIn, StateSubmittingCheckOut)
	if err != nil {
		return err
	}

	s.mu.Lock()
	record := s.attendance
	s.mu.Unlock()
	if record == nil {
		s.revert(StateCheckedIn)
		return fmt.Errorf("no attendance record to close: %w", ErrWrongState)
	}

	coords, attempt, forceMark, err := s.gatherProof(ctx, capture.PurposeCheckOut, shift)
	if err != nil {
		s.revert(StateCheckedIn)
		return err
	}

	req := model.CheckOutRequest{
		AttendanceID:   record.ID,
		AssignmentID:   shift.AssignmentID,
		OrganizationID: s.api.User().OrganizationID,
		Latitude:       coords.Latitude,
		Longitude:      coords.Longitude,
		ForceMark:      forceMark,
	}
	_, err = s.api.CheckOut(ctx, req, attempt.Image, attempt.Filename)
	s.record(capture.PurposeCheckOut, shift.AssignmentID, coords, forceMark, err)
	if err != nil {
		s.revert(StateCheckedIn)
		return fmt.Errorf("check-out rejected: %w", err)
	}

	logger.Info("check-out accepted", "attendance", record.ID, "force_mark", forceMark)
	return s.settle(ctx, StateCheckedOut)
}

// begin moves the machine into a submitting state, enforcing the one-attempt
// guard, and hands back the shift being acted on.
func (s *Attendance) begin(want, submitting State) (*model.EffectiveShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case want:
	case StateSubmittingCheckIn, StateSubmittingCheckOut:
		return nil, ErrBusy
	case StateNoShift:
		return nil, ErrNoShift
	default:
		return nil, fmt.Errorf("%w: state %s", ErrWrongState, s.state)
	}
	if s.shift == nil {
		return nil, ErrNoShift
	}
	s.state = submitting
	cp := *s.shift
	return &cp, nil
}

// gatherProof sequences location acquisition, the capture flow, and the
// geofence decision, returning the final force-mark flag.
func (s *Attendance) gatherProof(ctx context.Context, purpose capture.Purpose, shift *model.EffectiveShift) (model.Coordinates, *capture.Attempt, bool, error) {
	coords, err := s.locator.Current(ctx)
	if err != nil {
		return model.Coordinates{}, nil, false, fmt.Errorf("acquire location: %w", err)
	}

	attempt, err := s.flow.Run(ctx, purpose)
	if err != nil {
		return model.Coordinates{}, nil, false, err
	}

	s.mu.Lock()
	stations := s.stations
	s.mu.Unlock()

	forceMark := false
	decision := s.policy.Check(coords, shift.StationID, stations)
	switch decision.Verdict {
	case geofence.Warn:
		ok, err := s.prompter.ConfirmForceMark(ctx, decision.DistanceLabel(), decision.StationName)
		if err != nil {
			return model.Coordinates{}, nil, false, fmt.Errorf("force-mark prompt: %w", err)
		}
		if !ok {
			return model.Coordinates{}, nil, false, ErrSubmissionCancelled
		}
		forceMark = true
		logger.Warn("geofence override", "station", decision.StationName, "distance", decision.DistanceLabel())
	case geofence.Skipped:
		logger.Debug("geofence skipped", "reason", decision.Reason)
	}

	return coords, attempt, forceMark, nil
}

// settle reloads server truth after an accepted submission. If the reload
// itself fails the local transition still stands; the next refresh wins.
func (s *Attendance) settle(ctx context.Context, fallback State) error {
	s.mu.Lock()
	s.state = fallback
	s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		logger.Warn("post-submission reload failed", "err", err)
	}
	return nil
}

func (s *Attendance) revert(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

func (s *Attendance) record(purpose capture.Purpose, assignmentID int, coords model.Coordinates, forceMark bool, submitErr error) {
	if s.rec == nil {
		return
	}
	entry := model.SubmissionLog{
		UserID:       s.api.User().ID,
		Purpose:      string(purpose),
		AssignmentID: assignmentID,
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		ForceMark:    forceMark,
		Succeeded:    submitErr == nil,
		CreatedAt:    s.Now(),
	}
	if submitErr != nil {
		entry.Message = submitErr.Error()
	}
	if err := s.rec.LogSubmission(entry); err != nil {
		logger.Warn("submission log write failed", "err", err)
	}
}
