package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"shiftmark/internal/api"
	"shiftmark/internal/logger"
	"shiftmark/internal/model"
)

// RoleLead marks users allowed to assign shifts to others and pick dates.
const RoleLead = "lead"

// AssignForm is the five mandatory fields of the assignment screen. Gate
// choices are filtered to the selected station before submission.
type AssignForm struct {
	TargetUserID    int       `validate:"required"`
	ShiftTemplateID int       `validate:"required"`
	StationID       int       `validate:"required"`
	GateID          int       `validate:"required"`
	Date            time.Time `validate:"required"`
}

type reloader interface {
	Refresh(ctx context.Context) error
}

// Assigner submits self- and lead-assignments. The remote API is the final
// validator; client-side checks only catch what the form should have blocked.
type Assigner struct {
	api      *api.Client
	engine   reloader
	validate *validator.Validate
	loc      *time.Location

	Now func() time.Time
}

func NewAssigner(apiClient *api.Client, engine reloader, loc *time.Location) *Assigner {
	if loc == nil {
		loc = time.Local
	}
	return &Assigner{
		api:      apiClient,
		engine:   engine,
		validate: validator.New(),
		loc:      loc,
		Now:      time.Now,
	}
}

// GatesForStation filters the gate list the way the form does.
func GatesForStation(gates []model.Gate, stationID int) []model.Gate {
	var out []model.Gate
	for _, g := range gates {
		if g.StationID == stationID {
			out = append(out, g)
		}
	}
	return out
}

// Submit posts the assignment. Non-leads always assign themselves for today,
// whatever the form says. On success the same reload as after check-in/out
// runs so the resolver surfaces the new assignment immediately.
func (a *Assigner) Submit(ctx context.Context, form AssignForm, gates []model.Gate) error {
	user := a.api.User()
	if user.Role != RoleLead {
		form.TargetUserID = user.ID
		form.Date = a.Now().In(a.loc)
	}

	if err := a.validate.Struct(form); err != nil {
		return fmt.Errorf("assignment form incomplete: %w", err)
	}
	if !gateBelongsToStation(gates, form.GateID, form.StationID) {
		return fmt.Errorf("gate %d does not belong to station %d", form.GateID, form.StationID)
	}

	req := model.AssignShiftRequest{
		AssignedDate:    form.Date.In(a.loc).Format("2006/01/02"),
		UserID:          form.TargetUserID,
		ShiftTemplateID: form.ShiftTemplateID,
		StationID:       form.StationID,
		GateID:          form.GateID,
		OrganizationID:  user.OrganizationID,
	}
	if _, err := a.api.AssignShift(ctx, req); err != nil {
		return fmt.Errorf("assign shift: %w", err)
	}

	logger.Info("shift assigned", "user", req.UserID, "template", req.ShiftTemplateID,
		"station", req.StationID, "gate", req.GateID, "date", req.AssignedDate)

	if a.engine != nil {
		if err := a.engine.Refresh(ctx); err != nil {
			logger.Warn("post-assignment reload failed", "err", err)
		}
	}
	return nil
}

func gateBelongsToStation(gates []model.Gate, gateID, stationID int) bool {
	if len(gates) == 0 {
		// No reference data to check against; the server decides.
		return true
	}
	for _, g := range gates {
		if g.ID == gateID {
			return g.StationID == stationID
		}
	}
	return false
}
