// Package device declares the platform capabilities the workflow engine
// consumes. The mobile shell (or the CLI stand-ins) provides implementations.
package device

import (
	"context"
	"errors"

	"shiftmark/internal/model"
)

var (
	// ErrPermissionDenied: the platform refused location or camera access.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrCaptureCancelled: the user backed out of the camera screen.
	ErrCaptureCancelled = errors.New("capture cancelled")
)

// Locator acquires the current position at balanced accuracy. Blocking;
// cancellable through ctx only.
type Locator interface {
	Current(ctx context.Context) (model.Coordinates, error)
}

type Facing int

const (
	FacingFront Facing = iota // selfies for check-in/check-out
	FacingRear                // task-completion captures
)

// CaptureOptions fix the aspect ratio and source camera for one shot.
type CaptureOptions struct {
	Facing Facing
	// AspectX:AspectY crop applied by the platform camera UI.
	AspectX int
	AspectY int
}

// Camera takes one photo and returns the raw encoded bytes, or
// ErrCaptureCancelled / ErrPermissionDenied.
type Camera interface {
	Capture(ctx context.Context, opts CaptureOptions) ([]byte, error)
}

// PermissionGate answers whether the camera may be used at all. A denial is
// surfaced before the camera UI ever opens.
type PermissionGate interface {
	CameraAllowed(ctx context.Context) error
}

// PreviewAction is the user's choice on the full-screen preview.
type PreviewAction int

const (
	PreviewConfirm PreviewAction = iota
	PreviewRetake
	PreviewCancel
)

// Previewer shows a captured image and collects confirm/retake/cancel.
type Previewer interface {
	Review(ctx context.Context, image []byte) (PreviewAction, error)
}

// Prompter collects the force-mark decision when the geofence warns.
type Prompter interface {
	// ConfirmForceMark reports true to submit anyway, false to cancel.
	ConfirmForceMark(ctx context.Context, distanceLabel, stationName string) (bool, error)
}
