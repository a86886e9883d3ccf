package capture

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"shiftmark/internal/device"
	"shiftmark/internal/logger"
)

type Purpose string

const (
	PurposeCheckIn        Purpose = "CHECK_IN"
	PurposeCheckOut       Purpose = "CHECK_OUT"
	PurposeTaskCompletion Purpose = "TASK_COMPLETION"
)

type State string

const (
	StateIdle                 State = "IDLE"
	StateRequestingPermission State = "REQUESTING_PERMISSION"
	StateCapturing            State = "CAPTURING"
	StatePreview              State = "PREVIEW"
	StateConfirmed            State = "CONFIRMED"
	StateCancelled            State = "CANCELLED"
)

// Attempt is one confirmed proof-of-presence image. It lives only between
// confirmation and submission; a failed submission discards it.
type Attempt struct {
	ID       uuid.UUID
	Purpose  Purpose
	Image    []byte
	Filename string
}

// Flow drives one capture attempt: permission, camera, re-encode, then a
// preview loop with retake. The flow keeps no state between attempts.
type Flow struct {
	gate      device.PermissionGate
	camera    device.Camera
	previewer device.Previewer

	maxEdgePx   int
	jpegQuality int
}

func NewFlow(gate device.PermissionGate, camera device.Camera, previewer device.Previewer, maxEdgePx, jpegQuality int) *Flow {
	if maxEdgePx <= 0 {
		maxEdgePx = 1080
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 75
	}
	return &Flow{gate: gate, camera: camera, previewer: previewer, maxEdgePx: maxEdgePx, jpegQuality: jpegQuality}
}

// Run executes the capture state machine to completion. It returns
// device.ErrPermissionDenied on camera denial and device.ErrCaptureCancelled
// when the user backs out at the camera or the preview.
func (f *Flow) Run(ctx context.Context, purpose Purpose) (*Attempt, error) {
	state := StateIdle

	state = f.transition(state, StateRequestingPermission, purpose)
	if err := f.gate.CameraAllowed(ctx); err != nil {
		f.transition(state, StateCancelled, purpose)
		return nil, fmt.Errorf("camera permission: %w", err)
	}

	opts := device.CaptureOptions{Facing: facingFor(purpose), AspectX: 3, AspectY: 4}
	for {
		state = f.transition(state, StateCapturing, purpose)
		raw, err := f.camera.Capture(ctx, opts)
		if err != nil {
			f.transition(state, StateCancelled, purpose)
			return nil, fmt.Errorf("capture: %w", err)
		}

		img, err := f.reencode(raw)
		if err != nil {
			f.transition(state, StateCancelled, purpose)
			return nil, fmt.Errorf("reencode capture: %w", err)
		}

		state = f.transition(state, StatePreview, purpose)
		action, err := f.previewer.Review(ctx, img)
		if err != nil {
			f.transition(state, StateCancelled, purpose)
			return nil, fmt.Errorf("preview: %w", err)
		}

		switch action {
		case device.PreviewConfirm:
			f.transition(state, StateConfirmed, purpose)
			id := uuid.New()
			return &Attempt{
				ID:       id,
				Purpose:  purpose,
				Image:    img,
				Filename: fmt.Sprintf("selfie_%s.jpg", id),
			}, nil
		case device.PreviewRetake:
			// Discard this image and shoot again; nothing carries over.
			continue
		default:
			f.transition(state, StateCancelled, purpose)
			return nil, device.ErrCaptureCancelled
		}
	}
}

// reencode bounds the longest edge and recompresses to JPEG so uploads stay
// small on field networks.
func (f *Flow) reencode(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > f.maxEdgePx || b.Dy() > f.maxEdgePx {
		img = imaging.Fit(img, f.maxEdgePx, f.maxEdgePx, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(f.jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func facingFor(p Purpose) device.Facing {
	if p == PurposeTaskCompletion {
		return device.FacingRear
	}
	return device.FacingFront
}

func (f *Flow) transition(from, to State, purpose Purpose) State {
	logger.Debug("capture state", "purpose", string(purpose), "from", string(from), "to", string(to))
	return to
}
