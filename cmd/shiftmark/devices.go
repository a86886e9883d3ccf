package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"shiftmark/internal/device"
	"shiftmark/internal/model"
)

// The CLI stands in for the mobile shell: location comes from flags, the
// "camera" reads an image file, and prompts go through the terminal.

type flagLocator struct {
	lat, lon float64
	set      bool
}

func (l flagLocator) Current(context.Context) (model.Coordinates, error) {
	if !l.set {
		return model.Coordinates{}, fmt.Errorf("location not provided (use -lat/-lon): %w", device.ErrPermissionDenied)
	}
	return model.Coordinates{Latitude: l.lat, Longitude: l.lon}, nil
}

type fileCamera struct {
	path string
}

func (c fileCamera) Capture(context.Context, device.CaptureOptions) ([]byte, error) {
	if c.path == "" {
		return nil, fmt.Errorf("no selfie file provided (use -selfie): %w", device.ErrCaptureCancelled)
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read selfie: %w", err)
	}
	return data, nil
}

type fileGate struct{}

func (fileGate) CameraAllowed(context.Context) error { return nil }

type terminalPreviewer struct {
	in *bufio.Reader
}

func (p terminalPreviewer) Review(_ context.Context, img []byte) (device.PreviewAction, error) {
	fmt.Printf("Captured selfie (%d bytes). [c]onfirm / [r]etake / [x] cancel: ", len(img))
	line, err := p.in.ReadString('\n')
	if err != nil {
		return device.PreviewCancel, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "c", "":
		return device.PreviewConfirm, nil
	case "r":
		return device.PreviewRetake, nil
	default:
		return device.PreviewCancel, nil
	}
}

type terminalPrompter struct {
	in *bufio.Reader
}

func (p terminalPrompter) ConfirmForceMark(_ context.Context, distanceLabel, stationName string) (bool, error) {
	fmt.Printf("You are %s away from %s. Force mark anyway? [y/N]: ", distanceLabel, stationName)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
