// Package api implements the remote attendance API client: JSON reads,
// multipart check-in/check-out writes, bearer-token auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"shiftmark/internal/config"
	"shiftmark/internal/model"
)

// APIError carries the server's message field verbatim when present. The
// engine does not distinguish 4xx from 5xx; both revert the state machine.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("attendance api: status %d", e.StatusCode)
}

type Client struct {
	baseURL         string
	token           string
	legacyForceMark bool
	client          *http.Client

	user model.User
}

func NewClient(cfg config.APIConfig) *Client {
	c := &Client{
		baseURL:         cfg.BaseURL,
		token:           cfg.Token,
		legacyForceMark: cfg.LegacyForceMark,
		client:          &http.Client{},
	}
	if cfg.Token != "" {
		if u, err := UserFromToken(cfg.Token); err == nil {
			c.user = u
		}
	}
	return c
}

// User is the authenticated identity, from login or from token claims.
func (c *Client) User() model.User { return c.user }

func (c *Client) Token() string { return c.token }

// Login obtains a bearer token and the user record; both are retained on the
// client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login", model.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	c.user = resp.User
	return &resp, nil
}

// ShiftAttendanceList fetches the per-user attendance view for a date
// (YYYY-MM-DD). Scoping to the authenticated user happens server-side.
func (c *Client) ShiftAttendanceList(ctx context.Context, date string) (*model.ShiftAttendanceListResponse, error) {
	q := url.Values{"date": {date}}
	var resp model.ShiftAttendanceListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/shiftAttendanceList?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AssignmentList(ctx context.Context) (*model.AssignmentListResponse, error) {
	var resp model.AssignmentListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/assignmentList", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stations(ctx context.Context) ([]model.Station, error) {
	var resp model.StationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/stations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stations, nil
}

func (c *Client) Gates(ctx context.Context) ([]model.Gate, error) {
	var resp model.GatesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/gates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Gates, nil
}

// CheckIn posts the multipart check-in: form fields plus the selfie file.
func (c *Client) CheckIn(ctx context.Context, req model.CheckInRequest, image []byte, filename string) (*model.StatusResponse, error) {
	fields := map[string]string{
		"assignmentId":   fmt.Sprint(req.AssignmentID),
		"organizationId": fmt.Sprint(req.OrganizationID),
		"latitude":       fmt.Sprintf("%.7f", req.Latitude),
		"longitude":      fmt.Sprintf("%.7f", req.Longitude),
		"forceMark":      c.forceMarkValue(req.ForceMark),
	}
	return c.doMultipart(ctx, "/api/checkIn", fields, image, filename)
}

// CheckOut closes the day's attendance record.
func (c *Client) CheckOut(ctx context.Context, req model.CheckOutRequest, image []byte, filename string) (*model.StatusResponse, error) {
	fields := map[string]string{
		"attendanceId":   fmt.Sprint(req.AttendanceID),
		"assignmentId":   fmt.Sprint(req.AssignmentID),
		"organizationId": fmt.Sprint(req.OrganizationID),
		"latitude":       fmt.Sprintf("%.7f", req.Latitude),
		"longitude":      fmt.Sprintf("%.7f", req.Longitude),
		"forceMark":      c.forceMarkValue(req.ForceMark),
	}
	return c.doMultipart(ctx, "/api/checkOut", fields, image, filename)
}

// AssignShift creates an assignment record; assignedDate must already be in
// YYYY/MM/DD wire form.
func (c *Client) AssignShift(ctx context.Context, req model.AssignShiftRequest) (*model.StatusResponse, error) {
	var resp model.StatusResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/assignShift", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	return &resp, nil
}

// forceMarkValue renders the wire flag. With the legacy switch on, the client
// always transmits 1 to match the deployed server contract.
func (c *Client) forceMarkValue(forceMark bool) string {
	if c.legacyForceMark || forceMark {
		return "1"
	}
	return "0"
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.send(req, method, path, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, image []byte, filename string) (*model.StatusResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	var resp model.StatusResponse
	if err := c.send(req, http.MethodPost, path, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	return &resp, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) send(req *http.Request, method, path string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("attendance api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// serverMessage pulls the message field out of an error body, if any.
func serverMessage(data []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return ""
}
