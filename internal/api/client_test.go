package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftmark/internal/config"
	"shiftmark/internal/model"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestUserFromToken(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{
		"uid": 5, "name": "Asha", "role": "lead", "org_id": 3,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	u, err := UserFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "lead", u.Role)
	assert.Equal(t, 3, u.OrganizationID)

	_, err = UserFromToken("not-a-token")
	assert.Error(t, err)
}

func TestCheckInMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var gotAuth string
	var gotFields map[string]string
	var gotImage []byte
	r.POST("/api/checkIn", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotFields = map[string]string{
			"assignmentId":   c.PostForm("assignmentId"),
			"organizationId": c.PostForm("organizationId"),
			"latitude":       c.PostForm("latitude"),
			"longitude":      c.PostForm("longitude"),
			"forceMark":      c.PostForm("forceMark"),
		}
		fh, err := c.FormFile("image")
		require.NoError(t, err)
		f, err := fh.Open()
		require.NoError(t, err)
		defer f.Close()
		gotImage, err = io.ReadAll(f)
		require.NoError(t, err)
		c.JSON(http.StatusOK, model.StatusResponse{Status: true, Message: "checked in"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(config.APIConfig{BaseURL: srv.URL, Token: "tok123"})
	resp, err := c.CheckIn(context.Background(), model.CheckInRequest{
		AssignmentID: 10, OrganizationID: 3, Latitude: 12.97, Longitude: 77.59, ForceMark: false,
	}, []byte("jpegbytes"), "selfie_x.jpg")
	require.NoError(t, err)
	assert.True(t, resp.Status)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "10", gotFields["assignmentId"])
	assert.Equal(t, "3", gotFields["organizationId"])
	assert.Equal(t, "0", gotFields["forceMark"])
	assert.Equal(t, "12.9700000", gotFields["latitude"])
	assert.Equal(t, []byte("jpegbytes"), gotImage)
}

func TestLegacyForceMarkAlwaysOne(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var forceMark string
	r.POST("/api/checkIn", func(c *gin.Context) {
		forceMark = c.PostForm("forceMark")
		c.JSON(http.StatusOK, model.StatusResponse{Status: true})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(config.APIConfig{BaseURL: srv.URL, LegacyForceMark: true})
	_, err := c.CheckIn(context.Background(), model.CheckInRequest{AssignmentID: 1}, nil, "s.jpg")
	require.NoError(t, err)
	assert.Equal(t, "1", forceMark)
}

func TestServerErrorMessageVerbatim(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/checkIn", func(c *gin.Context) {
		c.JSON(http.StatusConflict, model.StatusResponse{Status: false, Message: "Attendance already marked for today"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(config.APIConfig{BaseURL: srv.URL})
	_, err := c.CheckIn(context.Background(), model.CheckInRequest{AssignmentID: 1}, nil, "s.jpg")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Attendance already marked for today", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestStatusFalseWith200IsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/assignShift", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.StatusResponse{Status: false, Message: "gate does not belong to station"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(config.APIConfig{BaseURL: srv.URL})
	_, err := c.AssignShift(context.Background(), model.AssignShiftRequest{
		AssignedDate: "2026/08/31", UserID: 5, ShiftTemplateID: 1, StationID: 1, GateID: 9, OrganizationID: 3,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "gate does not belong to station")
}

func TestLoginRetainsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.LoginResponse{
			Token: "fresh-token",
			User:  model.User{ID: 5, Name: "Asha", Role: "agent", OrganizationID: 3},
		})
	})
	var auth string
	r.GET("/api/assignmentList", func(c *gin.Context) {
		auth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, model.AssignmentListResponse{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(config.APIConfig{BaseURL: srv.URL})
	resp, err := c.Login(context.Background(), "asha", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", resp.Token)
	assert.Equal(t, 3, c.User().OrganizationID)

	_, err = c.AssignmentList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", auth)
}
