// stubapi is an in-memory stand-in for the remote attendance API, used for
// local development of the client and for demos. It enforces the same
// contract the real server does, including the one-attendance-per-day rule.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shiftmark/internal/model"
)

var jwtSecret = []byte("shiftmark-stub-secret")

type account struct {
	model.User
	PasswordHash []byte
}

type server struct {
	mu          sync.Mutex
	accounts    map[string]account
	stations    []model.Station
	gates       []model.Gate
	assignments []model.Assignment
	attendance  []model.AttendanceRecord
	nextID      int
}

func newServer() *server {
	hash := func(pw string) []byte {
		h, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		return h
	}
	lat1, lon1 := 12.9700, 77.5900
	lat2, lon2 := 12.9950, 77.6100
	return &server{
		accounts: map[string]account{
			"asha":   {User: model.User{ID: 5, Name: "Asha", Role: "agent", OrganizationID: 3}, PasswordHash: hash("123456")},
			"vikram": {User: model.User{ID: 6, Name: "Vikram", Role: "lead", OrganizationID: 3}, PasswordHash: hash("123456")},
		},
		stations: []model.Station{
			{ID: 1, Name: "Station 1", Latitude: &lat1, Longitude: &lon1},
			{ID: 2, Name: "Station 2", Latitude: &lat2, Longitude: &lon2},
			{ID: 3, Name: "Yard Office"}, // no registered coordinates
		},
		gates: []model.Gate{
			{ID: 7, Name: "Gate A", StationID: 1},
			{ID: 8, Name: "Gate B", StationID: 1},
			{ID: 9, Name: "Gate A", StationID: 2},
		},
		nextID: 100,
	}
}

func main() {
	port := flag.Int("port", 8391, "listen port")
	flag.Parse()

	s := newServer()
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.POST("/api/login", s.login)
	api := r.Group("/api", auth())
	api.GET("/shiftAttendanceList", s.shiftAttendanceList)
	api.GET("/assignmentList", s.assignmentList)
	api.GET("/stations", s.listStations)
	api.GET("/gates", s.listGates)
	api.POST("/checkIn", s.checkIn)
	api.POST("/checkOut", s.checkOut)
	api.POST("/assignShift", s.assignShift)

	slog.Info("stubapi starting", "port", *port)
	if err := r.Run(fmt.Sprintf(":%d", *port)); err != nil {
		slog.Error("stubapi failed", "err", err)
	}
}

func auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		c.Set("uid", int(claims["uid"].(float64)))
		c.Set("org_id", int(claims["org_id"].(float64)))
		c.Set("role", claims["role"].(string))
		c.Next()
	}
}

func (s *server) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	acct, ok := s.accounts[req.Username]
	if !ok || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong username or password"})
		return
	}

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":    acct.ID,
		"name":   acct.Name,
		"role":   acct.Role,
		"org_id": acct.OrganizationID,
		"exp":    time.Now().Add(7 * 24 * time.Hour).Unix(),
	}).SignedString(jwtSecret)

	c.JSON(http.StatusOK, model.LoginResponse{Token: token, User: acct.User})
}

func (s *server) shiftAttendanceList(c *gin.Context) {
	uid := c.GetInt("uid")
	s.mu.Lock()
	defer s.mu.Unlock()

	var embedded []model.Assignment
	for _, a := range s.assignments {
		if a.UserID != uid {
			continue
		}
		// Embed display names the way the production endpoint does.
		a.StationName = s.stationName(a.StationID)
		a.GateName = s.gateName(a.GateID)
		embedded = append(embedded, a)
	}
	var attendance []model.AttendanceRecord
	for _, rec := range s.attendance {
		if rec.UserID == uid {
			attendance = append(attendance, rec)
		}
	}
	c.JSON(http.StatusOK, model.ShiftAttendanceListResponse{
		AssignedRecordsEmbedded: embedded,
		Attendance:              attendance,
	})
}

func (s *server) assignmentList(c *gin.Context) {
	uid := c.GetInt("uid")
	role := c.GetString("role")
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Assignment
	for _, a := range s.assignments {
		if role == "lead" || a.UserID == uid {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, model.AssignmentListResponse{AssignShifts: out})
}

func (s *server) listStations(c *gin.Context) {
	c.JSON(http.StatusOK, model.StationsResponse{Stations: s.stations})
}

func (s *server) listGates(c *gin.Context) {
	c.JSON(http.StatusOK, model.GatesResponse{Gates: s.gates})
}

func (s *server) checkIn(c *gin.Context) {
	uid := c.GetInt("uid")
	assignmentID, _ := strconv.Atoi(c.PostForm("assignmentId"))
	lat, _ := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lon, _ := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if _, err := c.FormFile("image"); err != nil {
		c.JSON(http.StatusBadRequest, model.StatusResponse{Status: false, Message: "proof-of-presence image is required"})
		return
	}

	today := time.Now().Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.attendance {
		if rec.UserID == uid && rec.Date == today {
			c.JSON(http.StatusConflict, model.StatusResponse{Status: false, Message: "Attendance already marked for today"})
			return
		}
	}

	now := time.Now().Format("15:04:05")
	s.nextID++
	s.attendance = append(s.attendance, model.AttendanceRecord{
		ID: s.nextID, UserID: uid, AssignmentID: assignmentID,
		Date: today, Status: "PRESENT",
		CheckInTime: &now, CheckInLat: &lat, CheckInLon: &lon,
	})
	slog.Info("check-in", "uid", uid, "assignment", assignmentID, "force_mark", c.PostForm("forceMark"))
	c.JSON(http.StatusOK, model.StatusResponse{Status: true, Message: "Checked in"})
}

func (s *server) checkOut(c *gin.Context) {
	uid := c.GetInt("uid")
	attendanceID, _ := strconv.Atoi(c.PostForm("attendanceId"))
	lat, _ := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lon, _ := strconv.ParseFloat(c.PostForm("longitude"), 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attendance {
		rec := &s.attendance[i]
		if rec.ID != attendanceID || rec.UserID != uid {
			continue
		}
		if rec.CheckedOut() {
			c.JSON(http.StatusConflict, model.StatusResponse{Status: false, Message: "Already checked out"})
			return
		}
		now := time.Now().Format("15:04:05")
		rec.CheckOutTime = &now
		rec.CheckOutLat = &lat
		rec.CheckOutLon = &lon
		c.JSON(http.StatusOK, model.StatusResponse{Status: true, Message: "Checked out"})
		return
	}
	c.JSON(http.StatusNotFound, model.StatusResponse{Status: false, Message: "Attendance record not found"})
}

func (s *server) assignShift(c *gin.Context) {
	uid := c.GetInt("uid")
	var req model.AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.StatusResponse{Status: false, Message: "invalid request body"})
		return
	}
	date, err := time.ParseInLocation("2006/01/02", req.AssignedDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.StatusResponse{Status: false, Message: "assignedDate must be YYYY/MM/DD"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.assignments = append(s.assignments, model.Assignment{
		ID: s.nextID, UserID: req.UserID, ShiftTemplateID: req.ShiftTemplateID,
		StationID: req.StationID, GateID: req.GateID,
		AssignedDate: date.Format("2006-01-02"), AssignedByUserID: uid, IsActive: true,
	})
	slog.Info("shift assigned", "by", uid, "user", req.UserID, "date", req.AssignedDate)
	c.JSON(http.StatusOK, model.StatusResponse{Status: true, Message: "Shift assigned"})
}

func (s *server) stationName(id int) string {
	for _, st := range s.stations {
		if st.ID == id {
			return st.Name
		}
	}
	return ""
}

func (s *server) gateName(id int) string {
	for _, g := range s.gates {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}
