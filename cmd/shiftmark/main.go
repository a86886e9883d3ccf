package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"shiftmark/internal/api"
	"shiftmark/internal/capture"
	"shiftmark/internal/catalog"
	"shiftmark/internal/config"
	"shiftmark/internal/geofence"
	applog "shiftmark/internal/logger"
	"shiftmark/internal/resolver"
	"shiftmark/internal/service"
	"shiftmark/internal/store"
)

const usage = `usage: shiftmark [flags] <command>

commands:
  login      obtain a bearer token (prints it; put it in config or SHIFTMARK_TOKEN)
  status     show today's effective shift and attendance state
  checkin    mark attendance for today's shift
  checkout   close today's attendance record
  assign     create a shift assignment (self, or any user for leads)
  export     write the local submission history to an xlsx file
`

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	lat := flag.Float64("lat", 0, "current latitude")
	lon := flag.Float64("lon", 0, "current longitude")
	selfie := flag.String("selfie", "", "path to the selfie image file")
	username := flag.String("user", "", "login username")
	password := flag.String("password", "", "login password")
	targetUser := flag.Int("target-user", 0, "assignment target user id (leads only)")
	template := flag.Int("template", 0, "shift template id")
	stationID := flag.Int("station", 0, "station id")
	gateID := flag.Int("gate", 0, "gate id")
	dateStr := flag.String("date", "", "assignment date YYYY-MM-DD (leads only)")
	out := flag.String("out", "shiftmark-history.xlsx", "export output path")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := flag.Arg(0)

	cfg := config.Load(*configFile)
	applog.Init(cfg.Log)
	loc := cfg.Location()

	client := api.NewClient(cfg.API)
	ctx := context.Background()

	if command == "login" {
		resp, err := client.Login(ctx, *username, *password)
		if err != nil {
			fail("login failed: %v", err)
		}
		fmt.Printf("logged in as %s (%s)\ntoken: %s\n", resp.User.Name, resp.User.Role, resp.Token)
		return
	}

	db, err := cfg.OpenGormDB()
	if err != nil {
		fail("open local store: %v", err)
	}
	st, err := store.New(db)
	if err != nil {
		fail("init local store: %v", err)
	}

	if command == "export" {
		if err := st.ExportHistory(*out, 0); err != nil {
			fail("export failed: %v", err)
		}
		fmt.Printf("history written to %s\n", *out)
		return
	}

	stdin := bufio.NewReader(os.Stdin)
	locator := flagLocator{lat: *lat, lon: *lon, set: *lat != 0 || *lon != 0}
	flow := capture.NewFlow(fileGate{}, fileCamera{path: *selfie}, terminalPreviewer{in: stdin},
		cfg.Capture.MaxEdgePx, cfg.Capture.JPEGQuality)
	res := resolver.New(catalog.Default(), loc)
	engine := service.NewAttendance(client, flow, locator, terminalPrompter{in: stdin},
		geofence.New(cfg.Geofence.RadiusMeters), res, st, loc)

	if err := engine.Refresh(ctx); err != nil {
		fail("refresh failed: %v", err)
	}

	switch command {
	case "status":
		printStatus(engine)
	case "checkin":
		if err := engine.CheckIn(ctx); err != nil {
			fail("check-in: %v", err)
		}
		fmt.Println("checked in")
		printStatus(engine)
	case "checkout":
		if err := engine.CheckOut(ctx); err != nil {
			fail("check-out: %v", err)
		}
		fmt.Println("checked out")
		printStatus(engine)
	case "assign":
		assigner := service.NewAssigner(client, engine, loc)
		form := service.AssignForm{
			TargetUserID:    *targetUser,
			ShiftTemplateID: *template,
			StationID:       *stationID,
			GateID:          *gateID,
		}
		if form.TargetUserID == 0 {
			form.TargetUserID = client.User().ID
		}
		form.Date = time.Now().In(loc)
		if *dateStr != "" {
			d, err := time.ParseInLocation("2006-01-02", *dateStr, loc)
			if err != nil {
				fail("bad -date: %v", err)
			}
			form.Date = d
		}
		if err := assigner.Submit(ctx, form, engine.Gates()); err != nil {
			fail("assign: %v", err)
		}
		fmt.Println("shift assigned")
		printStatus(engine)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func printStatus(engine *service.Attendance) {
	fmt.Printf("state: %s\n", engine.State())
	if shift := engine.Shift(); shift != nil {
		fmt.Printf("shift: %s (%s-%s) at %s / %s\n",
			shift.Name, shift.StartTime, shift.EndTime, shift.StationName, shift.GateName)
	} else {
		fmt.Println("no shift today — use the assign command to pick one up")
	}
	if rec := engine.TodayAttendance(); rec != nil {
		in, outTime := "-", "-"
		if rec.CheckInTime != nil {
			in = *rec.CheckInTime
		}
		if rec.CheckOutTime != nil {
			outTime = *rec.CheckOutTime
		}
		fmt.Printf("attendance: %s in=%s out=%s\n", rec.Status, in, outTime)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
