package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"campusboard/internal/api"
	"campusboard/internal/attendance"
	"campusboard/internal/cache"
	"campusboard/internal/config"
	"campusboard/internal/credentials"
	"campusboard/internal/socket"
	"campusboard/internal/tui"
)

func main() {
	cfg := config.Load()
	now := time.Now()

	courseID := flag.String("course", cfg.DefaultCourseID, "course instance id")
	year := flag.Int("year", now.Year(), "year to display")
	month := flag.Int("month", int(now.Month()), "month to display (1-12)")
	token := flag.String("token", "", "bearer token override (skips the stored token)")
	flag.Parse()

	if *courseID == "" {
		log.Fatal("no course instance: pass -course or set CAMPUS_COURSE_INSTANCE")
	}

	var creds credentials.Provider = credentials.NewFileStore(cfg.StateDir)
	if *token != "" {
		creds = credentials.StaticProvider(*token)
	}
	if stored, err := creds.Token(credentials.RoleTeacher); err == nil {
		if credentials.Expired(stored, now) {
			log.Println("stored teacher token is expired; run: campusctl login -role teacher")
		}
	}

	opts := []api.Option{}
	snapshots, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Printf("snapshot cache unavailable: %v", err)
	} else {
		defer snapshots.Close()
		if removed, err := snapshots.Prune(cfg.CacheMaxAge); err != nil {
			log.Printf("failed to prune snapshot cache: %v", err)
		} else if removed > 0 {
			log.Printf("pruned %d stale cache snapshots", removed)
		}
		opts = append(opts, api.WithSnapshotCache(snapshots))
	}

	client := api.NewClient(cfg.APIBaseURL, credentials.RoleTeacher, creds, opts...)

	var program *tea.Program
	vm := attendance.NewViewModel(
		client,
		socket.WebsocketDialer{URL: cfg.SocketURL},
		*courseID, *year, *month,
		attendance.WithRotateInterval(cfg.QRRotateEvery),
		attendance.WithNotify(func() {
			if program != nil {
				program.Send(tui.Refresh())
			}
		}),
	)

	// show the last good snapshot while the fresh load is in flight; a
	// failed load then degrades to stale data instead of a blank grid
	if snap, fetchedAt, err := client.CachedMonthAttendance(*courseID, *year, *month); err == nil {
		log.Printf("showing cached snapshot from %s until refresh completes", fetchedAt.Format(time.RFC3339))
		vm.UseSnapshot(snap)
	}

	program = tea.NewProgram(
		tui.NewModel(vm, cfg.RequestTimeout, filepath.Join(cfg.StateDir, "session-qr.png")),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		log.Fatalf("dashboard exited: %v", err)
	}
	vm.Shutdown()
}
