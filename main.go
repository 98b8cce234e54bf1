package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/scorefeed/internal/config"
	"github.com/banshee-data/scorefeed/internal/match"
	"github.com/banshee-data/scorefeed/internal/matchdb"
	"github.com/banshee-data/scorefeed/internal/packet"
	"github.com/banshee-data/scorefeed/internal/serialmux"
)

var (
	configPath = flag.String("config", "", "Path to match config JSON")
	portPath   = flag.String("port", "", "Serial port path (overrides config)")
	baudRate   = flag.Int("baud", 0, "Baud rate (overrides config)")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbPath     = flag.String("db", "", "SQLite event mirror path (overrides config)")
	devMode    = flag.Bool("dev", false, "Replay a canned match instead of opening the serial port")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.DefaultMatchConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadMatchConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *portPath != "" {
		cfg.SerialPort = *portPath
	}
	if *baudRate != 0 {
		cfg.BaudRate = *baudRate
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	var port serialmux.SerialPorter
	if *devMode {
		port = serialmux.NewReplayPort(devFixtures(), cfg.Window()+200*time.Millisecond, true)
	} else {
		var err error
		port, err = serialmux.Open(cfg.SerialPort, serialmux.PortOptions{BaudRate: cfg.BaudRate})
		if err != nil {
			log.Fatalf("failed to open console port: %v", err)
		}
	}
	defer port.Close()

	db, err := matchdb.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open event mirror: %v", err)
	}
	defer db.Close()

	recorder, err := NewRecorder(db, cfg.Home.TeamName("HOME"), cfg.Guest.TeamName("GUEST"))
	if err != nil {
		log.Fatalf("failed to start recording session: %v", err)
	}

	store := match.NewStore()
	eventLog := match.NewLog()
	detector := match.NewDetector(eventLog)
	pipeline := NewPipeline(store, detector, recorder)
	synchronizer := openSynchronizer(port, cfg.Window())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// framing routine: owns the port reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := synchronizer.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("synchronizer stopped: %v", err)
		}
		log.Print("synchronizer routine terminated")
	}()

	// pipeline routine: sole writer to match state
	wg.Add(1)
	go func() {
		defer wg.Done()
		pipeline.Run(ctx, synchronizer.Frames())
		log.Print("pipeline routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := NewServer(store, eventLog, detector, recorder, cfg).ServeMux()
		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// devFixtures builds the replay groups for dev mode: a short first period
// with a goal, a foul and a penalty, looping so the display always has
// traffic.
func devFixtures() [][]byte {
	running := packet.TimeScore{
		Minutes: 8, Seconds: 0, Running: true,
		ActionSeconds: 30, HomeScore: 0, GuestScore: 0,
		Period: 1, HomeTimeouts: 0, GuestTimeouts: 0,
	}
	points := packet.PlayerPoints{Team: packet.TeamHome}
	points.Points[1] = 1 // cap 2
	scored := running
	scored.Minutes, scored.Seconds = 7, 45
	scored.HomeScore = 1

	fouls := packet.Fouls{}
	fouls.Guest[4] = 1 // cap 5

	penalty := packet.Penalty{}
	penalty.Guest[0] = packet.PenaltySlot{Player: 5, Minutes: 0, Seconds: 20}

	return [][]byte{
		packet.Encode(running),
		packet.Encode(points),
		packet.Encode(scored),
		packet.Encode(fouls),
		packet.Encode(penalty),
	}
}
