// Package main is the entry point for the sandwatch server.
// It only handles dependency injection and server initialization.
// NO simulation logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"github.com/sandwatch-io/sandwatch/internal/engine"
	"github.com/sandwatch-io/sandwatch/internal/events"
	"github.com/sandwatch-io/sandwatch/internal/infra/storage"
	"github.com/sandwatch-io/sandwatch/internal/network"
	"github.com/sandwatch-io/sandwatch/internal/platform/config"
	"github.com/sandwatch-io/sandwatch/internal/platform/logger"
	"github.com/sandwatch-io/sandwatch/internal/platform/metrics"
)

// SQLitePersisterAdapter translates domain events to storage records.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.TimerEvent) error {
	record := storage.TimerEventRecord{
		ID:              event.ID,
		Timestamp:       event.Timestamp,
		EventType:       string(event.Type),
		DurationSeconds: event.DurationSeconds,
		ElapsedSeconds:  event.ElapsedSeconds,
		Detail:          event.Detail,
	}
	err := a.repo.Append(context.Background(), record)
	metrics.Get().RecordEventWrite(err)
	return err
}

func main() {
	log.Println("[SANDWATCH] Initializing hourglass server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Invalid configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite ledger '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventLog := events.NewEventLog(&SQLitePersisterAdapter{repo: eventRepo})

	appLogger.Info("Bootstrapping simulation...")
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim, err := engine.NewSimulation(cfg, engine.SystemClock{}, rand.New(rand.NewSource(seed)))
	if err != nil {
		appLogger.Error("Failed to build simulation: " + err.Error())
		os.Exit(1)
	}
	eng := engine.NewEngine(sim, eventLog, appLogger, cfg.TickInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(eng, appLogger)
	eng.OnFrame(hub.BroadcastFrame)
	go hub.Run(ctx)
	go eng.Run(ctx)

	startTime := time.Now()

	// Setup API Routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	http.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeControlResult(w, eng.Start())
	})

	http.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeControlResult(w, eng.Stop())
	})

	http.HandleFunc("/api/duration", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Seconds int `json:"seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		writeControlResult(w, eng.SetDuration(req.Seconds))
	})

	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		st := eng.CurrentStatus()
		now := time.Now()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"state":             st.State,
			"duration_seconds":  st.DurationSeconds,
			"remaining_seconds": st.RemainingSeconds,
			"remaining_human":   humanize.RelTime(now.Add(time.Duration(st.RemainingSeconds)*time.Second), now, "", "remaining"),
			"progress":          st.Progress,
			"particles":         st.Particles,
			"started":           humanize.Time(startTime),
		})
	})

	http.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		records, err := eventRepo.GetAll(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})

	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Printf("[SANDWATCH] HTTP API & WS Server listening on %s", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[SANDWATCH] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[SANDWATCH] Shutting down...")
}

func writeControlResult(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests from renderer dev servers
	},
}

// serveWs handles websocket requests from renderers.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
