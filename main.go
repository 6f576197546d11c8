package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"geotrack-console/internal/console"
	"geotrack-console/internal/livemap"
	"geotrack-console/internal/observability/metrics"
	"geotrack-console/internal/poller"
	"geotrack-console/internal/tracker"
)

func main() {
	_ = godotenv.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := console.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init()

	store, err := tracker.NewStore(cfg.StateDir)
	if err != nil {
		logger.Fatalf("session store error: %v", err)
	}
	client, err := tracker.NewClient(cfg.TrackerBaseURL, store)
	if err != nil {
		logger.Fatalf("tracker client error: %v", err)
	}

	projector, err := livemap.NewProjector(cfg.Map.Width, cfg.Map.Height)
	if err != nil {
		logger.Fatalf("projector error: %v", err)
	}
	broker := livemap.NewMarkerBroker()
	mapView, err := livemap.NewState(projector, broker)
	if err != nil {
		logger.Fatalf("map state error: %v", err)
	}

	devicesView := console.NewDevicesView(client)
	statsView := console.NewStatsView(client)

	refresher := poller.New(logger)
	devicesSub := refresher.Subscribe("devices", cfg.DevicesInterval(), devicesView.Refresh)
	defer devicesSub.Stop()
	mapSub := refresher.Subscribe("map", cfg.MapInterval(), func(ctx context.Context) error {
		devices, err := client.Devices(ctx)
		if err != nil {
			return err
		}
		positions, err := client.LatestPositions(ctx)
		if err != nil {
			return err
		}
		return mapView.Replace(ctx, devices, positions)
	})
	defer mapSub.Stop()
	statsSub := refresher.Subscribe("stats", cfg.StatsInterval(), statsView.Refresh)
	defer statsSub.Stop()

	srv, err := console.NewServer(client, mapView, devicesView, statsView, broker, logger)
	if err != nil {
		logger.Fatalf("console server error: %v", err)
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(srv.Routes(), logger)}
	logger.Printf("console listening on %s (tracker %s)", cfg.HTTPAddr, cfg.TrackerBaseURL)
	logger.Fatal(server.ListenAndServe())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}
