package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geotrack-console/internal/livemap"
	"geotrack-console/internal/observability/metrics"
	"geotrack-console/internal/report"
	"geotrack-console/internal/tracker"
)

// Server exposes the console API consumed by the browser UI. It owns no
// business state of its own: every response is either a pass-through to the
// tracking server or a rendering of the last snapshot a poll produced.
type Server struct {
	client  *tracker.Client
	mapView *livemap.State
	devices *DevicesView
	stats   *StatsView
	broker  *livemap.MarkerBroker
	logger  *log.Logger
}

// NewServer constructs the console HTTP layer.
func NewServer(client *tracker.Client, mapView *livemap.State, devices *DevicesView, stats *StatsView, broker *livemap.MarkerBroker, logger *log.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("console: nil tracker client")
	}
	if mapView == nil || devices == nil || stats == nil {
		return nil, errors.New("console: nil view state")
	}
	return &Server{
		client:  client,
		mapView: mapView,
		devices: devices,
		stats:   stats,
		broker:  broker,
		logger:  logger,
	}, nil
}

// Routes builds the console router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/session", s.handleLogin)
	r.Delete("/api/session", s.handleLogout)
	r.Get("/api/session", s.handleSession)

	r.Route("/api/devices", func(r chi.Router) {
		r.Get("/", s.handleListDevices)
		r.Post("/", s.handleCreateDevice)
		r.Get("/{id}", s.handleGetDevice)
		r.Put("/{id}", s.handleUpdateDevice)
		r.Delete("/{id}", s.handleDeleteDevice)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	r.Get("/api/positions", s.handlePositionHistory)
	r.Get("/api/server/stats", s.handleServerStats)

	r.Get("/api/map/markers", s.handleMarkers)
	r.Post("/api/map/markers/{deviceId}/tooltip", s.handleToggleTooltip)
	r.Get("/api/map/stream", s.handleMarkerStream)

	r.Get("/api/export/devices.xlsx", s.handleExportDevices)
	r.Get("/api/export/positions.pdf", s.handleExportPositions)
	r.Get("/api/export/positions.xlsx", s.handleExportPositions)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeBadRequest(w, "email and password required")
		return
	}
	profile, err := s.client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Logout(r.Context()); err != nil {
		// Local session is cleared regardless; the server-side failure is
		// diagnostic only.
		s.logger.Printf("logout: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	store := s.client.Store()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": store.Token() != "",
		"identity":      store.Identity(),
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.devices.Current())
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	device, err := s.client.Device(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var device tracker.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if device.Name == "" || device.UniqueID == "" {
		s.writeBadRequest(w, "name and uniqueId required")
		return
	}
	created, err := s.client.CreateDevice(r.Context(), device)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.refreshDevices(r)
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var device tracker.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if device.Name == "" || device.UniqueID == "" {
		s.writeBadRequest(w, "name and uniqueId required")
		return
	}
	updated, err := s.client.UpdateDevice(r.Context(), id, device)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.refreshDevices(r)
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.client.DeleteDevice(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.refreshDevices(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.client.Users(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := s.client.User(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user tracker.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if user.Name == "" || user.Email == "" {
		s.writeBadRequest(w, "name and email required")
		return
	}
	created, err := s.client.CreateUser(r.Context(), user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var user tracker.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if user.Name == "" || user.Email == "" {
		s.writeBadRequest(w, "name and email required")
		return
	}
	updated, err := s.client.UpdateUser(r.Context(), id, user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.client.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePositionHistory(w http.ResponseWriter, r *http.Request) {
	deviceID, from, to, ok := s.historyParams(w, r)
	if !ok {
		return
	}
	positions, err := s.client.PositionHistory(r.Context(), deviceID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleServerStats(w http.ResponseWriter, r *http.Request) {
	stats, synthetic, ok := s.stats.Current()
	if !ok {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stats not collected yet"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"stats":     stats,
		"synthetic": synthetic,
	})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mapView.Markers())
}

func (s *Server) handleToggleTooltip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "deviceId")
	if !ok {
		return
	}
	if !s.mapView.ToggleTooltip(id) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no marker for device"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportDevices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	payload, err := report.BuildDevicesXLSX(s.devices.Current())
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		s.writeError(w, err)
		return
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="devices.xlsx"`)
	_, _ = w.Write(payload)
}

func (s *Server) handleExportPositions(w http.ResponseWriter, r *http.Request) {
	deviceID, from, to, ok := s.historyParams(w, r)
	if !ok {
		return
	}
	device, err := s.client.Device(r.Context(), deviceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	positions, err := s.client.PositionHistory(r.Context(), deviceID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := "xlsx"
	if r.URL.Path == "/api/export/positions.pdf" {
		format = "pdf"
	}
	start := time.Now()
	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = report.BuildPositionsPDF(*device, from, to, positions)
		contentType = "application/pdf"
	default:
		payload, err = report.BuildPositionsXLSX(*device, from, to, positions)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		s.writeError(w, err)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "positions."+format))
	_, _ = w.Write(payload)
}

// refreshDevices re-fetches the device-list snapshot after a mutation so the
// next render does not wait out the poll interval. Best effort.
func (s *Server) refreshDevices(r *http.Request) {
	if err := s.devices.Refresh(r.Context()); err != nil {
		s.logger.Printf("device snapshot refresh: %v", err)
	}
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, param string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 32)
	if err != nil {
		s.writeBadRequest(w, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

func (s *Server) historyParams(w http.ResponseWriter, r *http.Request) (uint, time.Time, time.Time, bool) {
	query := r.URL.Query()
	deviceID, err := strconv.ParseUint(query.Get("deviceId"), 10, 32)
	if err != nil {
		s.writeBadRequest(w, "invalid deviceId")
		return 0, time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		s.writeBadRequest(w, "invalid from timestamp")
		return 0, time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil {
		s.writeBadRequest(w, "invalid to timestamp")
		return 0, time.Time{}, time.Time{}, false
	}
	return uint(deviceID), from, to, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// writeError maps the tracker error taxonomy onto console responses. A 401
// means the operator must re-authenticate; the redirect itself is the
// browser's job.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var apiErr *tracker.APIError
	switch {
	case errors.Is(err, tracker.ErrUnauthorized), errors.Is(err, tracker.ErrLoginFailed):
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrNoToken):
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.As(err, &apiErr):
		s.writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Body})
	default:
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
