// Command fake_tracker is a stand-in GPS tracking server for local console
// development: cookie-token login, device/user CRUD, randomly walking
// positions and server stats.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	mrand "math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type device struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	UniqueID   string     `json:"uniqueId"`
	Status     string     `json:"status"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

type position struct {
	ID         uint           `json:"id"`
	DeviceID   uint           `json:"deviceId"`
	Protocol   string         `json:"protocol"`
	ServerTime time.Time      `json:"serverTime"`
	DeviceTime time.Time      `json:"deviceTime"`
	FixTime    time.Time      `json:"fixTime"`
	Valid      bool           `json:"valid"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Speed      float64        `json:"speed"`
	Attributes map[string]any `json:"attributes"`
}

type user struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Administrator bool   `json:"administrator"`
	Disabled      bool   `json:"disabled"`
}

type fakeTracker struct {
	latency time.Duration

	mu        sync.Mutex
	deviceSeq uint
	userSeq   uint
	posSeq    uint
	devices   map[uint]*device
	users     map[uint]*user
	latest    map[uint]*position
	sessions  map[string]string
}

func main() {
	addr := getenvDefault("FAKE_TRACKER_ADDR", ":18082")
	latencyMs, _ := strconv.Atoi(getenvDefault("FAKE_TRACKER_LATENCY_MS", "0"))
	seedDevices, _ := strconv.Atoi(getenvDefault("FAKE_TRACKER_DEVICES", "5"))

	srv := &fakeTracker{
		latency:  time.Duration(latencyMs) * time.Millisecond,
		devices:  make(map[uint]*device),
		users:    make(map[uint]*user),
		latest:   make(map[uint]*position),
		sessions: make(map[string]string),
	}
	srv.seed(seedDevices)
	go srv.walk()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", srv.handleSession)
	mux.HandleFunc("/api/devices", srv.handleDevices)
	mux.HandleFunc("/api/devices/", srv.handleDeviceByID)
	mux.HandleFunc("/api/positions", srv.handlePositions)
	mux.HandleFunc("/api/users", srv.handleUsers)
	mux.HandleFunc("/api/users/", srv.handleUserByID)
	mux.HandleFunc("/api/server/stats", srv.handleStats)

	log.Printf("fake tracking server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *fakeTracker) seed(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < count; i++ {
		s.deviceSeq++
		now := time.Now().UTC()
		d := &device{
			ID:         s.deviceSeq,
			Name:       fmt.Sprintf("Unit %02d", s.deviceSeq),
			UniqueID:   fmt.Sprintf("356938%09d", s.deviceSeq),
			Status:     "online",
			LastUpdate: &now,
		}
		s.devices[d.ID] = d
		s.posSeq++
		s.latest[d.ID] = &position{
			ID:         s.posSeq,
			DeviceID:   d.ID,
			Protocol:   "osmand",
			ServerTime: now,
			DeviceTime: now,
			FixTime:    now,
			Valid:      true,
			Latitude:   -90 + mrand.Float64()*180,
			Longitude:  -180 + mrand.Float64()*360,
			Speed:      mrand.Float64() * 90,
			Attributes: map[string]any{"battery": 100},
		}
	}
	s.userSeq++
	s.users[s.userSeq] = &user{
		ID:            s.userSeq,
		Name:          "Admin",
		Email:         "admin@example.com",
		Administrator: true,
	}
}

// walk nudges every latest position once per second.
func (s *fakeTracker) walk() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for id, pos := range s.latest {
			s.posSeq++
			now := time.Now().UTC()
			pos.ID = s.posSeq
			pos.Latitude = clamp(pos.Latitude+(mrand.Float64()-0.5)*0.02, -90, 90)
			pos.Longitude = clamp(pos.Longitude+(mrand.Float64()-0.5)*0.02, -180, 180)
			pos.Speed = mrand.Float64() * 90
			pos.ServerTime = now
			pos.DeviceTime = now
			pos.FixTime = now
			if d, ok := s.devices[id]; ok {
				d.LastUpdate = &now
			}
		}
		s.mu.Unlock()
	}
}

func (s *fakeTracker) handleSession(w http.ResponseWriter, r *http.Request) {
	s.delay()
	switch r.Method {
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := r.PostFormValue("email")
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		token := newToken()
		s.mu.Lock()
		s.sessions[token] = email
		profile := user{}
		for _, u := range s.users {
			if u.Email == email {
				profile = *u
			}
		}
		s.mu.Unlock()
		if profile.ID == 0 {
			profile = user{ID: 999, Name: email, Email: email}
		}
		w.Header().Set("Set-Cookie", "JSESSIONID="+token+"; Path=/; HttpOnly")
		writeJSON(w, http.StatusOK, profile)
	case http.MethodDelete:
		token := bearerToken(r)
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeTracker) authorized(w http.ResponseWriter, r *http.Request) bool {
	token := bearerToken(r)
	s.mu.Lock()
	_, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *fakeTracker) handleDevices(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		list := make([]device, 0, len(s.devices))
		for _, d := range s.devices {
			list = append(list, *d)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var d device
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.deviceSeq++
		d.ID = s.deviceSeq
		if d.Status == "" {
			d.Status = "unknown"
		}
		s.devices[d.ID] = &d
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, d)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeTracker) handleDeviceByID(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	id, err := pathID(r.URL.Path, "/api/devices/")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		http.Error(w, "device not found", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, *d)
	case http.MethodPut:
		var in device
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		in.ID = id
		s.devices[id] = &in
		writeJSON(w, http.StatusOK, in)
	case http.MethodDelete:
		delete(s.devices, id)
		delete(s.latest, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeTracker) handlePositions(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query()
	if query.Get("deviceId") != "" {
		// History: synthesize a fix per minute of the requested range.
		deviceID, err := strconv.ParseUint(query.Get("deviceId"), 10, 32)
		if err != nil {
			http.Error(w, "bad deviceId", http.StatusBadRequest)
			return
		}
		from, err1 := time.Parse(time.RFC3339, query.Get("from"))
		to, err2 := time.Parse(time.RFC3339, query.Get("to"))
		if err1 != nil || err2 != nil || to.Before(from) {
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		history := make([]position, 0)
		lat, lon := mrand.Float64()*10, mrand.Float64()*10
		for t := from; t.Before(to) && len(history) < 1000; t = t.Add(time.Minute) {
			lat = clamp(lat+(mrand.Float64()-0.5)*0.01, -90, 90)
			lon = clamp(lon+(mrand.Float64()-0.5)*0.01, -180, 180)
			history = append(history, position{
				ID: uint(len(history) + 1), DeviceID: uint(deviceID),
				Protocol: "osmand", ServerTime: t, DeviceTime: t, FixTime: t,
				Valid: true, Latitude: lat, Longitude: lon, Speed: mrand.Float64() * 90,
			})
		}
		writeJSON(w, http.StatusOK, history)
		return
	}
	s.mu.Lock()
	list := make([]position, 0, len(s.latest))
	for _, pos := range s.latest {
		list = append(list, *pos)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *fakeTracker) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		list := make([]user, 0, len(s.users))
		for _, u := range s.users {
			list = append(list, *u)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var u user
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.userSeq++
		u.ID = s.userSeq
		s.users[u.ID] = &u
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, u)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeTracker) handleUserByID(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	id, err := pathID(r.URL.Path, "/api/users/")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, *u)
	case http.MethodPut:
		var in user
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		in.ID = id
		s.users[id] = &in
		writeJSON(w, http.StatusOK, in)
	case http.MethodDelete:
		delete(s.users, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeTracker) handleStats(w http.ResponseWriter, r *http.Request) {
	s.delay()
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	active := 0
	for _, d := range s.devices {
		if d.Status == "online" {
			active++
		}
	}
	users := len(s.users)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"cpuLoad":       mrand.Float64() * 100,
		"usedMemory":    mrand.Float64() * 1024,
		"totalMemory":   4096,
		"activeUsers":   users,
		"activeDevices": active,
	})
}

func (s *fakeTracker) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func pathID(path, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(path, prefix), 10, 32)
	return uint(id), err
}

func newToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "node0" + hex.EncodeToString(buf)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
