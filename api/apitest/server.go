// Package apitest provides an in-process fake of the Weigh-In backend,
// faithful to its wire contract: paths, payloads, status codes, and the
// JSON detail error convention. Client tests run against it through a
// real HTTP server so the whole request path is exercised.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

type account struct {
	id           string
	email        string
	passwordHash string
}

type profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type weightLog struct {
	ID      string  `json:"id"`
	UserID  string  `json:"user_id"`
	Weight  float64 `json:"weight"`
	LogDate string  `json:"log_date"`
}

// Server is an http.Handler implementing the backend API under /api.
type Server struct {
	router *mux.Router
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	profiles map[string]*profile // keyed by user id
	weights  map[string]map[string]float64
}

// ServerOption configures the fake backend.
type ServerOption func(*Server)

// WithNow sets the clock used for token expiry and date defaulting.
func WithNow(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a fake backend with no accounts.
func NewServer(options ...ServerOption) *Server {
	s := &Server{
		secret:   []byte(uuid.New().String()),
		now:      time.Now,
		accounts: make(map[string]*account),
		profiles: make(map[string]*profile),
		weights:  make(map[string]map[string]float64),
	}
	for _, opt := range options {
		opt(s)
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/profile/{id}", s.authenticated(s.handleGetProfile)).Methods(http.MethodGet)
	api.HandleFunc("/profile/{id}", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/{id}/avatar", s.authenticated(s.handleUploadAvatar)).Methods(http.MethodPost)
	api.HandleFunc("/weight", s.authenticated(s.handleLogWeight)).Methods(http.MethodPost)
	api.HandleFunc("/weight/{id}", s.authenticated(s.handleGetWeightLogs)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.authenticated(s.handleGetUsers)).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterAccount seeds an account directly, bypassing the HTTP surface,
// and returns the new user's id.
func (s *Server) RegisterAccount(email, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAccountLocked(email, string(hash))
}

func (s *Server) createAccountLocked(email, passwordHash string) string {
	id := uuid.New().String()
	s.accounts[email] = &account{id: id, email: email, passwordHash: passwordHash}
	s.profiles[id] = &profile{
		ID:       id,
		Username: strings.SplitN(email, "@", 2)[0],
		Email:    email,
	}
	return id
}

// MintToken issues a signed access token for the given user id, expiring
// after ttl. Tests use it to fabricate stale or foreign sessions.
func (s *Server) MintToken(userID string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": s.now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated - No auth header")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
		if err != nil || !token.Valid {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r, sub)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[req.Email]; ok {
		writeDetail(w, http.StatusBadRequest, "User already registered")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := s.createAccountLocked(req.Email, string(hash))

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Registration successful",
		"user":    map[string]string{"id": id, "email": req.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid login credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  s.MintToken(acc.id, time.Hour),
		"refresh_token": uuid.New().String(),
		"user":          map[string]string{"id": acc.id, "email": acc.email},
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, userID string) {
	id := mux.Vars(r)["id"]
	if id != userID {
		writeDetail(w, http.StatusForbidden, "Not authorized to view this profile")
		return
	}

	s.mu.Lock()
	p, ok := s.profiles[id]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Username *string `json:"username"`
		FullName *string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	if req.Username != nil {
		p.Username = *req.Username
	}
	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	p.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request, userID string) {
	id := mux.Vars(r)["id"]
	if id != userID {
		writeDetail(w, http.StatusForbidden, "Not authorized to update this profile")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("File type %s not allowed. Allowed types: image/jpeg, image/png", contentType))
		return
	}

	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	avatarURL := "https://storage.example.com/avatars/" + id + ext

	s.mu.Lock()
	if p, ok := s.profiles[id]; ok {
		p.AvatarURL = avatarURL
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": avatarURL})
}

func (s *Server) handleLogWeight(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Weight  float64 `json:"weight"`
		LogDate *string `json:"log_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Weight <= 0 || req.Weight >= 1000 {
		writeDetail(w, http.StatusBadRequest, "Weight must be between 0 and 1000 kg")
		return
	}

	logDate := s.now().UTC().Format(dateLayout)
	if req.LogDate != nil {
		if _, err := time.Parse(dateLayout, *req.LogDate); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid log_date")
			return
		}
		logDate = *req.LogDate
	}

	// One entry per user per day: logging twice overwrites.
	s.mu.Lock()
	if s.weights[userID] == nil {
		s.weights[userID] = make(map[string]float64)
	}
	s.weights[userID][logDate] = req.Weight
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, weightLog{
		ID:      uuid.New().String(),
		UserID:  userID,
		Weight:  req.Weight,
		LogDate: logDate,
	})
}

func (s *Server) handleGetWeightLogs(w http.ResponseWriter, r *http.Request, _ string) {
	id := mux.Vars(r)["id"]
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	s.mu.Lock()
	logs := make([]weightLog, 0)
	for day, weight := range s.weights[id] {
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		logs = append(logs, weightLog{ID: uuid.New().String(), UserID: id, Weight: weight, LogDate: day})
	}
	s.mu.Unlock()

	// Newest first, matching the real backend's ordering.
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].LogDate > logs[j].LogDate
	})
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request, _ string) {
	targetDate := r.URL.Query().Get("date")
	if targetDate == "" {
		targetDate = s.now().UTC().Format(dateLayout)
	}

	type userEntry struct {
		profile
		WeightLogs []weightLog `json:"weight_logs,omitempty"`
	}

	s.mu.Lock()
	users := make([]userEntry, 0, len(s.profiles))
	for id, p := range s.profiles {
		entry := userEntry{profile: *p}
		if weight, ok := s.weights[id][targetDate]; ok {
			entry.WeightLogs = []weightLog{{UserID: id, Weight: weight, LogDate: targetDate}}
		}
		users = append(users, entry)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	writeJSON(w, http.StatusOK, users)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
