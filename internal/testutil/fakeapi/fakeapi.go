// Package fakeapi runs an in-process stand-in for the remote /api/auth JSON
// API so client code can be tested end to end.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	EndpointLogin    = "login"
	EndpointRegister = "register"
	EndpointMe       = "me"
	EndpointUsers    = "users"
)

const MinPasswordLen = 6

type user struct {
	id        string
	email     string
	hash      []byte
	createdAt time.Time
}

type fieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// Server is a fake auth API backed by an in-memory user table.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]*user
	calls     map[string]int
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
	failMe    bool
	failUsers bool
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	s := &Server{
		users:    make(map[string]*user),
		calls:    make(map[string]int),
		secret:   []byte(uuid.NewString()),
		tokenTTL: time.Hour,
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)
	mux.HandleFunc("GET /api/auth/users", s.handleUsers)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// AddUser seeds an account and returns a valid token for it.
func (s *Server) AddUser(t testing.TB, email, password string, createdAt time.Time) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	s.mu.Lock()
	s.users[email] = &user{id: uuid.NewString(), email: email, hash: hash, createdAt: createdAt.UTC()}
	s.mu.Unlock()

	tok, err := s.issue(email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// Calls reports how many requests reached endpoint.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls reports how many requests reached any endpoint.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// FailMe makes /me answer 500 until called again with false.
func (s *Server) FailMe(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMe = fail
}

// FailUsers makes /users answer 500 until called again with false.
func (s *Server) FailUsers(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUsers = fail
}

// SetTokenTTL changes the lifetime of tokens issued from now on. A negative
// TTL issues tokens that are already expired.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

func (s *Server) count(endpoint string) {
	s.mu.Lock()
	s.calls[endpoint]++
	s.mu.Unlock()
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count(EndpointLogin)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	s.writeToken(w, u.email)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.count(EndpointRegister)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	var errs []fieldError
	if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
		errs = append(errs, fieldError{Param: "email", Msg: "Please include a valid email"})
	}
	if len(req.Password) < MinPasswordLen {
		errs = append(errs, fieldError{Param: "password", Msg: "Password must be at least 6 characters"})
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []fieldError{{Param: "email", Msg: "already used"}},
		})
		return
	}
	s.users[req.Email] = &user{id: uuid.NewString(), email: req.Email, hash: hash, createdAt: s.now().UTC()}
	s.mu.Unlock()

	s.writeToken(w, req.Email)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.count(EndpointMe)

	s.mu.Lock()
	fail := s.failMe
	s.mu.Unlock()
	if fail {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record(u))
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.count(EndpointUsers)

	s.mu.Lock()
	fail := s.failUsers
	s.mu.Unlock()
	if fail {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, record(u))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i]["email"].(string) < out[j]["email"].(string)
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*user, bool) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
		return nil, false
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return nil, false
	}

	sub, err := claims.GetSubject()
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return nil, false
	}

	s.mu.Lock()
	u, ok := s.users[sub]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return nil, false
	}
	return u, true
}

func (s *Server) issue(email string) (string, error) {
	s.mu.Lock()
	now, ttl := s.now(), s.tokenTTL
	s.mu.Unlock()

	claims := jwt.MapClaims{
		"sub": email,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) writeToken(w http.ResponseWriter, email string) {
	tok, err := s.issue(email)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func record(u *user) map[string]any {
	return map[string]any{"email": u.email, "createdAt": u.createdAt.Format(time.RFC3339)}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
