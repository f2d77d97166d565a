// Package fakeapi is an in-memory Linguaku API for tests.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/linguaku/linguaku/internal/model"
)

var signingKey = []byte("fakeapi-secret")

// Fault overrides the next response of a route.
type Fault struct {
	Status int           // response status; ignored when Drop is set
	Body   string        // raw body; defaults to an error envelope
	Delay  time.Duration // wait before responding, aborted if the client gives up
	Drop   bool          // close the connection without a response
}

type account struct {
	user     model.User
	password string
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account // by email
	revoked   map[string]bool
	materials []model.Material
	history   []model.HistoryRecord
	insight   *model.WeeklyInsight
	faults    map[string][]Fault
	hits      map[string]int
	headers   map[string]http.Header
	now       func() time.Time

	version             string
	requireVerification bool
	tokenTTL            time.Duration
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: make(map[string]*account),
		revoked:  make(map[string]bool),
		faults:   make(map[string][]Fault),
		hits:     make(map[string]int),
		headers:  make(map[string]http.Header),
		now:      time.Now,
		version:  "1.2.0",
		tokenTTL: 24 * time.Hour,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Server.Close)
	return s
}

// URL returns the API base URL to configure a gateway with.
func (s *Server) URL() string {
	return s.Server.URL + "/api"
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.instrument)

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/auth/google", s.handleGoogle).Methods("POST")
	api.HandleFunc("/auth/resend-verification", s.handleMessage("Verification email sent")).Methods("POST")
	api.HandleFunc("/auth/forgot-password", s.handleMessage("Password reset email sent")).Methods("POST")
	api.HandleFunc("/auth/reset-password/{token}", s.handleMessage("Password has been reset")).Methods("POST")
	api.HandleFunc("/auth/me", s.authed(s.handleMe)).Methods("GET")

	api.HandleFunc("/materials", s.authed(s.handleMaterials)).Methods("GET")
	api.HandleFunc("/materials/{id}", s.authed(s.handleMaterial)).Methods("GET")

	api.HandleFunc("/practice/analyze", s.authed(s.handleAnalyze)).Methods("POST")
	api.HandleFunc("/practice/history", s.authed(s.handleHistory)).Methods("GET")
	api.HandleFunc("/practice/recent", s.authed(s.handleRecent)).Methods("GET")
	api.HandleFunc("/practice/weekly-performance", s.authed(s.handleWeekly)).Methods("GET")
	api.HandleFunc("/practice/weekly-insight", s.authed(s.handleInsight)).Methods("GET")
	api.HandleFunc("/practice/{id}", s.authed(s.handleDeleteHistory)).Methods("DELETE")

	api.HandleFunc("/history", s.authed(s.handleHistory)).Methods("GET")
	api.HandleFunc("/history/clear", s.authed(s.handleClearHistory)).Methods("DELETE")
	api.HandleFunc("/history/{id}", s.authed(s.handleDeleteHistory)).Methods("DELETE")

	api.HandleFunc("/user/statistics", s.authed(s.handleStatistics)).Methods("GET")
	api.HandleFunc("/user/profile", s.authed(s.handleProfile)).Methods("PUT")
	api.HandleFunc("/user/change-password", s.authed(s.handleChangePassword)).Methods("PUT")

	return r
}

// ---- seeding and inspection ----

// SetVersion changes the version reported by /health.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// SetInsight sets what /practice/weekly-insight returns. Nil means none.
func (s *Server) SetInsight(in *model.WeeklyInsight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insight = in
}

// SetRequireVerification makes register withhold tokens until the account
// is verified.
func (s *Server) SetRequireVerification(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireVerification = on
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string, verified bool) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Name: name, Email: email, Verified: verified}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueToken returns a valid token for email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	ttl := s.tokenTTL
	s.mu.Unlock()
	return s.issue(email, ttl)
}

// IssueExpiredToken returns a token whose exp is in the past.
func (s *Server) IssueExpiredToken(email string) string {
	return s.issue(email, -time.Hour)
}

// Revoke makes the server reject token with 401.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// SetMaterials replaces the material catalog.
func (s *Server) SetMaterials(ms ...model.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append([]model.Material(nil), ms...)
}

// AddHistory appends history records.
func (s *Server) AddHistory(recs ...model.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, recs...)
}

// HistoryLen returns the number of stored history records.
func (s *Server) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Inject queues faults for route, e.g. "GET /materials". Each request to the
// route consumes one fault until the queue is empty.
func (s *Server) Inject(route string, faults ...Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = append(s.faults[route], faults...)
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// LastHeader returns the headers of the latest request to route.
func (s *Server) LastHeader(route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[route]
}

func (s *Server) issue(email string, ttl time.Duration) string {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: sign token: %v", err))
	}
	return tok
}

// ---- middleware ----

func routeKey(r *http.Request) string {
	return r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)

		s.mu.Lock()
		s.hits[key]++
		s.headers[key] = r.Header.Clone()
		var fault *Fault
		if q := s.faults[key]; len(q) > 0 {
			f := q[0]
			s.faults[key] = q[1:]
			fault = &f
		}
		s.mu.Unlock()

		if fault == nil {
			next.ServeHTTP(w, r)
			return
		}

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if fault.Drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}
		if fault.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		body := fault.Body
		if body == "" {
			body = fmt.Sprintf(`{"success":false,"message":%q}`, http.StatusText(fault.Status))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fault.Status)
		w.Write([]byte(body))
	})
}

func (s *Server) authed(h func(w http.ResponseWriter, r *http.Request, acct *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeErr(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		acct, err := s.verify(raw)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		h(w, r, acct)
	}
}

func (s *Server) verify(raw string) (*account, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return signingKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[raw] {
		return nil, errors.New("revoked")
	}
	acct, ok := s.accounts[claims.Subject]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return acct, nil
}

// ---- handlers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.version
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "version": v})
}

func (s *Server) handleMessage(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Email]
	s.mu.Unlock()
	if !ok || acct.password != body.Password {
		writeErr(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !acct.user.Verified {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"success":              false,
			"message":              "Please verify your email before logging in",
			"requiresVerification": true,
		})
		return
	}
	writeOK(w, map[string]any{"token": s.IssueToken(body.Email), "user": acct.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct{ Name, Email, Password string }
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[body.Email]
	verify := s.requireVerification
	s.mu.Unlock()
	if exists {
		writeErr(w, http.StatusBadRequest, "User already exists")
		return
	}

	u := s.AddUser(body.Name, body.Email, body.Password, !verify)
	if verify {
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":              true,
			"requiresVerification": true,
			"data":                 map[string]any{"email": u.Email, "name": u.Name},
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"token": s.IssueToken(u.Email), "user": u},
	})
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeBody(r, &body); err != nil || body.IDToken == "" {
		writeErr(w, http.StatusBadRequest, "Missing idToken")
		return
	}
	// The fake identity provider encodes the email as the ID token.
	email := body.IDToken
	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		s.AddUser(strings.Split(email, "@")[0], email, "", true)
		s.mu.Lock()
		acct = s.accounts[email]
		s.mu.Unlock()
	}
	writeOK(w, map[string]any{"token": s.IssueToken(email), "user": acct.user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, acct *account) {
	writeOK(w, map[string]any{"user": acct.user})
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request, _ *account) {
	s.mu.Lock()
	ms := append([]model.Material{}, s.materials...)
	s.mu.Unlock()
	writeOK(w, ms)
}

func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request, _ *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.materials {
		if m.ID == id {
			writeOK(w, m)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "Material not found")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, _ *account) {
	var req model.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.RecognizedText) == "" {
		writeErr(w, http.StatusBadRequest, "recognizedText is required")
		return
	}

	s.mu.Lock()
	var mat *model.Material
	for i := range s.materials {
		if s.materials[i].ID == req.MaterialID {
			mat = &s.materials[i]
			break
		}
	}
	s.mu.Unlock()
	if mat == nil {
		writeErr(w, http.StatusNotFound, "Material not found")
		return
	}

	result := Score(mat.TargetText(), req.RecognizedText)

	s.AddHistory(model.HistoryRecord{
		ID:            uuid.NewString(),
		MaterialID:    mat.ID,
		MaterialTitle: mat.Title,
		ItemText:      mat.TargetText(),
		Transcript:    req.RecognizedText,
		Score:         result.Score,
		CreatedAt:     s.now().UTC(),
	})

	writeOK(w, map[string]any{"result": result})
}

// Score compares spoken text with the target word by word.
func Score(target, spoken string) model.PracticeResult {
	targetWords := words(target)
	spokenSet := make(map[string]bool)
	for _, w := range words(spoken) {
		spokenSet[w] = true
	}

	res := model.PracticeResult{
		Transcription: spoken,
		TotalWords:    len(targetWords),
		MistakeWords:  []string{},
	}
	for _, w := range targetWords {
		if spokenSet[w] {
			res.CorrectWords++
		} else {
			res.MistakeWords = append(res.MistakeWords, w)
		}
	}
	if res.TotalWords > 0 {
		res.Accuracy = float64(res.CorrectWords) * 100 / float64(res.TotalWords)
		res.Score = res.CorrectWords * 100 / res.TotalWords
	}
	switch {
	case res.Score >= 90:
		res.Feedback = "Excellent pronunciation!"
	case res.Score >= 60:
		res.Feedback = "Good effort, keep practicing."
	default:
		res.Feedback = "Keep practicing the highlighted words."
	}
	return res
}

func words(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// historyJSON renders records the way the server populates materialId.
func historyJSON(recs []model.HistoryRecord) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, h := range recs {
		out = append(out, map[string]any{
			"_id": h.ID,
			"materialId": map[string]any{
				"_id":   h.MaterialID,
				"title": h.MaterialTitle,
				"text":  h.ItemText,
			},
			"itemText":       h.ItemText,
			"recognizedText": h.Transcript,
			"score":          h.Score,
			"createdAt":      h.CreatedAt,
		})
	}
	return out
}

func (s *Server) sortedHistory() []model.HistoryRecord {
	s.mu.Lock()
	recs := append([]model.HistoryRecord{}, s.history...)
	s.mu.Unlock()
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ *account) {
	writeOK(w, historyJSON(s.sortedHistory()))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request, _ *account) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs := s.sortedHistory()
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]model.RecentActivity, 0, len(recs))
	for _, h := range recs {
		out = append(out, model.RecentActivity{LessonName: h.MaterialTitle, Score: h.Score, CompletedAt: h.CreatedAt})
	}
	writeOK(w, out)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request, _ *account) {
	now := s.now()
	recs := s.sortedHistory()
	out := make([]model.WeeklyBucket, 7)
	for i := range out {
		day := now.AddDate(0, 0, i-6)
		out[i] = model.WeeklyBucket{Day: day.Format("Mon"), Date: day.Truncate(24 * time.Hour)}
		sum := 0
		for _, h := range recs {
			if h.CreatedAt.Local().Format(time.DateOnly) == day.Format(time.DateOnly) {
				out[i].PracticeCount++
				sum += h.Score
			}
		}
		if out[i].PracticeCount > 0 {
			out[i].AvgScore = sum / out[i].PracticeCount
		}
	}
	writeOK(w, out)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request, _ *account) {
	s.mu.Lock()
	in := s.insight
	s.mu.Unlock()
	if in == nil {
		writeOK(w, nil)
		return
	}
	writeOK(w, in)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request, _ *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.history {
		if h.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Deleted"})
			return
		}
	}
	writeErr(w, http.StatusNotFound, "Record not found")
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request, _ *account) {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "History cleared"})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request, _ *account) {
	recs := s.sortedHistory()
	stats := model.UserStatistics{TotalPractices: len(recs)}
	days := make(map[string]bool)
	sum := 0
	for _, h := range recs {
		sum += h.Score
		days[h.CreatedAt.Format(time.DateOnly)] = true
	}
	if len(recs) > 0 {
		stats.AverageScore = float64(sum) / float64(len(recs))
	}
	stats.DayStreak = len(days)
	writeOK(w, stats)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, acct *account) {
	var body struct{ Name string }
	if err := decodeBody(r, &body); err != nil || len(strings.TrimSpace(body.Name)) < 2 {
		writeErr(w, http.StatusBadRequest, "Name must be at least 2 characters")
		return
	}
	s.mu.Lock()
	acct.user.Name = strings.TrimSpace(body.Name)
	u := acct.user
	s.mu.Unlock()
	writeOK(w, map[string]any{"user": u})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, acct *account) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct.password != body.CurrentPassword {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Current password is incorrect"})
		return
	}
	acct.password = body.NewPassword
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password changed successfully"})
}
