// Package providertest provides an in-memory provider for tests. It serves
// the subset of the provider's auth, rest, and storage APIs the dashboard
// uses.
package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AnonKey is the anon key the Server accepts.
const AnonKey = "test-anon-key"

// NewServer starts a new Server. Close must be called once the Server is no
// longer needed.
func NewServer(options ...Option) *Server {
	s := &Server{
		mutex:     new(sync.Mutex),
		users:     make(map[string]*user),
		otps:      make(map[string]string),
		access:    make(map[string]string),
		refresh:   make(map[string]string),
		profiles:  make(map[uuid.UUID]json.RawMessage),
		rows:      make(map[string][]map[string]interface{}),
		objects:   make(map[string]map[string]Object),
		calls:     make(map[string]int),
		otp:       "123456",
		expiresIn: 3600,
	}
	for _, option := range options {
		option(s)
	}

	router := chi.NewRouter()
	router.Use(s.count, s.apikey)
	router.Route("/auth/v1", func(router chi.Router) {
		router.Get("/health", s.health)
		router.Post("/signup", s.signup)
		router.Post("/token", s.token)
		router.Post("/otp", s.requestOTP)
		router.Post("/verify", s.verify)
		router.Post("/logout", s.logout)
	})
	router.Route("/rest/v1", func(router chi.Router) {
		router.Get("/{table}", s.selectSingle)
		router.Post("/{table}", s.insert)
	})
	router.Route("/storage/v1/object", func(router chi.Router) {
		router.Post("/list/{bucket}", s.list)
		router.Delete("/{bucket}", s.remove)
		router.Post("/{bucket}/*", s.upload)
	})

	s.Server = httptest.NewServer(router)
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithAutoConfirm configures sign-up to issue a session immediately.
func WithAutoConfirm() Option {
	return func(s *Server) { s.autoConfirm = true }
}

// WithUnhealthy configures the health check to fail n times before
// succeeding.
func WithUnhealthy(n int) Option {
	return func(s *Server) { s.unhealthy = n }
}

// WithExpiresIn configures the lifetime of issued access tokens.
func WithExpiresIn(d time.Duration) Option {
	return func(s *Server) { s.expiresIn = int64(d.Seconds()) }
}

// Server is an in-memory provider.
type Server struct {
	*httptest.Server

	mutex       *sync.Mutex
	users       map[string]*user
	otps        map[string]string
	access      map[string]string
	refresh     map[string]string
	profiles    map[uuid.UUID]json.RawMessage
	rows        map[string][]map[string]interface{}
	objects     map[string]map[string]Object
	calls       map[string]int
	redirects   []string
	otp         string
	autoConfirm bool
	unhealthy   int
	expiresIn   int64
	issued      int
}

type user struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	password string
}

// Object is a stored object.
type Object struct {
	ContentType  string
	CacheControl string
	Body         []byte
}

// AddUser creates a confirmed user and returns its id.
func (s *Server) AddUser(email, password string) uuid.UUID {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	u := &user{ID: uuid.New(), Email: email, password: password}
	s.users[email] = u
	return u.ID
}

// SetProfile sets the user_profiles row of the passed user to the passed
// JSON document.
func (s *Server) SetProfile(id uuid.UUID, row string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.profiles[id] = json.RawMessage(row)
}

// SetOTP sets the one-time PIN the Server accepts.
func (s *Server) SetOTP(otp string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.otp = otp
}

// PutObject stores an object without going through the storage API.
func (s *Server) PutObject(bucket, name string, obj Object) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.putObject(bucket, name, obj)
}

// Rows retrieves the rows inserted into table.
func (s *Server) Rows(table string) []map[string]interface{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]map[string]interface{}(nil), s.rows[table]...)
}

// Object retrieves the object at name in bucket.
func (s *Server) Object(bucket, name string) (Object, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	obj, ok := s.objects[bucket][name]
	return obj, ok
}

// OTPRequested checks if a one-time PIN was requested for email.
func (s *Server) OTPRequested(email string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.otps[email]
	return ok
}

// Redirects retrieves the redirect_to values sign-ups were made with.
func (s *Server) Redirects() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.redirects...)
}

// Calls retrieves the number of requests made to the passed path.
func (s *Server) Calls(path string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls[path]
}

// Revoke invalidates every issued access and refresh token.
func (s *Server) Revoke() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.access = make(map[string]string)
	s.refresh = make(map[string]string)
}

// --- middleware ---

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mutex.Lock()
		s.calls[r.URL.Path]++
		s.mutex.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) apikey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != AnonKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- auth ---

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.unhealthy > 0 {
		s.unhealthy--
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"msg": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": "GoTrue"})
}

type credentials struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
	Token        string `json:"token"`
	Type         string `json:"type"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[body.Email]; ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"code":       422,
			"error_code": "user_already_exists",
			"msg":        "User already registered",
		})
		return
	}
	if len(body.Password) < 6 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"code":       422,
			"error_code": "weak_password",
			"msg":        "Password should be at least 6 characters.",
		})
		return
	}

	u := &user{ID: uuid.New(), Email: body.Email, password: body.Password}
	s.users[body.Email] = u
	s.redirects = append(s.redirects, r.URL.Query().Get("redirect_to"))

	if !s.autoConfirm {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeJSON(w, http.StatusOK, s.issue(u))
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		u, ok := s.users[body.Email]
		if !ok || u.password != body.Password {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
			return
		}
		writeJSON(w, http.StatusOK, s.issue(u))
	case "refresh_token":
		email, ok := s.refresh[body.RefreshToken]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"code":       400,
				"error_code": "refresh_token_not_found",
				"msg":        "Invalid Refresh Token: Refresh Token Not Found",
			})
			return
		}
		delete(s.refresh, body.RefreshToken)
		writeJSON(w, http.StatusOK, s.issue(s.users[email]))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "unsupported grant type"})
	}
}

func (s *Server) requestOTP(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[body.Email]; !ok {
		s.users[body.Email] = &user{ID: uuid.New(), Email: body.Email}
	}
	s.otps[body.Email] = s.otp
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if otp, ok := s.otps[body.Email]; !ok || otp != body.Token || body.Type != "email" {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"code":       403,
			"error_code": "otp_expired",
			"msg":        "Token has expired or is invalid",
		})
		return
	}
	delete(s.otps, body.Email)
	writeJSON(w, http.StatusOK, s.issue(s.users[body.Email]))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	token := bearer(r)
	if _, ok := s.access[token]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		return
	}
	delete(s.access, token)
	w.WriteHeader(http.StatusNoContent)
}

// issue must be called with the mutex held.
func (s *Server) issue(u *user) map[string]interface{} {
	s.issued++
	access := fmt.Sprintf("access-%d", s.issued)
	refresh := fmt.Sprintf("refresh-%d", s.issued)
	s.access[access] = u.Email
	s.refresh[refresh] = u.Email

	return map[string]interface{}{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    s.expiresIn,
		"expires_at":    time.Now().Unix() + s.expiresIn,
		"user":          u,
	}
}

// --- rest ---

func (s *Server) selectSingle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") != "application/vnd.pgrst.object+json" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "single object expected"})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if chi.URLParam(r, "table") != "user_profiles" {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"code":    "42P01",
			"message": "relation does not exist",
		})
		return
	}
	if _, ok := s.access[bearer(r)]; !ok {
		writeNoRows(w)
		return
	}

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Query().Get("id"), "eq."))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "22P02",
			"message": "invalid input syntax for type uuid",
		})
		return
	}

	row, ok := s.profiles[id]
	if !ok {
		writeNoRows(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(row)
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	var rows []map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	table := chi.URLParam(r, "table")
	s.rows[table] = append(s.rows[table], rows...)
	w.WriteHeader(http.StatusCreated)
}

func writeNoRows(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotAcceptable, map[string]string{
		"code":    "PGRST116",
		"message": "JSON object requested, multiple (or no) rows returned",
	})
}

// --- storage ---

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read", "message": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	bucket := chi.URLParam(r, "bucket")
	name := chi.URLParam(r, "*")
	if _, ok := s.objects[bucket][name]; ok && r.Header.Get("x-upsert") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"statusCode": "409",
			"error":      "Duplicate",
			"message":    "The resource already exists",
		})
		return
	}

	s.putObject(bucket, name, Object{
		ContentType:  r.Header.Get("Content-Type"),
		CacheControl: r.Header.Get("Cache-Control"),
		Body:         b,
	})
	writeJSON(w, http.StatusOK, map[string]string{"Key": path.Join(bucket, name)})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prefix string `json:"prefix"`
		Limit  int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decode", "message": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	prefix := strings.Trim(body.Prefix, "/")
	names := make([]string, 0)
	for name := range s.objects[chi.URLParam(r, "bucket")] {
		dir, file := path.Split(name)
		if strings.Trim(dir, "/") == prefix {
			names = append(names, file)
		}
	}
	sort.Strings(names)
	if body.Limit > 0 && len(names) > body.Limit {
		names = names[:body.Limit]
	}

	objects := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		objects = append(objects, map[string]interface{}{"name": name, "id": uuid.New()})
	}
	writeJSON(w, http.StatusOK, objects)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prefixes []string `json:"prefixes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decode", "message": err.Error()})
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	bucket := chi.URLParam(r, "bucket")
	removed := make([]map[string]string, 0)
	for _, name := range body.Prefixes {
		if _, ok := s.objects[bucket][name]; ok {
			delete(s.objects[bucket], name)
			removed = append(removed, map[string]string{"name": name})
		}
	}
	writeJSON(w, http.StatusOK, removed)
}

// putObject must be called with the mutex held.
func (s *Server) putObject(bucket, name string, obj Object) {
	if _, ok := s.objects[bucket]; !ok {
		s.objects[bucket] = make(map[string]Object)
	}
	s.objects[bucket][name] = obj
}

// --- helpers ---

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
