package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookhive/bookhive-api/internal/api/handler"
	"github.com/bookhive/bookhive-api/internal/core/domain"
	"github.com/bookhive/bookhive-api/internal/core/service"
	"github.com/bookhive/bookhive-api/internal/infrastructure/security"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	created := *user
	created.ID = uuid.NewString()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *memUsers) FindByLogin(_ context.Context, username, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (username == "" || u.Username == username) && (email == "" || u.Email == email) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByUID(_ context.Context, uid string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[uid]; ok {
		out := *u
		return &out, nil
	}
	return nil, domain.ErrUserNotFound
}

type memSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memSessions) Save(_ context.Context, userUID, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userUID] = token
	return nil
}

func (m *memSessions) Exists(_ context.Context, userUID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userUID] == token, nil
}

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	users *memUsers
	now   time.Time
	clock sync.Mutex
}

func newTestServer(t *testing.T, checks map[string]handler.Pinger) *testServer {
	t.Helper()
	ts := &testServer{
		t:     t,
		users: &memUsers{users: make(map[string]*domain.User)},
		now:   time.Now(),
	}
	codec := security.NewJWTCodec("test-secret", time.Hour, security.WithClock(func() time.Time {
		ts.clock.Lock()
		defer ts.clock.Unlock()
		return ts.now
	}))
	svc := service.NewAuthService(
		ts.users,
		&memSessions{tokens: make(map[string]string)},
		security.NewBcryptHasher(bcrypt.MinCost),
		codec,
		time.Hour,
		zerolog.Nop(),
	)

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		AuthService:    svc,
		ReadyChecks:    checks,
		PasswordPolicy: handler.DefaultPasswordPolicy,
		Logger:         zerolog.Nop(),
		Registerer:     reg,
		Gatherer:       reg,
	})
	ts.srv = httptest.NewServer(e)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) advance(d time.Duration) {
	ts.clock.Lock()
	defer ts.clock.Unlock()
	ts.now = ts.now.Add(d)
}

func (ts *testServer) do(method, path, body, token string) (int, map[string]any) {
	ts.t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	if err != nil {
		ts.t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (ts *testServer) login(body string) string {
	ts.t.Helper()
	code, resp := ts.do(http.MethodPost, "/auth/login", body, "")
	if code != http.StatusOK {
		ts.t.Fatalf("login: expected 200, got %d (%v)", code, resp)
	}
	token, _ := resp["token"].(string)
	if token == "" {
		ts.t.Fatalf("login: missing token in %v", resp)
	}
	return token
}

const aliceRegistration = `{"username":"alice","email":"a@x.com","password":"Passw0rd!"}`

func TestRouter_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	code, resp := ts.do(http.MethodPost, "/auth/register", aliceRegistration, "")
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", code, resp)
	}
	if resp["username"] != "alice" || resp["is_activated"] != true || resp["is_verified"] != true || resp["is_superuser"] != false {
		t.Fatalf("register: unexpected body %v", resp)
	}

	code, resp = ts.do(http.MethodPost, "/auth/register", aliceRegistration, "")
	if code != http.StatusConflict || resp["error"] != "User already exists." {
		t.Fatalf("duplicate register: expected 409, got %d (%v)", code, resp)
	}

	t1 := ts.login(`{"username":"alice","password":"Passw0rd!"}`)

	code, resp = ts.do(http.MethodGet, "/auth/me", "", t1)
	if code != http.StatusOK || resp["username"] != "alice" {
		t.Fatalf("me with t1: expected 200, got %d (%v)", code, resp)
	}

	t2 := ts.login(`{"email":"a@x.com","password":"Passw0rd!"}`)
	if t1 == t2 {
		t.Fatalf("expected a fresh token on second login")
	}

	code, resp = ts.do(http.MethodGet, "/auth/me", "", t1)
	if code != http.StatusUnauthorized || resp["error"] != "Current session is inactive or has been terminated." {
		t.Fatalf("me with superseded t1: expected 401 wrong session, got %d (%v)", code, resp)
	}

	code, _ = ts.do(http.MethodGet, "/auth/me", "", t2)
	if code != http.StatusOK {
		t.Fatalf("me with t2: expected 200, got %d", code)
	}

	ts.advance(2 * time.Hour)
	code, resp = ts.do(http.MethodGet, "/auth/me", "", t2)
	if code != http.StatusUnauthorized || resp["error"] != "Token is expired." {
		t.Fatalf("me with expired t2: expected 401 expired, got %d (%v)", code, resp)
	}
}

func TestRouter_LoginFailuresShareOneMessage(t *testing.T) {
	ts := newTestServer(t, nil)
	if code, _ := ts.do(http.MethodPost, "/auth/register", aliceRegistration, ""); code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", code)
	}

	for _, body := range []string{
		`{"username":"alice","password":"Wr0ngpass!"}`,
		`{"username":"nobody","password":"Passw0rd!"}`,
	} {
		code, resp := ts.do(http.MethodPost, "/auth/login", body, "")
		if code != http.StatusUnauthorized || resp["error"] != "Wrong username/email or password." {
			t.Fatalf("login %s: expected 401 wrong data, got %d (%v)", body, code, resp)
		}
	}
}

func TestRouter_RequestValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{name: "register malformed json", path: "/auth/register", body: `{"username":`, code: http.StatusBadRequest},
		{name: "register weak password", path: "/auth/register", body: `{"username":"bob","email":"b@x.com","password":"weakpass"}`, code: http.StatusUnprocessableEntity},
		{name: "register bad email", path: "/auth/register", body: `{"username":"bob","email":"b","password":"Passw0rd!"}`, code: http.StatusUnprocessableEntity},
		{name: "login without identity", path: "/auth/login", body: `{"password":"Passw0rd!"}`, code: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := ts.do(http.MethodPost, tt.path, tt.body, "")
			if code != tt.code {
				t.Fatalf("expected %d, got %d (%v)", tt.code, code, resp)
			}
			if msg, _ := resp["error"].(string); msg == "" {
				t.Fatalf("expected error message, got %v", resp)
			}
		})
	}
}

func TestRouter_BearerHeader(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{name: "missing", msg: "The Authorization header is missing."},
		{name: "wrong scheme", header: "Basic abc", msg: "The Authorization header must be in the following format: Bearer <token>"},
		{name: "garbage token", header: "Bearer abc.def.ghi", msg: "Token is invalid."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.srv.URL+"/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do request: %v", err)
			}
			defer resp.Body.Close()

			var body map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&body)
			if resp.StatusCode != http.StatusUnauthorized || body["error"] != tt.msg {
				t.Fatalf("expected 401 %q, got %d (%v)", tt.msg, resp.StatusCode, body)
			}
		})
	}
}

func TestRouter_AdminUserLookup(t *testing.T) {
	ts := newTestServer(t, nil)

	code, resp := ts.do(http.MethodPost, "/auth/register", aliceRegistration, "")
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", code)
	}
	aliceUID, _ := resp["uid"].(string)
	token := ts.login(`{"username":"alice","password":"Passw0rd!"}`)

	code, resp = ts.do(http.MethodGet, "/admin/users/"+aliceUID, "", token)
	if code != http.StatusForbidden || resp["error"] != "You have not permission to perform this action." {
		t.Fatalf("non-superuser: expected 403, got %d (%v)", code, resp)
	}

	ts.users.mu.Lock()
	ts.users.users[aliceUID].IsSuperuser = true
	ts.users.mu.Unlock()

	code, resp = ts.do(http.MethodGet, "/admin/users/"+aliceUID, "", token)
	if code != http.StatusOK || resp["uid"] != aliceUID {
		t.Fatalf("superuser: expected 200, got %d (%v)", code, resp)
	}

	code, _ = ts.do(http.MethodGet, "/admin/users/"+uuid.NewString(), "", token)
	if code != http.StatusNotFound {
		t.Fatalf("unknown uid: expected 404, got %d", code)
	}

	code, _ = ts.do(http.MethodGet, "/admin/users/not-a-uuid", "", token)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed uid: expected 422, got %d", code)
	}

	code, _ = ts.do(http.MethodGet, "/admin/users/"+aliceUID, "", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	ts := newTestServer(t, map[string]handler.Pinger{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	if code, _ := ts.do(http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("/health: expected 200, got %d", code)
	}
	if code, resp := ts.do(http.MethodGet, "/health/ready", "", ""); code != http.StatusServiceUnavailable || resp["status"] != "degraded" {
		t.Fatalf("/health/ready: expected 503 degraded, got %d (%v)", code, resp)
	}

	resp, err := http.Get(ts.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics: expected 200, got %d", resp.StatusCode)
	}

	swagger, err := http.Get(ts.srv.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatalf("get /swagger/doc.json: %v", err)
	}
	defer swagger.Body.Close()
	if swagger.StatusCode != http.StatusOK {
		t.Fatalf("/swagger/doc.json: expected 200, got %d", swagger.StatusCode)
	}
}
