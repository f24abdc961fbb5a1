package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/users-api/internal/api/handler"
	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
	"github.com/99minutos/users-api/internal/core/service"
)

// memoryRepo is a minimal in-memory AccountRepository.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Account
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[int64]*domain.Account)}
}

func (r *memoryRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrDuplicateKey
		}
	}
	r.nextID++
	cp := *a
	cp.ID = r.nextID
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memoryRepo) Update(_ context.Context, id int64, changes domain.AccountChanges) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	changes.Apply(a)
	cp := *a
	return &cp, nil
}

func (r *memoryRepo) List(_ context.Context, _ ports.ListAccountsFilter) ([]*domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for id := int64(1); id <= r.nextID; id++ {
		if a, ok := r.byID[id]; ok && a.Active {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

type failingNotifier struct {
	welcomeErr error
}

func (n *failingNotifier) SendWelcome(context.Context, *domain.Account) error { return n.welcomeErr }
func (n *failingNotifier) NotifyAdmin(context.Context, *domain.Account) error {
	return errors.New("admin mailbox unavailable")
}

type testServer struct {
	e    *echo.Echo
	repo *memoryRepo
	auth *service.AuthService
	mail *failingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := newMemoryRepo()
	mail := &failingNotifier{}
	log := zerolog.Nop()

	accounts := service.NewAccountService(repo, nil, mail, service.AccountOptions{
		MailTimeout:          time.Second,
		CaseInsensitiveEmail: true,
		BcryptCost:           bcrypt.MinCost,
	}, log)
	auth := service.NewAuthService(repo, nil, "test-secret", time.Hour, true, log)

	e := NewRouter(Deps{
		Accounts:  accounts,
		Auth:      auth,
		JWTSecret: "test-secret",
		Health:    map[string]handler.PingFunc{"store": func(context.Context) error { return nil }},
		Log:       log,
	})
	return &testServer{e: e, repo: repo, auth: auth, mail: mail}
}

// tokenFor seeds an account with the given role and returns a bearer token.
func (s *testServer) tokenFor(t *testing.T, email string, role domain.Role) string {
	t.Helper()
	token, _, err := s.auth.Register(context.Background(), ports.RegisterInput{
		Name: "Seeded", Email: email, Password: "password123", Role: &role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRouter_CreateThenGetReturnsSameAccount(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "admin@example.com", domain.RoleAdministrator)

	rec := s.do(http.MethodPost, "/users", token, map[string]any{
		"email": "New.Person@Example.com", "password": "password1", "name": "New Person", "role": "Manager",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)

	rec = s.do(http.MethodGet, fmt.Sprintf("/users/%v", created["id"]), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode(t, rec)

	for _, k := range []string{"id", "email", "name", "role"} {
		if got[k] != created[k] {
			t.Errorf("%s: created %v, fetched %v", k, created[k], got[k])
		}
	}
	if got["role"] != "manager" || got["email"] != "new.person@example.com" {
		t.Fatalf("unexpected account: %v", got)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("password material in response: %s", rec.Body.String())
	}
}

func TestRouter_UserRoleCannotCreate(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "user@example.com", domain.RoleUser)

	for _, body := range []map[string]any{
		{},
		{"email": "valid@example.com", "password": "password1", "name": "Valid Name"},
	} {
		rec := s.do(http.MethodPost, "/users", token, body)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	}
}

func TestRouter_WelcomeFailureReportsCreatedID(t *testing.T) {
	s := newTestServer(t)
	s.mail.welcomeErr = errors.New("smtp down")
	token := s.tokenFor(t, "admin@example.com", domain.RoleAdministrator)

	rec := s.do(http.MethodPost, "/users", token, map[string]any{
		"email": "late@example.com", "password": "password1", "name": "Late Mail",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != "email_failed" || body["id"] == nil {
		t.Fatalf("unexpected body: %v", body)
	}

	if _, err := s.repo.FindByEmail(context.Background(), "late@example.com"); err != nil {
		t.Fatalf("account should remain committed: %v", err)
	}
}

func TestRouter_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "admin@example.com", domain.RoleAdministrator)

	rec := s.do(http.MethodPost, "/users", token, map[string]any{
		"email": "ADMIN@example.com", "password": "password1", "name": "Copy Cat",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/register", "", map[string]any{
		"name": "Copy Cat", "email": "admin@example.com", "password": "password1", "password_confirmation": "password1",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 from register, got %d", rec.Code)
	}
	msgs, _ := decode(t, rec)["messages"].(map[string]any)
	if msgs["email"] != "Email already exists." {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestRouter_PaddedShortNameIsNotStored(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "admin@example.com", domain.RoleAdministrator)

	rec := s.do(http.MethodPost, "/users", token, map[string]any{
		"email": "pad@example.com", "password": "password1", "name": "   ab   ",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := s.repo.FindByEmail(context.Background(), "pad@example.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("account must not be stored, got %v", err)
	}
}

func TestRouter_DeactivatedActorCannotRead(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "admin@example.com", domain.RoleAdministrator)

	if rec := s.do(http.MethodGet, "/users/1", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 while active, got %d", rec.Code)
	}

	s.repo.mu.Lock()
	s.repo.byID[1].Active = false
	s.repo.mu.Unlock()

	for _, path := range []string{"/users/1", "/users"} {
		if rec := s.do(http.MethodGet, path, token, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 after deactivation, got %d", path, rec.Code)
		}
	}
}

func TestRouter_PromotedUserCanCreateWithOldToken(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "riser@example.com", domain.RoleUser)

	s.repo.mu.Lock()
	s.repo.byID[1].Role = domain.RoleManager
	s.repo.mu.Unlock()

	rec := s.do(http.MethodPost, "/users", token, map[string]any{
		"email": "hire@example.com", "password": "password1", "name": "New Hire",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for promoted account, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UpdateUnknownIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "user@example.com", domain.RoleUser)

	rec := s.do(http.MethodPut, "/users/999", token, map[string]any{"name": "Nobody"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_ListFlagsEditableRows(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(t, "manager@example.com", domain.RoleManager)
	s.tokenFor(t, "user@example.com", domain.RoleUser)

	rec := s.do(http.MethodGet, "/users?sortBy=nonsense", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Users []struct {
			Email   string `json:"email"`
			CanEdit bool   `json:"can_edit"`
		} `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(body.Users))
	}
	for _, u := range body.Users {
		want := u.Email == "user@example.com"
		if u.CanEdit != want {
			t.Errorf("%s: expected can_edit=%v", u.Email, want)
		}
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/register", "", map[string]any{
		"name": "Alice", "email": "alice@example.com", "password": "password1", "password_confirmation": "password1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/login", "", map[string]any{"email": "alice@example.com", "password": "wrong-pass"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/login", "", map[string]any{"email": "alice@example.com", "password": "password1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	token, _ := decode(t, rec)["token"].(string)

	rec = s.do(http.MethodGet, "/me", token, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["email"] != "alice@example.com" {
		t.Fatalf("me: unexpected response %d %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(http.MethodGet, "/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/hello", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "Hello, World!" {
		t.Fatalf("unexpected hello: %d %q", rec.Code, rec.Body.String())
	}

	if rec := s.do(http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}
}
