package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/lock"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/service"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/usecase"
)

// --- mocks ---

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "event"}
	}
	return event, nil
}

func (m *mockEventRepo) Save(ctx context.Context, event *domain.Event, roleIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, nil
}

type mockRegistrationRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Registration
}

func (m *mockRegistrationRepo) find(userID, eventID, roleID string) *domain.Registration {
	for _, r := range m.records {
		if r.UserID == userID && r.EventID == eventID && r.RoleID == roleID {
			return r
		}
	}
	return nil
}

func (m *mockRegistrationRepo) FindByTuple(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.find(userID, eventID, roleID); r != nil {
		return r, nil
	}
	return nil, domain.NotFoundError{Resource: "registration"}
}

func (m *mockRegistrationRepo) FindActive(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.find(userID, eventID, roleID); r != nil && r.Status == domain.RegistrationStatusActive {
		return r, nil
	}
	return nil, domain.NotFoundError{Resource: "registration"}
}

func (m *mockRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]*domain.Registration)
	}
	m.records[reg.ID] = reg
	return nil
}

func (m *mockRegistrationRepo) Save(ctx context.Context, reg *domain.Registration) error {
	return m.Create(ctx, reg)
}

func (m *mockRegistrationRepo) DeleteActive(ctx context.Context, userID, eventID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.find(userID, eventID, roleID); r != nil && r.Status == domain.RegistrationStatusActive {
		delete(m.records, r.ID)
	}
	return nil
}

func (m *mockRegistrationRepo) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "user"}
}

type mockEventCache struct{}

func (mockEventCache) Get(ctx context.Context, id string) (*domain.Event, bool) { return nil, false }
func (mockEventCache) Set(ctx context.Context, event *domain.Event)             {}
func (mockEventCache) Delete(ctx context.Context, id string)                    {}

// --- fixture ---

type fixture struct {
	e        *echo.Echo
	auth     *service.AuthService
	events   *mockEventRepo
	users    *mockUserRepo
	regs     *mockRegistrationRepo
	promoUC  *usecase.PromoUsecase
	eventUC  *usecase.EventUsecase
	password string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	events := &mockEventRepo{events: map[string]*domain.Event{}}
	regs := &mockRegistrationRepo{records: map[string]*domain.Registration{}}
	users := &mockUserRepo{users: map[string]*domain.User{}}

	auth := service.NewAuthService("handler-test-secret")
	eventUC := usecase.NewEventUsecase(events, mockEventCache{})
	promoUC := usecase.NewPromoUsecase(&mockPromoRepo{})

	h := NewHandler(
		usecase.NewRegistrationUsecase(lock.New(), events, regs),
		eventUC,
		usecase.NewUserUsecase(users),
		promoUC,
		auth,
		nil,
	)

	e := echo.New()
	h.RegisterRoutes(e)

	return &fixture{
		e:        e,
		auth:     auth,
		events:   events,
		users:    users,
		regs:     regs,
		promoUC:  promoUC,
		eventUC:  eventUC,
		password: "open sesame",
	}
}

type mockPromoRepo struct{}

func (mockPromoRepo) Create(ctx context.Context, promo *domain.PromoCode) error { return nil }
func (mockPromoRepo) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	return nil, domain.NotFoundError{Resource: "promo code"}
}
func (mockPromoRepo) Redeem(ctx context.Context, code string) (*domain.PromoCode, error) {
	return nil, domain.NotFoundError{Resource: "redeemable promo code"}
}

func (f *fixture) addUser(t *testing.T, id, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(f.password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	f.users.users[id] = user
	return user
}

func (f *fixture) addEvent(t *testing.T, id string, roles ...domain.Role) *domain.Event {
	t.Helper()
	event := &domain.Event{
		ID:    id,
		Title: "Sunday Service",
		Date:  time.Now().Add(48 * time.Hour),
		Roles: roles,
	}
	f.events.events[id] = event
	return event
}

func (f *fixture) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := f.auth.Issue(context.Background(), user)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	res := httptest.NewRecorder()
	f.e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestSignupEndpoint(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", domain.UserRoleParticipant)
	f.addEvent(t, "ev1", domain.Role{ID: "r1", Name: "Greeter", MaxParticipants: 3})
	token := f.token(t, user)

	res := f.do(http.MethodPost, "/api/v1/events/ev1/signup", token, echo.Map{"roleId": "r1"})
	require.Equal(t, http.StatusOK, res.Code)

	var result usecase.SignupResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Successfully signed up for the event!", result.Message)
	require.NotNil(t, result.Event)
	assert.True(t, result.Event.Roles[0].HasUser("alice"))
}

func TestSignupBusinessRefusalStaysHTTP200(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", domain.UserRoleParticipant)
	f.addEvent(t, "ev1", domain.Role{ID: "r1", Name: "Greeter", MaxParticipants: 3})
	token := f.token(t, user)

	res := f.do(http.MethodPost, "/api/v1/events/ev1/signup", token, echo.Map{"roleId": "missing"})
	require.Equal(t, http.StatusOK, res.Code)

	var result usecase.SignupResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Role not found in this event", result.Message)
}

func TestSignupRequiresAuth(t *testing.T) {
	f := newFixture(t)
	f.addEvent(t, "ev1", domain.Role{ID: "r1", Name: "Greeter", MaxParticipants: 3})

	res := f.do(http.MethodPost, "/api/v1/events/ev1/signup", "", echo.Map{"roleId": "r1"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestManageRequiresLeaderRole(t *testing.T) {
	f := newFixture(t)
	participant := f.addUser(t, "alice", domain.UserRoleParticipant)
	leader := f.addUser(t, "bob", domain.UserRoleLeader)
	f.addEvent(t, "ev1", domain.Role{
		ID:              "r1",
		Name:            "Greeter",
		MaxParticipants: 3,
		CurrentSignups:  []domain.Signup{{UserID: "alice", FirstName: "Test", LastName: "User"}},
	})

	body := echo.Map{"userId": "alice", "roleId": "r1"}

	res := f.do(http.MethodPost, "/api/v1/events/ev1/manage/remove", f.token(t, participant), body)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = f.do(http.MethodPost, "/api/v1/events/ev1/manage/remove", f.token(t, leader), body)
	require.Equal(t, http.StatusOK, res.Code)

	var result usecase.RemoveResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.True(t, result.Success)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", domain.UserRoleParticipant)

	res := f.do(http.MethodPost, "/api/v1/login", "", echo.Map{
		"email":    user.Email,
		"password": f.password,
	})
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	res = f.do(http.MethodGet, "/api/v1/me", body.Token, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var me domain.User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.ID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", domain.UserRoleParticipant)

	res := f.do(http.MethodPost, "/api/v1/login", "", echo.Map{
		"email":    user.Email,
		"password": "not the password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestEventETagRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addEvent(t, "ev1", domain.Role{ID: "r1", Name: "Greeter", MaxParticipants: 3})

	res := f.do(http.MethodGet, "/api/v1/events/ev1", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	etag := res.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/ev1", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}
