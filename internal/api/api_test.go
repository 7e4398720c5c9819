package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"tournament-backend/internal/auth"
	"tournament-backend/internal/events"
	"tournament-backend/internal/model"
	"tournament-backend/internal/service"
	"tournament-backend/internal/store"
)

type testServer struct {
	router *gin.Engine
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	d := service.Deps{Store: st, Clock: clock, Events: &events.Recorder{}}
	enc := auth.BcryptEncoder{Cost: bcrypt.MinCost}
	tokens := auth.NewTokens("test-secret-0123456789", time.Hour, "test", clock)
	users := service.NewUserService(d, enc)

	r := NewRouter(Deps{
		Teams:       service.NewTeamService(d),
		Tournaments: service.NewTournamentService(d),
		Matches:     service.NewMatchService(d),
		Users:       users,
		Auth:        service.NewAuthService(d, users, enc, tokens),
		Audit:       service.NewAuditService(d),
		Tokens:      tokens,
		Store:       st,
		TokenTTL:    time.Hour,
	})
	return &testServer{router: r, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	var res struct {
		Token string `json:"token"`
		Type  string `json:"type"`
	}
	decode(t, w, &res)
	if res.Type != "Bearer" || res.Token == "" {
		t.Fatalf("login response = %+v", res)
	}
	return res.Token
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := s.users.CreateUser(auth.System(context.Background()), service.CreateUserInput{
		Username: "admin", Email: "admin@example.com", Password: "adminpass", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return s.login(t, "admin", "adminpass")
}

func (s *testServer) userToken(t *testing.T, name string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", name, w.Code, w.Body.String())
	}
	return s.login(t, name, "secret1")
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type errorBody struct {
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	var body errorBody
	decode(t, w, &body)
	if body.Error != code {
		t.Fatalf("error = %q, want %q", body.Error, code)
	}
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)
	expectError(t, s.do(t, http.MethodGet, "/api/teams", "", nil), http.StatusUnauthorized, "AUTHENTICATION_FAILED")
	expectError(t, s.do(t, http.MethodGet, "/api/teams", "garbage", nil), http.StatusUnauthorized, "AUTHENTICATION_FAILED")
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)
	s.userToken(t, "alice")
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "nope"})
	body := expectError(t, w, http.StatusUnauthorized, "AUTHENTICATION_FAILED")
	if body.Message != "Invalid username or password" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	s := newTestServer(t)
	s.userToken(t, "alice")
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret1"})
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("auth cookie missing: %v", w.Result().Cookies())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie.Value})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with cookie: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "al", "email": "not-an-email", "password": "123"})
	body := expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	for _, field := range []string{"username", "email", "password"} {
		if body.ValidationErrors[field] == "" {
			t.Fatalf("missing message for %s: %v", field, body.ValidationErrors)
		}
	}

	s.userToken(t, "alice")
	w = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "email": "x@example.com", "password": "secret1"})
	expectError(t, w, http.StatusConflict, "USERNAME_ALREADY_EXISTS")
}

func TestTeamLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	user := s.userToken(t, "alice")

	w := s.do(t, http.MethodPost, "/api/teams", user, gin.H{"name": "Lions"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create team: %d %s", w.Code, w.Body.String())
	}
	var team struct {
		ID              int64 `json:"id"`
		NumberOfPlayers int   `json:"numberOfPlayers"`
	}
	decode(t, w, &team)
	if team.ID == 0 || team.NumberOfPlayers != 0 {
		t.Fatalf("team = %s", w.Body.String())
	}

	expectError(t, s.do(t, http.MethodPost, "/api/teams", user, gin.H{"name": "Lions"}), http.StatusConflict, "TEAM_NAME_ALREADY_EXISTS")
	expectError(t, s.do(t, http.MethodPost, "/api/teams", user, gin.H{"name": "  "}), http.StatusBadRequest, "VALIDATION_ERROR")
	expectError(t, s.do(t, http.MethodDelete, "/api/teams/1", user, nil), http.StatusForbidden, "ACCESS_DENIED")
	expectError(t, s.do(t, http.MethodGet, "/api/teams/999", user, nil), http.StatusNotFound, "TEAM_NOT_FOUND")
	expectError(t, s.do(t, http.MethodGet, "/api/teams/abc", user, nil), http.StatusBadRequest, "INVALID_PARAMETER")
	expectError(t, s.do(t, http.MethodGet, "/api/teams/search?keyword=", user, nil), http.StatusBadRequest, "EMPTY_SEARCH_KEYWORD")

	if w := s.do(t, http.MethodGet, "/api/teams/name/Lions", user, nil); w.Code != http.StatusOK {
		t.Fatalf("get by name: %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/teams/1", admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
}

func TestTournamentRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	w := s.do(t, http.MethodPost, "/api/tournaments", admin, gin.H{
		"name": "Spring Cup", "startDate": "2026-05-01", "endDate": "2026-05-10", "maxTeams": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create tournament: %d %s", w.Code, w.Body.String())
	}
	var tr struct {
		ID        int64  `json:"id"`
		StartDate string `json:"startDate"`
		Status    string `json:"status"`
	}
	decode(t, w, &tr)
	if tr.StartDate != "2026-05-01" || tr.Status != "OPEN" {
		t.Fatalf("tournament = %+v", tr)
	}

	for _, name := range []string{"Alpha", "Bravo"} {
		if w := s.do(t, http.MethodPost, "/api/teams", admin, gin.H{"name": name}); w.Code != http.StatusCreated {
			t.Fatalf("create team %s: %d", name, w.Code)
		}
	}
	if w := s.do(t, http.MethodPost, "/api/tournaments/1/teams/1", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	expectError(t, s.do(t, http.MethodPost, "/api/tournaments/1/teams/2", admin, nil), http.StatusConflict, "TOURNAMENT_FULL")

	w = s.do(t, http.MethodPost, "/api/tournaments", admin, gin.H{
		"name": "Backwards", "startDate": "2026-05-10", "endDate": "2026-05-01",
	})
	expectError(t, w, http.StatusBadRequest, "INVALID_TOURNAMENT_DATE")

	w = s.do(t, http.MethodPost, "/api/tournaments", admin, gin.H{"name": "No dates"})
	body := expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	if body.ValidationErrors["startDate"] == "" {
		t.Fatalf("validationErrors = %v", body.ValidationErrors)
	}
}

func TestMatchResultFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	s.do(t, http.MethodPost, "/api/tournaments", admin, gin.H{"name": "Cup", "startDate": "2026-05-01", "endDate": "2026-05-10"})
	s.do(t, http.MethodPost, "/api/teams", admin, gin.H{"name": "Home"})
	s.do(t, http.MethodPost, "/api/teams", admin, gin.H{"name": "Away"})
	s.do(t, http.MethodPost, "/api/tournaments/1/teams/1", admin, nil)
	s.do(t, http.MethodPost, "/api/tournaments/1/teams/2", admin, nil)

	w := s.do(t, http.MethodPost, "/api/matches", admin, gin.H{
		"homeTeamId": 1, "awayTeamId": 2, "tournamentId": 1, "matchDate": "2026-05-02T18:00:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create match: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPut, "/api/matches/1/result", admin, gin.H{"homeGoals": -1, "awayGoals": 0})
	expectError(t, w, http.StatusBadRequest, "INVALID_MATCH_RESULT")

	w = s.do(t, http.MethodPut, "/api/matches/1/result", admin, gin.H{"homeGoals": 2, "awayGoals": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("result: %d %s", w.Code, w.Body.String())
	}
	var m struct {
		Result    string `json:"result"`
		Status    string `json:"status"`
		MatchDate string `json:"matchDate"`
		WinnerID  *int64 `json:"winnerId"`
		HomeName  string `json:"homeTeamName"`
	}
	decode(t, w, &m)
	if m.Result != "2 - 2" || m.Status != "COMPLETED" || m.WinnerID != nil || m.HomeName != "Home" {
		t.Fatalf("match = %+v", m)
	}
	if m.MatchDate != "2026-05-02T18:00:00" {
		t.Fatalf("matchDate = %q", m.MatchDate)
	}

	w = s.do(t, http.MethodGet, "/api/matches/tournament/1/teams/1/record", admin, nil)
	var rec struct {
		Draws int `json:"draws"`
	}
	decode(t, w, &rec)
	if rec.Draws != 1 {
		t.Fatalf("record = %s", w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/matches/period?start=2026-05-03T00:00:00&end=2026-05-01T00:00:00", admin, nil)
	expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	expectError(t, s.do(t, http.MethodGet, "/api/matches/status/FINISHED", admin, nil), http.StatusBadRequest, "INVALID_PARAMETER")
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	alice := s.userToken(t, "alice")
	s.userToken(t, "bob")

	expectError(t, s.do(t, http.MethodGet, "/api/users", alice, nil), http.StatusForbidden, "ACCESS_DENIED")
	expectError(t, s.do(t, http.MethodGet, "/api/users/username/bob", alice, nil), http.StatusForbidden, "ACCESS_DENIED")
	expectError(t, s.do(t, http.MethodPut, "/api/users/2", alice, gin.H{"role": "ROLE_ADMIN"}), http.StatusForbidden, "UNAUTHORIZED_OPERATION")

	w := s.do(t, http.MethodPut, "/api/users/2/profile", alice, gin.H{"city": "Turin", "birthDate": "1999-02-03"})
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", w.Code, w.Body.String())
	}
	var u struct {
		Profile struct {
			City      string `json:"city"`
			BirthDate string `json:"birthDate"`
		} `json:"profile"`
	}
	decode(t, w, &u)
	if u.Profile.City != "Turin" || u.Profile.BirthDate != "1999-02-03" {
		t.Fatalf("user = %s", w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/users/search?keyword=BOB", admin, nil)
	var found []struct {
		Username string `json:"username"`
	}
	decode(t, w, &found)
	if len(found) != 1 || found[0].Username != "bob" {
		t.Fatalf("search = %s", w.Body.String())
	}

	expectError(t, s.do(t, http.MethodGet, "/api/admin/logs", alice, nil), http.StatusForbidden, "ACCESS_DENIED")
	if w := s.do(t, http.MethodGet, "/api/admin/logs?limit=5", admin, nil); w.Code != http.StatusOK {
		t.Fatalf("logs: %d", w.Code)
	}
}
