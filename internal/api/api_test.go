package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/api"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/account_service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/service/contact_service"
	"github.com/adzap-tech/adzap-backend/internal/service/sync_service"
	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)

	logrus.Info("initializing service")
	service.InitializeServices()

	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("cannot create file store: %v", err)
	}

	as := &auth_service.AuthService{
		Store:            store,
		MaxAdminAccounts: account_service.MaxAdminAccounts,
		MaxJudgeAccounts: account_service.MaxJudgeAccounts,
	}
	as.Initialize()

	apiConfig := &api.Api{
		Store:                store,
		AuthServiceConfig:    as,
		TeamServiceConfig:    &team_service.TeamService{Store: store},
		AccountServiceConfig: &account_service.AccountService{Store: store},
		ContactServiceConfig: &contact_service.ContactService{Store: store},
		SyncServiceConfig:    &sync_service.SyncService{Store: store},
	}

	r := chi.NewRouter()
	r.Get("/health", apiConfig.HandlerHealth)
	r.Get("/bootstrap", apiConfig.HandlerBootstrap)
	r.Post("/auth/participant/login", apiConfig.HandlerParticipantLogin)
	r.Post("/auth/judge/login", apiConfig.HandlerJudgeLogin)
	r.Post("/auth/logout", apiConfig.HandlerLogout)
	r.Get("/me", middleware.JWTMiddleware(apiConfig.HandlerGetMe))
	r.Post("/teams/register", apiConfig.HandlerRegisterTeam)
	r.Put("/teams", apiConfig.HandlerReplaceTeams)
	r.Post("/teams/{teamID}/scores", middleware.JWTMiddleware(apiConfig.HandlerRecordScore))
	r.Get("/results", apiConfig.HandlerResults)
	r.Post("/contact-messages", apiConfig.HandlerSubmitContactMessage)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Ok      bool   `json:"ok"`
		Storage string `json:"storage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("cannot decode health body: %v", err)
	}
	if !body.Ok || body.Storage != "file" {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestRegisterTeamEndpoint(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"teamName":"alpha","email":"alpha@x.com","password":"secret123"}`

	rec := doJSON(t, router, http.MethodPost, "/teams/register", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	raw := rec.Body.String()
	if strings.Contains(raw, "passwordHash") || strings.Contains(raw, "emailKey") {
		t.Errorf("registration response leaks credentials: %s", raw)
	}

	var body struct {
		Success bool `json:"success"`
		Team    struct {
			ID       int64  `json:"id"`
			TeamName string `json:"teamName"`
		} `json:"team"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("cannot decode body: %v", err)
	}
	if !body.Success || body.Team.ID == 0 || body.Team.TeamName != "alpha" {
		t.Errorf("unexpected registration body: %s", raw)
	}

	rec = doJSON(t, router, http.MethodPost, "/teams/register", payload)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/teams/register", `{"teamName":"beta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", rec.Code)
	}
}

func TestParticipantLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/teams/register",
		`{"teamName":"gamma","email":"gamma@x.com","password":"team-pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/participant/login",
		`{"email":"Gamma@X.com","password":"team-pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := sessionCookie(rec); c == nil {
		t.Errorf("expected a session cookie on login")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/participant/login",
		`{"email":"gamma@x.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("401 body should stay generic, got %q", rec.Body.String())
	}
}

func TestScoringRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/teams/register",
		`{"teamName":"scored","email":"scored@x.com","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d %s", rec.Code, rec.Body.String())
	}
	var registered struct {
		Team struct {
			ID int64 `json:"id"`
		} `json:"team"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("cannot decode registration: %v", err)
	}
	scoreURL := fmt.Sprintf("/teams/%d/scores", registered.Team.ID)
	scoreBody := `{"judgeId":"judge1","round":1,"score":8}`

	rec = doJSON(t, router, http.MethodPost, scoreURL, scoreBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/judge/login",
		`{"email":"judge1@adzap.com","password":"judge123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("judge login failed: %d %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatalf("expected a session cookie from judge login")
	}

	rec = doJSON(t, router, http.MethodPost, scoreURL, scoreBody, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with judge session, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/results?round=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("results failed: %d", rec.Code)
	}
	var results struct {
		Round    int `json:"round"`
		Rankings []struct {
			TeamID  int64   `json:"teamId"`
			Average float64 `json:"average"`
		} `json:"rankings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("cannot decode results: %v", err)
	}
	if len(results.Rankings) != 1 || results.Rankings[0].Average != 8 {
		t.Errorf("unexpected rankings: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/me", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed with session: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"role":"judge"`) {
		t.Errorf("expected judge identity, got %s", rec.Body.String())
	}
}

func TestBootstrapNeverLeaksCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/teams/register",
		`{"teamName":"hidden","email":"hidden@x.com","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/contact-messages",
		`{"name":"visitor","email":"v@x.com","message":"hello there"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contact failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/bootstrap", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap failed: %d", rec.Code)
	}
	raw := rec.Body.String()
	if strings.Contains(raw, "passwordHash") || strings.Contains(raw, "emailKey") {
		t.Errorf("bootstrap leaks credentials: %s", raw)
	}
	if !strings.Contains(raw, `"hidden"`) || !strings.Contains(raw, "hello there") {
		t.Errorf("bootstrap should carry teams and contact messages: %s", raw)
	}
}

func TestReplaceTeamsRequiresArray(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/teams", `{"other":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a teams array, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/teams",
		`{"teams":[{"teamName":"pushed","email":"pushed@x.com"}]}`)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for a valid replace, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestContactValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/contact-messages", `{"name":"nobody","email":"v@x.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing message, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/contact-messages", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatalf("logout should set the session cookie")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("logout cookie should be expired, got %+v", cookie)
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.KeyJwtSessionCookieName {
			return c
		}
	}
	return nil
}
