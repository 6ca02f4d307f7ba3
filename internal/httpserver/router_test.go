package httpserver

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

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/export"
	"launchhub/internal/handler"
	"launchhub/internal/model"
	"launchhub/internal/service"
	"launchhub/internal/template"
	"launchhub/pkg/outbox"
	"launchhub/pkg/rbac"
	"launchhub/pkg/util"
)

const testSecret = "test-secret"

type memProjects struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	progress *memProgress
	getErr   error
}

func (m *memProjects) Create(_ context.Context, p *model.Project, initial *model.UserProgress, _ []*outbox.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	if initial != nil {
		_ = m.progress.Save(context.Background(), initial)
	}
	return nil
}

func (m *memProjects) Get(_ context.Context, id string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("get project %s: %w", id, apperrors.ErrNotFound)
	}
	return p, nil
}

func (m *memProjects) ListByUser(_ context.Context, userID string) ([]*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) UpdatePhaseData(_ context.Context, id, section string, data model.PhaseData, now time.Time, _ []*outbox.Event) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if p.Data == nil {
		p.Data = map[string]model.PhaseData{}
	}
	p.Data[section] = data
	p.UpdatedAt = now
	return p, nil
}

func (m *memProjects) Delete(_ context.Context, id string, _ []*outbox.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

type memProgress struct {
	mu   sync.Mutex
	docs map[string]*model.UserProgress
}

func (m *memProgress) Get(_ context.Context, userID, projectID string) (*model.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[userID+"/"+projectID], nil
}

func (m *memProgress) Save(_ context.Context, u *model.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[u.UserID+"/"+u.ProjectID] = u
	return nil
}

func (m *memProgress) Update(ctx context.Context, userID, projectID string, fn func(u *model.UserProgress) (*model.UserProgress, []*outbox.Event, error)) (*model.UserProgress, error) {
	cur, _ := m.Get(ctx, userID, projectID)
	next, _, err := fn(cur)
	if err != nil {
		return nil, err
	}
	return next, m.Save(ctx, next)
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memUsers) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return apperrors.NewValidationError("email", "duplicate", "email already registered")
	}
	u.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	m.users[u.Email] = u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

type memAnalytics struct{}

func (memAnalytics) Increment(context.Context, string, string) error       { return nil }
func (memAnalytics) IncrementExport(context.Context, string, string) error { return nil }
func (memAnalytics) Summary(_ context.Context, userID string) (*model.AnalyticsSummary, error) {
	return &model.AnalyticsSummary{UserID: userID, Exports: map[string]int64{}}, nil
}

type testServer struct {
	router   *Router
	projects *memProjects
	errLog   *apperrors.ErrorLogger
}

func newTestServer(t *testing.T, ready ReadyFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	retry := apperrors.RetryOptions{MaxAttempts: 1}

	progress := &memProgress{docs: map[string]*model.UserProgress{}}
	projects := &memProjects{projects: map[string]*model.Project{}, progress: progress}
	users := &memUsers{users: map[string]*model.User{}}
	errLog := apperrors.NewErrorLogger(10, log)
	errs := handler.NewErrorWriter(errLog)

	h := Handlers{
		Auth:            handler.NewAuthHandler(service.NewAuthService(users, testSecret, time.Hour), errs, log),
		Projects:        handler.NewProjectHandler(service.NewProjectService(projects, retry, log), errs),
		Progress:        handler.NewProgressHandler(service.NewProgressService(projects, progress, retry, log), errs),
		Insights:        handler.NewInsightHandler(service.NewInsightService(projects, progress, nil, retry, log), errs),
		Exports:         handler.NewExportHandler(service.NewExportService(projects, progress, export.NewExporter(nil), memAnalytics{}, retry, log), errs),
		Recommendations: handler.NewRecommendationHandler(service.NewRecommendationService(), errs),
		Templates:       handler.NewTemplateHandler(service.NewTemplateService(template.NewRegistry()), errs),
		Analytics:       handler.NewAnalyticsHandler(service.NewAnalyticsService(memAnalytics{}), errs),
		Admin:           handler.NewAdminHandler(nil, errLog, errs, log),
	}
	return &testServer{router: NewRouter(h, testSecret, ready, log), projects: projects, errLog: errLog}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) createProject(t *testing.T, tok string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/projects", tok, map[string]any{"name": "Rocket", "industry": "saas"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p model.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return errors.New("db down") })

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(TraceHeader))

	w = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceHeader, "trace-123")
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(TraceHeader))
}

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/projects", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, nil)
	creds := map[string]string{"email": "founder@example.com", "password": "correct-horse"}

	w := s.do(t, http.MethodPost, "/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/register", "", creds)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	tok, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, tok)

	w = s.do(t, http.MethodGet, "/projects", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "founder@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)
	id := s.createProject(t, tok)

	w := s.do(t, http.MethodGet, "/projects/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/projects/"+id+"/phases/validation", tok, map[string]any{"targetAudience": "indie devs"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "indie devs", s.projects.projects[id].Data["validation"]["targetAudience"])

	w = s.do(t, http.MethodPut, "/projects/"+id+"/phases/astrology", tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/projects", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do(t, http.MethodDelete, "/projects/"+id, tok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/projects/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProject_ValidationDetails(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)

	w := s.do(t, http.MethodPost, "/projects", tok, map[string]any{"name": "X", "stage": "unicorn"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	details, _ := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "invalid_stage", details[0].(map[string]any)["code"])
}

func TestOwnershipIsEnforced(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createProject(t, token(t, "owner", rbac.RoleUser))

	w := s.do(t, http.MethodGet, "/projects/"+id, token(t, "intruder", rbac.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/projects/"+id+"/insights", token(t, "intruder", rbac.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/projects/"+id, token(t, "root", rbac.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProgressAndInsights(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)
	id := s.createProject(t, tok)

	w := s.do(t, http.MethodGet, "/projects/"+id+"/progress", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["progress"])

	w = s.do(t, http.MethodPut, "/projects/"+id+"/progress/validation/steps/market-research", tok,
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/projects/"+id+"/progress/validation/steps/market-research", tok,
		map[string]any{"status": "finished"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/projects/"+id+"/progress/astrology/steps/market-research", tok,
		map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/projects/"+id+"/insights", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "readinessScore")
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)
	id := s.createProject(t, tok)

	w := s.do(t, http.MethodGet, "/projects/"+id+"/export?format=docx", tok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unsupported export format: docx", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/projects/"+id+"/export?format=CSV", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	assert.Contains(t, w.Body.String(), "Phase,Step,Status,Completion Date,Notes")

	w = s.do(t, http.MethodGet, "/projects/"+id+"/export?stakeholder=maybe", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/projects/missing/export", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecommendations(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)

	w := s.do(t, http.MethodPost, "/recommendations/technologies", tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/recommendations/technologies", tok, map[string]any{
		"requirements": map[string]any{"category": "frontend"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recs, _ := decode(t, w)["recommendations"].([]any)
	assert.NotEmpty(t, recs)

	for _, kind := range []string{"architecture", "performance", "security", "cost"} {
		w = s.do(t, http.MethodPost, "/recommendations/"+kind, tok, map[string]any{})
		assert.Equal(t, http.StatusOK, w.Code, kind)
	}

	w = s.do(t, http.MethodPost, "/recommendations/cost", tok, map[string]any{"budget": "gigantic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)

	w := s.do(t, http.MethodGet, "/templates?category=marketing", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/templates/nope", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/templates/elevator-pitch/render", tok, map[string]any{"values": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/templates/elevator-pitch/render", tok, map[string]any{"values": map[string]string{
		"product": "Launchpad", "audience": "founders", "benefit": "ships faster",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["content"], "For founders, Launchpad ships faster.")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, nil)
	s.errLog.Log(errors.New("boom"), nil)

	w := s.do(t, http.MethodGet, "/admin/errors", token(t, "u1", rbac.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := token(t, "root", rbac.RoleAdmin)
	w = s.do(t, http.MethodGet, "/admin/errors", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do(t, http.MethodPost, "/admin/errors/1/resolve", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/admin/errors?unresolved=true", admin, nil)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	w = s.do(t, http.MethodPost, "/admin/errors/99/resolve", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerErrorsAreClassifiedAndLogged(t *testing.T) {
	s := newTestServer(t, nil)
	tok := token(t, "u1", rbac.RoleUser)
	s.projects.getErr = apperrors.Persistence("get project", errors.New("connection reset by peer"))

	w := s.do(t, http.MethodGet, "/projects/p1", tok, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Your changes could not be saved.", body["error"])
	assert.Equal(t, "HIGH", body["severity"])
	assert.NotContains(t, w.Body.String(), "connection reset")

	entries := s.errLog.Entries()
	require.Len(t, entries, 1)
	assert.EqualValues(t, entries[0].ID, body["errorId"])
	assert.Equal(t, "/projects/:id", entries[0].Context["path"])
}
