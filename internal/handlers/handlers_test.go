package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workplane-dev/workplane/internal/auth"
	"github.com/workplane-dev/workplane/internal/blob"
	"github.com/workplane-dev/workplane/internal/handlers"
	"github.com/workplane-dev/workplane/internal/mail"
	"github.com/workplane-dev/workplane/internal/router"
	"github.com/workplane-dev/workplane/internal/service"
	"github.com/workplane-dev/workplane/internal/store/memory"
)

type env struct {
	t      *testing.T
	engine *gin.Engine
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)

	st := memory.New()
	log := zerolog.Nop()
	svc := service.New(st, &mail.Nop{Log: log}, log)
	mgr := auth.NewManager("handlers-test-secret")

	files, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	h := handlers.New(svc, st, mgr, files, "", log)
	return &env{t: t, engine: router.New(h, mgr, st, []string{"http://localhost:5173"})}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// register creates an account and returns the session token issued in the
// response cookie.
func (e *env) register(name, email string) string {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "correct horse battery",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c.Value
		}
	}
	e.t.Fatal("register response carries no token cookie")
	return ""
}

func (e *env) createWorkplace(token, name string) string {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/workplaces", token, gin.H{"name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](e.t, w)["id"].(string)
}

// join accepts the invitation for workplaceID on behalf of token's user and
// returns the resulting membership ID.
func (e *env) join(token, workplaceID string) string {
	e.t.Helper()

	w := e.do(http.MethodGet, "/api/workplaces/"+workplaceID+"/invitation", token, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	membership := decode[map[string]any](e.t, w)["membership"].(map[string]any)
	return membership["id"].(string)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterLoginMe(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")

	w := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Imposter",
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decode[map[string]string](t, w)["error"])

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "not the password",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email or password", decode[map[string]string](t, w)["error"])

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "Ada@Example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[map[string]map[string]any](t, w)["user"]
	assert.Equal(t, "Ada", user["name"])
	assert.Equal(t, "ada@example.com", user["email"])

	w = e.do(http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkplaceLifecycle(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")
	id := e.createWorkplace(token, "Platform")

	w := e.do(http.MethodGet, "/api/workplaces", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 1)

	w = e.do(http.MethodGet, "/api/workplaces/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	workplace := decode[map[string]any](t, w)
	assert.Equal(t, "Platform", workplace["name"])
	assert.Equal(t, []any{"Backlog", "In Progress", "Done"}, workplace["states"])

	w = e.do(http.MethodPatch, "/api/workplaces/"+id, token, gin.H{"name": "Platform Core"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Platform Core", decode[map[string]any](t, w)["name"])

	// Non-members cannot see the workplace at all.
	stranger := e.register("Mallory", "mallory@example.com")
	w = e.do(http.MethodGet, "/api/workplaces/"+id, stranger, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, "/api/workplaces/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodGet, "/api/workplaces/"+id, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidAndUnknownWorkplaceIDs(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")

	w := e.do(http.MethodGet, "/api/workplaces/not-a-uuid", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/workplaces/0195b7a0-0000-7000-8000-000000000000", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/workplaces", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGate(t *testing.T) {
	e := newEnv(t)

	owner := e.register("Ada", "ada@example.com")
	member := e.register("Grace", "grace@example.com")

	id := e.createWorkplace(owner, "Platform")
	membershipID := e.join(member, id)

	// Joining grants MEMBER, which is not enough for workplace settings.
	w := e.do(http.MethodPatch, "/api/workplaces/"+id, member, gin.H{"name": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/sprints", member, gin.H{
		"name":       "Sprint 1",
		"start_date": "2024-01-01T00:00:00Z",
		"end_date":   "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// MEMBER can still create issues.
	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/issues", member, gin.H{"title": "Fix login"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Demoted to GUEST, the same call is rejected.
	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/users/"+membershipID, owner, gin.H{"role": "GUEST"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/issues", member, gin.H{"title": "Another"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// GUEST reads still work.
	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues", member, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Promoted to ADMIN, workplace settings open up.
	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/users/"+membershipID, owner, gin.H{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPatch, "/api/workplaces/"+id, member, gin.H{"description": "now co-owned"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Unknown roles are rejected outright.
	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/users/"+membershipID, owner, gin.H{"role": "OWNER"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemberListAndRemove(t *testing.T) {
	e := newEnv(t)

	owner := e.register("Ada", "ada@example.com")
	member := e.register("Grace", "grace@example.com")

	id := e.createWorkplace(owner, "Platform")
	membershipID := e.join(member, id)

	w := e.do(http.MethodGet, "/api/workplaces/"+id+"/users", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 2)

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/users?prefix_email=gra", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[[]map[string]any](t, w)
	require.Len(t, members, 1)
	assert.Equal(t, "grace@example.com", members[0]["user"].(map[string]any)["email"])

	w = e.do(http.MethodDelete, "/api/workplaces/"+id+"/users/"+membershipID, owner, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The removed member lost access.
	w = e.do(http.MethodGet, "/api/workplaces/"+id, member, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSprintOverlapOverHTTP(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")
	id := e.createWorkplace(token, "Platform")

	w := e.do(http.MethodPost, "/api/workplaces/"+id+"/sprints", token, gin.H{
		"name":       "Sprint 1",
		"start_date": "2024-01-01T00:00:00Z",
		"end_date":   "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sprintID := decode[map[string]any](t, w)["id"].(string)

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/sprints", token, gin.H{
		"name":       "Overlapping",
		"start_date": "2024-01-05T00:00:00Z",
		"end_date":   "2024-01-15T00:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "overlap")

	// End dates are exclusive, so a sprint may start the day another ends.
	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/sprints", token, gin.H{
		"name":       "Sprint 2",
		"start_date": "2024-01-10T00:00:00Z",
		"end_date":   "2024-01-20T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/sprints/"+sprintID, token, gin.H{
		"end_date": "2024-01-12T00:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/sprints/"+sprintID, token, gin.H{
		"name": "Kickoff",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Kickoff", decode[map[string]any](t, w)["name"])
}

func TestIssueAndCommentFlow(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")
	id := e.createWorkplace(token, "Platform")

	w := e.do(http.MethodPost, "/api/workplaces/"+id+"/sprints", token, gin.H{
		"name":       "Sprint 1",
		"start_date": "2024-01-01T00:00:00Z",
		"end_date":   "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	sprintID := decode[map[string]any](t, w)["id"].(string)

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/issues", token, gin.H{
		"title":     "Fix login",
		"sprint_id": sprintID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	planned := decode[map[string]any](t, w)
	issueID := planned["id"].(string)
	assert.Equal(t, "Backlog", planned["state"])

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/issues", token, gin.H{"title": "Write docs"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 2)

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues?sprint_id="+sprintID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inSprint := decode[[]map[string]any](t, w)
	require.Len(t, inSprint, 1)
	assert.Equal(t, "Fix login", inSprint[0]["title"])

	// Unknown states are rejected against the workplace's configured set.
	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/issues/"+issueID, token, gin.H{"state": "Shipped"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/issues/"+issueID, token, gin.H{"state": "In Progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Empty sprint_id moves the issue back to the backlog.
	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/issues/"+issueID, token, gin.H{"sprint_id": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues?sprint_id="+sprintID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]map[string]any](t, w))

	w = e.do(http.MethodPost, "/api/workplaces/"+id+"/issues/"+issueID+"/comments", token, gin.H{"text": "On it"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	commentID := decode[map[string]any](t, w)["id"].(string)

	w = e.do(http.MethodPatch, "/api/workplaces/"+id+"/issues/"+issueID+"/comments/"+commentID, token, gin.H{"text": "Done"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Done", decode[map[string]any](t, w)["text"])

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues/"+issueID+"/comments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]map[string]any](t, w), 1)

	// Deleting the issue takes its comments with it.
	w = e.do(http.MethodDelete, "/api/workplaces/"+id+"/issues/"+issueID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodGet, "/api/workplaces/"+id+"/issues/"+issueID+"/comments", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestImplementerEndpoints(t *testing.T) {
	e := newEnv(t)

	owner := e.register("Ada", "ada@example.com")
	member := e.register("Grace", "grace@example.com")

	id := e.createWorkplace(owner, "Platform")
	membershipID := e.join(member, id)

	w := e.do(http.MethodPost, "/api/workplaces/"+id+"/issues", owner, gin.H{"title": "Fix login"})
	require.Equal(t, http.StatusCreated, w.Code)
	issueID := decode[map[string]any](t, w)["id"].(string)

	w = e.do(http.MethodPut, "/api/workplaces/"+id+"/issues/"+issueID+"/implementers/"+membershipID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	issue := decode[map[string]any](t, w)
	require.Len(t, issue["implementers"], 1)

	w = e.do(http.MethodDelete, "/api/workplaces/"+id+"/issues/"+issueID+"/implementers/"+membershipID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	issue = decode[map[string]any](t, w)
	require.Empty(t, issue["implementers"])
}

func TestUpdateAccount(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")

	w := e.do(http.MethodPatch, "/api/auth/me", token, gin.H{"name": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada Lovelace", decode[map[string]any](t, w)["user"].(map[string]any)["name"])

	w = e.do(http.MethodPatch, "/api/auth/me", token, gin.H{
		"new_password": "even more secret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is required to change password", decode[map[string]string](t, w)["error"])

	w = e.do(http.MethodPatch, "/api/auth/me", token, gin.H{
		"current_password": "wrong",
		"new_password":     "even more secret",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, "/api/auth/me", token, gin.H{
		"current_password": "correct horse battery",
		"new_password":     "even more secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "even more secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")
	id := e.createWorkplace(token, "Platform")

	w := e.do(http.MethodDelete, "/api/auth/me", token, gin.H{"password": "wrong"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Incorrect password", decode[map[string]string](t, w)["error"])

	w = e.do(http.MethodDelete, "/api/auth/me", token, gin.H{"password": "correct horse battery"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The token no longer resolves to a user.
	w = e.do(http.MethodGet, "/api/workplaces/"+id, token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFileUploadDownload(t *testing.T) {
	e := newEnv(t)

	token := e.register("Ada", "ada@example.com")
	id := e.createWorkplace(token, "Platform")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "sprint planning notes")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/workplaces/"+id+"/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	url := decode[map[string]string](t, w)["url"]
	assert.Equal(t, fmt.Sprintf("/workplaces/%s/file/notes.txt", id), url)

	dl := e.do(http.MethodGet, "/api/workplaces/"+id+"/file/notes.txt", token, nil)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "sprint planning notes", dl.Body.String())

	dl = e.do(http.MethodGet, "/api/workplaces/"+id+"/file/missing.txt", token, nil)
	require.Equal(t, http.StatusNotFound, dl.Code)
}
