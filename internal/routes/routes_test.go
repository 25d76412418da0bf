package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/calldesk/internal/app"
	"github.com/templui/calldesk/internal/config"
	"github.com/templui/calldesk/internal/db/dbtest"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/storage"
)

type harness struct {
	t         *testing.T
	server    *httptest.Server
	uploadDir string
}

func newHarness(t *testing.T, disableAuth bool) *harness {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		DisableAuth:    disableAuth,
		AuthRateLimit:  100,
		AuthRateWindow: time.Minute,
	}

	uploadDir := t.TempDir()
	local, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	a, err := app.Wire(cfg, dbtest.New(t), local)
	require.NoError(t, err)

	server := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(server.Close)

	return &harness{t: t, server: server, uploadDir: uploadDir}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (h *harness) do(method, path, token string, body any, out any) int {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) upload(path, token, filename string, content []byte, out any) int {
	h.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(h.t, err)
	_, err = part.Write(content)
	require.NoError(h.t, err)
	require.NoError(h.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer func() { _ = resp.Body.Close() }()

	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

type authBody struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (h *harness) register(username string) string {
	h.t.Helper()

	var out authBody
	status := h.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, &out)
	require.Equal(h.t, http.StatusCreated, status)
	require.NotEmpty(h.t, out.Token)
	return out.Token
}

func (h *harness) createCall(token string, body map[string]any) model.Call {
	h.t.Helper()

	var call model.Call
	status := h.do(http.MethodPost, "/api/calls", token, body, &call)
	require.Equal(h.t, http.StatusCreated, status)
	return call
}

func validCall() map[string]any {
	return map[string]any{
		"callerName":      "Jane Roe",
		"callerNumber":    "555-0100",
		"personToContact": "Dr. Smith",
		"operatorName":    "Op1",
		"priority":        "Urgent",
		"note":            "call back before noon",
		"followUpDate":    "2024-06-01",
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, false)

	var out map[string]string
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "", nil, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t, false)
	h.register("alice")

	var dup errorBody
	status := h.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret123",
	}, &dup)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username or email already exists", dup.Error)

	var login authBody
	status = h.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", login.User.Username)
	assert.Equal(t, "alice@example.com", login.User.Email)

	var bad errorBody
	status = h.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, &bad)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", bad.Error)

	var profile map[string]any
	status = h.do(http.MethodGet, "/api/users/profile", login.Token, nil, &profile)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password_hash")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t, false)

	var out errorBody
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/calls", "", nil, &out))
	assert.Equal(t, "Access denied. No token provided.", out.Error)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/calls", "not-a-jwt", nil, &out))
	assert.Equal(t, "Invalid token.", out.Error)
}

func TestCallLifecycle(t *testing.T) {
	h := newHarness(t, false)
	token := h.register("alice")

	var invalid errorBody
	status := h.do(http.MethodPost, "/api/calls", token, map[string]any{"callerName": "Jane"}, &invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Caller name, caller number, person to contact, operator name and priority are required", invalid.Error)

	call := h.createCall(token, validCall())
	assert.Equal(t, model.CallStatusActive, call.Status)
	require.NotNil(t, call.Note)
	assert.Equal(t, "call back before noon", *call.Note)
	require.NotNil(t, call.FollowUpDate)
	assert.Empty(t, call.CommentHistory)

	var comment model.Comment
	status = h.do(http.MethodPost, "/api/calls/"+call.ID+"/comments", token, map[string]string{"text": "left a voicemail"}, &comment)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, call.ID, comment.CallID)

	var emptyComment errorBody
	status = h.do(http.MethodPost, "/api/calls/"+call.ID+"/comments", token, map[string]string{"text": "  "}, &emptyComment)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Comment text is required", emptyComment.Error)

	var updated model.Call
	status = h.do(http.MethodPatch, "/api/calls/"+call.ID+"/status", token, map[string]string{"status": model.CallStatusCompleted}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.CallStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	var badStatus errorBody
	status = h.do(http.MethodPatch, "/api/calls/"+call.ID+"/status", token, map[string]string{"status": "Done"}, &badStatus)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", badStatus.Error)

	var calls []model.Call
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/calls", token, nil, &calls))
	require.Len(t, calls, 1)
	require.Len(t, calls[0].CommentHistory, 1)
	assert.Equal(t, "left a voicemail", calls[0].CommentHistory[0].Text)

	var stats model.CallStats
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/calls/stats", token, nil, &stats))
	assert.Equal(t, int64(1), stats.TotalCalls)
	assert.Equal(t, int64(1), stats.CompletedCalls)

	var deleted messageBody
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/calls/"+call.ID, token, nil, &deleted))
	assert.Equal(t, "Call deleted successfully", deleted.Message)

	var missing errorBody
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/calls/"+call.ID, token, nil, &missing))
	assert.Equal(t, "Call not found", missing.Error)
}

func TestCallsAreScopedToOwner(t *testing.T) {
	h := newHarness(t, false)
	alice := h.register("alice")
	bob := h.register("bob")

	call := h.createCall(alice, validCall())

	var calls []model.Call
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/calls", bob, nil, &calls))
	assert.Empty(t, calls)

	var out errorBody
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPatch, "/api/calls/"+call.ID+"/status", bob, map[string]string{"status": model.CallStatusPending}, &out))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/calls/"+call.ID+"/comments", bob, map[string]string{"text": "hi"}, &out))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/calls/"+call.ID, bob, nil, &out))
}

func TestAttachmentFlow(t *testing.T) {
	h := newHarness(t, false)
	token := h.register("alice")
	call := h.createCall(token, validCall())

	var comment model.Comment
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/calls/"+call.ID+"/comments", token, map[string]string{"text": "see notes"}, &comment))

	content := []byte("caller asked about invoice 42")
	var attachment model.Attachment
	status := h.upload("/api/attachments/"+comment.ID, token, "Notes.TXT", content, &attachment)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Notes.TXT", attachment.FileName)
	assert.Equal(t, int64(len(content)), attachment.FileSize)
	assert.Regexp(t, `^/uploads/file-\d+-\d+\.txt$`, attachment.FileURL)

	resp, err := http.Get(h.server.URL + attachment.FileURL)
	require.NoError(t, err)
	served, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, content, served)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var listed []model.Attachment
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/attachments/comment/"+comment.ID, token, nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, attachment.ID, listed[0].ID)

	var missingComment errorBody
	status = h.upload("/api/attachments/unknown-comment", token, "a.txt", content, &missingComment)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Comment not found", missingComment.Error)

	var deleted messageBody
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/attachments/"+attachment.ID, token, nil, &deleted))
	assert.Equal(t, "Attachment deleted successfully", deleted.Message)

	var gone errorBody
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, attachment.FileURL, "", nil, &gone))
	assert.Equal(t, "File not found", gone.Error)
}

func TestUploadTooLarge(t *testing.T) {
	h := newHarness(t, false)
	token := h.register("alice")
	call := h.createCall(token, validCall())

	var comment model.Comment
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/calls/"+call.ID+"/comments", token, map[string]string{"text": "scan attached"}, &comment))

	for _, size := range []int{model.MaxAttachmentSize + 1, 12 << 20} {
		var out errorBody
		status := h.upload("/api/attachments/"+comment.ID, token, "scan.pdf", bytes.Repeat([]byte("x"), size), &out)
		assert.Equal(t, http.StatusBadRequest, status, "size %d", size)
		assert.Equal(t, "File too large", out.Error, "size %d", size)
	}

	var listed []model.Attachment
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/attachments/comment/"+comment.ID, token, nil, &listed))
	assert.Empty(t, listed)

	var stored []string
	err := filepath.WalkDir(h.uploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			stored = append(stored, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUploadWithoutFile(t *testing.T) {
	h := newHarness(t, false)
	token := h.register("alice")

	var out errorBody
	status := h.do(http.MethodPost, "/api/attachments/some-comment", token, map[string]string{"file": "nope"}, &out)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", out.Error)
}

func TestLookupLists(t *testing.T) {
	h := newHarness(t, false)
	token := h.register("alice")

	var entry model.LookupEntry
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/users/contact-persons", token, map[string]string{"name": "Dr. Smith"}, &entry))
	assert.Equal(t, "Dr. Smith", entry.Name)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/users/operators", token, map[string]string{"name": "Op1"}, &entry))

	var dup errorBody
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/users/contact-persons", token, map[string]string{"name": "Dr. Smith"}, &dup))
	assert.Equal(t, "Contact person already exists", dup.Error)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/users/operators", token, map[string]string{"name": "Op1"}, &dup))
	assert.Equal(t, "Operator already exists", dup.Error)

	var options model.DropdownOptions
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/users/dropdown-options", token, nil, &options))
	assert.Equal(t, []string{"Dr. Smith"}, options.ContactPersons)
	assert.Equal(t, []string{"Op1"}, options.Operators)

	var deleted messageBody
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/users/contact-persons/Dr.%20Smith", token, nil, &deleted))
	assert.Equal(t, "Contact person deleted successfully", deleted.Message)

	var missing errorBody
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/users/operators/Nobody", token, nil, &missing))
	assert.Equal(t, "Operator not found", missing.Error)
}

func TestDisabledAuthRunsAsPublicUser(t *testing.T) {
	h := newHarness(t, true)

	var profile map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/users/profile", "", nil, &profile))
	assert.Equal(t, model.PublicUsername, profile["username"])

	call := h.createCall("", validCall())

	var calls []model.Call
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/calls", "", nil, &calls))
	require.Len(t, calls, 1)
	assert.Equal(t, call.ID, calls[0].ID)
}
