package service

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/calldesk/internal/db/dbtest"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/storage"
)

type fixture struct {
	db          *sqlx.DB
	dir         string
	storage     *storage.LocalStorage
	users       repository.UserRepository
	calls       repository.CallRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository

	auth       *AuthService
	call       *CallService
	comment    *CommentService
	attachment *AttachmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := dbtest.New(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	f := &fixture{
		db:          database,
		dir:         dir,
		storage:     store,
		users:       repository.NewUserRepository(database),
		calls:       repository.NewCallRepository(database),
		comments:    repository.NewCommentRepository(database),
		attachments: repository.NewAttachmentRepository(database),
	}
	f.auth = NewAuthService(f.users, "test-secret", time.Hour)
	f.call = NewCallService(f.calls, store)
	f.comment = NewCommentService(f.calls, f.comments)
	f.attachment = NewAttachmentService(f.comments, f.attachments, store)
	return f
}

func (f *fixture) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, _, err := f.auth.Register(username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

func (f *fixture) newCall(t *testing.T, userID string) *model.Call {
	t.Helper()
	call, err := f.call.Create(userID, CreateCallInput{
		CallerName:      "Alice",
		CallerNumber:    "555-0100",
		PersonToContact: "Bob",
		OperatorName:    "Olga",
		Priority:        model.PriorityHigh,
	})
	require.NoError(t, err)
	return call
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.dir, "uploads"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

// multipartFile builds an uploaded file the way net/http hands it to handlers.
func multipartFile(t *testing.T, filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return file, header
}

func readStored(t *testing.T, s storage.Storage, path string) string {
	t.Helper()
	r, err := s.Open(path)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}
