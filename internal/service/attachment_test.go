package service

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/storage"
	"github.com/templui/calldesk/internal/validation"
)

func (f *fixture) newComment(t *testing.T, userID string) *model.Comment {
	t.Helper()
	call := f.newCall(t, userID)
	comment, err := f.comment.AddComment(userID, call.ID, "comment")
	require.NoError(t, err)
	return comment
}

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	name := StoredName("file", "Report.PDF", now)
	assert.Regexp(t, regexp.MustCompile(`^file-1700000000000-\d{1,9}\.pdf$`), name)

	assert.Regexp(t, regexp.MustCompile(`^file-1700000000000-\d{1,9}$`), StoredName("file", "noext", now))
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	attachment, err := f.attachment.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", attachment.FileName)
	assert.Equal(t, int64(5), attachment.FileSize)
	assert.Equal(t, "text/plain", attachment.FileType)
	assert.True(t, strings.HasPrefix(attachment.FileURL, "/uploads/file-"))
	assert.Equal(t, "uploads/"+strings.TrimPrefix(attachment.FileURL, "/uploads/"), attachment.StoragePath)
	assert.Equal(t, "hello", readStored(t, f.storage, attachment.StoragePath))

	list, err := f.attachment.Attachments(alice.ID, comment.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attachment.ID, list[0].ID)
}

func TestUploadSniffsMissingContentType(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	file, header := multipartFile(t, "image.bin", "", png)
	attachment, err := f.attachment.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)
	assert.Equal(t, "image/png", attachment.FileType)
	assert.Equal(t, string(png), readStored(t, f.storage, attachment.StoragePath), "sniffing must not consume the file")
}

func TestUploadTooLargeWritesNothing(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	big := bytes.Repeat([]byte("x"), model.MaxAttachmentSize+1)
	file, header := multipartFile(t, "big.bin", "application/octet-stream", big)

	_, err := f.attachment.Upload(alice.ID, comment.ID, "file", file, header)
	assert.ErrorIs(t, err, validation.ErrFileTooLarge)
	assert.Zero(t, f.count(t, "attachments"))
	assert.Empty(t, f.storedFiles(t))
}

func TestUploadChecksOwnershipBeforeWriting(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	comment := f.newComment(t, alice.ID)

	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	_, err := f.attachment.Upload(bob.ID, comment.ID, "file", file, header)
	assert.ErrorIs(t, err, repository.ErrCommentNotFound)
	assert.Empty(t, f.storedFiles(t))
}

type failingAttachmentRepo struct {
	repository.AttachmentRepository
}

func (failingAttachmentRepo) Create(*model.Attachment) error {
	return errors.New("disk full")
}

func TestUploadRemovesFileWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	svc := NewAttachmentService(f.comments, failingAttachmentRepo{f.attachments}, f.storage)
	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))

	_, err := svc.Upload(alice.ID, comment.ID, "file", file, header)
	require.Error(t, err)
	assert.Empty(t, f.storedFiles(t))
}

// brokenDeleteStorage stores files but can never delete them.
type brokenDeleteStorage struct {
	storage.Storage
}

func (brokenDeleteStorage) Delete(string) error {
	return errors.New("permission denied")
}

func TestDeleteRemovesRowThenFile(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	comment := f.newComment(t, alice.ID)

	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	attachment, err := f.attachment.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)

	err = f.attachment.Delete(bob.ID, attachment.ID)
	assert.ErrorIs(t, err, repository.ErrAttachmentNotFound)
	assert.Equal(t, 1, f.count(t, "attachments"))

	require.NoError(t, f.attachment.Delete(alice.ID, attachment.ID))
	assert.Zero(t, f.count(t, "attachments"))
	assert.Empty(t, f.storedFiles(t))
}

func TestDeleteKeepsNoRowWhenFileRemovalFails(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	svc := NewAttachmentService(f.comments, f.attachments, brokenDeleteStorage{f.storage})
	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	attachment, err := svc.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(alice.ID, attachment.ID))
	assert.Zero(t, f.count(t, "attachments"))
	assert.Len(t, f.storedFiles(t), 1, "orphaned file is tolerated")
}

func TestAttachmentsRequireOwnedComment(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	comment := f.newComment(t, alice.ID)

	_, err := f.attachment.Attachments(bob.ID, comment.ID)
	assert.ErrorIs(t, err, repository.ErrCommentNotFound)
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)

	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	attachment, err := f.attachment.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)
	name := strings.TrimPrefix(attachment.FileURL, "/uploads/")

	d, err := f.attachment.Download(name)
	require.NoError(t, err)
	b, err := io.ReadAll(d.Reader)
	require.NoError(t, err)
	_ = d.Reader.Close()
	assert.Equal(t, "hello", string(b))

	// Directory parts are dropped, so traversal resolves inside uploads/
	d, err = f.attachment.Download("../../uploads/" + name)
	require.NoError(t, err)
	_ = d.Reader.Close()

	_, err = f.attachment.Download("missing.txt")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, err = f.attachment.Download("..")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

// linkingStorage hands out links the way a bucket backend does, refusing keys it does not hold.
type linkingStorage struct {
	*storage.LocalStorage
}

func (s linkingStorage) DownloadURL(p string) (string, error) {
	r, err := s.Open(p)
	if err != nil {
		return "", err
	}
	_ = r.Close()
	return "https://bucket.example.com/" + p + "?sig=1", nil
}

func TestDownloadWithLinkedStorage(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	comment := f.newComment(t, alice.ID)
	svc := NewAttachmentService(f.comments, f.attachments, linkingStorage{f.storage})

	file, header := multipartFile(t, "notes.txt", "text/plain", []byte("hello"))
	attachment, err := svc.Upload(alice.ID, comment.ID, "file", file, header)
	require.NoError(t, err)
	name := strings.TrimPrefix(attachment.FileURL, "/uploads/")

	d, err := svc.Download(name)
	require.NoError(t, err)
	assert.Nil(t, d.Reader)
	assert.Equal(t, "https://bucket.example.com/uploads/"+name+"?sig=1", d.RedirectURL)

	_, err = svc.Download("missing.txt")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
