package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/storage"
	"github.com/templui/calldesk/internal/validation"
)

const (
	uploadPrefix  = "uploads"
	uploadURLPath = "/uploads/"
)

var (
	ErrInvalidFilename = errors.New("invalid filename")
)

// Download is either a stream of the stored bytes or, for backends that can
// sign links, a URL to redirect to.
type Download struct {
	Reader      io.ReadCloser
	RedirectURL string
}

type AttachmentService struct {
	commentRepo    repository.CommentRepository
	attachmentRepo repository.AttachmentRepository
	storage        storage.Storage
}

func NewAttachmentService(commentRepo repository.CommentRepository, attachmentRepo repository.AttachmentRepository, storage storage.Storage) *AttachmentService {
	return &AttachmentService{
		commentRepo:    commentRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
	}
}

// StoredName builds the on-disk name: <field>-<unix millis>-<random><ext>.
func StoredName(fieldName, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%d%s", fieldName, now.UnixMilli(), rand.IntN(1e9), ext)
}

// Upload stores a file for a comment owned by userID and records it.
// Nothing is written when validation or the ownership check fails, and the
// stored file is removed again if the record cannot be created.
func (s *AttachmentService) Upload(userID, commentID, fieldName string, file multipart.File, header *multipart.FileHeader) (*model.Attachment, error) {
	err := validation.ValidateAttachment(header)
	if err != nil {
		if errors.Is(err, validation.ErrFileTooLarge) {
			return nil, err
		}
		return nil, invalidInput(err)
	}

	_, err = s.commentRepo.ByID(userID, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	mimeType, err := validation.DetectMimeType(file, header)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filename := StoredName(fieldName, header.Filename, now)
	storagePath := path.Join(uploadPrefix, filename)

	err = s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	attachment := &model.Attachment{
		ID:          uuid.New().String(),
		CommentID:   commentID,
		FileName:    header.Filename,
		FileSize:    header.Size,
		FileType:    mimeType,
		FileURL:     uploadURLPath + filename,
		StoragePath: storagePath,
		CreatedAt:   now,
	}

	err = s.attachmentRepo.Create(attachment)
	if err != nil {
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	return attachment, nil
}

func (s *AttachmentService) Attachments(userID, commentID string) ([]*model.Attachment, error) {
	_, err := s.commentRepo.ByID(userID, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	attachments, err := s.attachmentRepo.Attachments(commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	return attachments, nil
}

// Delete removes the record first and the file second, so a failed file removal
// leaves an orphaned file but never a record pointing at nothing.
func (s *AttachmentService) Delete(userID, attachmentID string) error {
	attachment, err := s.attachmentRepo.ByID(userID, attachmentID)
	if err != nil {
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	err = s.attachmentRepo.Delete(attachment.ID)
	if err != nil {
		return fmt.Errorf("failed to delete attachment record: %w", err)
	}

	delErr := s.storage.Delete(attachment.StoragePath)
	if delErr != nil {
		slog.Warn("failed to delete attachment file", "attachment_id", attachment.ID, "storage_path", attachment.StoragePath, "error", delErr)
	}

	return nil
}

// Download looks an upload up by its stored file name. Only the base name is
// used, so "../" segments cannot reach outside the upload prefix.
func (s *AttachmentService) Download(filename string) (*Download, error) {
	name := path.Base(filepath.ToSlash(filename))
	if name == "." || name == "/" || name == ".." || name == "" {
		return nil, ErrInvalidFilename
	}
	storagePath := path.Join(uploadPrefix, name)

	linker, ok := s.storage.(storage.Linker)
	if ok {
		url, err := linker.DownloadURL(storagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to sign download: %w", err)
		}
		return &Download{RedirectURL: url}, nil
	}

	reader, err := s.storage.Open(storagePath)
	if err != nil {
		return nil, err
	}
	return &Download{Reader: reader}, nil
}
