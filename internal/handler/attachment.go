package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/templui/calldesk/internal/ctxkeys"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/service"
	"github.com/templui/calldesk/internal/storage"
	"github.com/templui/calldesk/internal/validation"
)

const uploadField = "file"

// multipartOverhead leaves room for part headers and boundaries around the file.
const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	commentID := r.PathValue("commentId")

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxAttachmentSize+multipartOverhead)

	err := r.ParseMultipartForm(model.MaxAttachmentSize)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	attachment, err := h.attachmentService.Upload(identity.ID, commentID, uploadField, file, header)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrFileTooLarge):
			writeError(w, http.StatusBadRequest, "File too large")
		case errors.Is(err, repository.ErrCommentNotFound):
			writeError(w, http.StatusNotFound, "Comment not found")
		default:
			if msg, ok := service.AsInputError(err); ok {
				writeError(w, http.StatusBadRequest, msg)
				return
			}
			slog.Error("failed to upload attachment", "error", err, "user_id", identity.ID, "comment_id", commentID)
			writeError(w, http.StatusInternalServerError, "Failed to upload attachment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	commentID := r.PathValue("commentId")

	attachments, err := h.attachmentService.Attachments(identity.ID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		slog.Error("failed to fetch attachments", "error", err, "user_id", identity.ID, "comment_id", commentID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch attachments")
		return
	}

	writeJSON(w, http.StatusOK, attachments)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	attachmentID := r.PathValue("id")

	err := h.attachmentService.Delete(identity.ID, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			writeError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		slog.Error("failed to delete attachment", "error", err, "user_id", identity.ID, "attachment_id", attachmentID)
		writeError(w, http.StatusInternalServerError, "Failed to delete attachment")
		return
	}

	writeMessage(w, "Attachment deleted successfully")
}

// Serve streams an uploaded file by its stored name. It is reachable without
// a token; the random stored name is the only protection.
func (h *AttachmentHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	download, err := h.attachmentService.Download(filename)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, service.ErrInvalidFilename) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		slog.Error("failed to serve upload", "error", err, "filename", filename)
		writeError(w, http.StatusInternalServerError, "Failed to fetch file")
		return
	}

	if download.RedirectURL != "" {
		http.Redirect(w, r, download.RedirectURL, http.StatusFound)
		return
	}
	defer func() { _ = download.Reader.Close() }()

	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	_, err = io.Copy(w, download.Reader)
	if err != nil {
		slog.Warn("failed to stream upload", "error", err, "filename", filename)
	}
}
