package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/calldesk/internal/ctxkeys"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/service"
)

type CallHandler struct {
	callService    *service.CallService
	commentService *service.CommentService
}

func NewCallHandler(callService *service.CallService, commentService *service.CommentService) *CallHandler {
	return &CallHandler{
		callService:    callService,
		commentService: commentService,
	}
}

type createCallRequest struct {
	CallerName      string `json:"callerName"`
	CallerNumber    string `json:"callerNumber"`
	PersonToContact string `json:"personToContact"`
	OperatorName    string `json:"operatorName"`
	Priority        string `json:"priority"`
	Note            string `json:"note"`
	FollowUpDate    string `json:"followUpDate"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// parseFollowUpDate accepts RFC 3339 timestamps and plain dates.
func parseFollowUpDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse(time.DateOnly, value)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	calls, err := h.callService.Calls(identity.ID)
	if err != nil {
		slog.Error("failed to fetch calls", "error", err, "user_id", identity.ID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch calls")
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

func (h *CallHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req createCallRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	followUp, err := parseFollowUpDate(req.FollowUpDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid follow-up date")
		return
	}

	call, err := h.callService.Create(identity.ID, service.CreateCallInput{
		CallerName:      req.CallerName,
		CallerNumber:    req.CallerNumber,
		PersonToContact: req.PersonToContact,
		OperatorName:    req.OperatorName,
		Priority:        req.Priority,
		Note:            req.Note,
		FollowUpDate:    followUp,
	})
	if err != nil {
		if msg, ok := service.AsInputError(err); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("failed to create call", "error", err, "user_id", identity.ID)
		writeError(w, http.StatusInternalServerError, "Failed to create call")
		return
	}

	writeJSON(w, http.StatusCreated, call)
}

func (h *CallHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	callID := r.PathValue("id")

	var req statusRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	call, err := h.callService.UpdateStatus(identity.ID, callID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "Invalid status")
		case errors.Is(err, repository.ErrCallNotFound):
			writeError(w, http.StatusNotFound, "Call not found")
		default:
			slog.Error("failed to update call status", "error", err, "user_id", identity.ID, "call_id", callID)
			writeError(w, http.StatusInternalServerError, "Failed to update call status")
		}
		return
	}

	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	callID := r.PathValue("id")

	err := h.callService.Delete(identity.ID, callID)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			writeError(w, http.StatusNotFound, "Call not found")
			return
		}
		slog.Error("failed to delete call", "error", err, "user_id", identity.ID, "call_id", callID)
		writeError(w, http.StatusInternalServerError, "Failed to delete call")
		return
	}

	writeMessage(w, "Call deleted successfully")
}

func (h *CallHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())
	callID := r.PathValue("id")

	var req commentRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(identity.ID, callID, req.Text)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			writeError(w, http.StatusNotFound, "Call not found")
			return
		}
		if msg, ok := service.AsInputError(err); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("failed to add comment", "error", err, "user_id", identity.ID, "call_id", callID)
		writeError(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CallHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	stats, err := h.callService.Stats(identity.ID)
	if err != nil {
		slog.Error("failed to fetch statistics", "error", err, "user_id", identity.ID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
