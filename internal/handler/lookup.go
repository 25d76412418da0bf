package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/calldesk/internal/ctxkeys"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/service"
)

// lookupMessages holds the user-facing wording for each lookup list.
type lookupMessages struct {
	exists    string
	notFound  string
	deleted   string
	addFailed string
	delFailed string
}

var lookupText = map[string]lookupMessages{
	model.LookupContactPerson: {
		exists:    "Contact person already exists",
		notFound:  "Contact person not found",
		deleted:   "Contact person deleted successfully",
		addFailed: "Failed to add contact person",
		delFailed: "Failed to delete contact person",
	},
	model.LookupOperator: {
		exists:    "Operator already exists",
		notFound:  "Operator not found",
		deleted:   "Operator deleted successfully",
		addFailed: "Failed to add operator",
		delFailed: "Failed to delete operator",
	},
}

type LookupHandler struct {
	lookupService *service.LookupService
}

func NewLookupHandler(lookupService *service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *LookupHandler) DropdownOptions(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	options, err := h.lookupService.DropdownOptions(identity.ID)
	if err != nil {
		slog.Error("failed to fetch dropdown options", "error", err, "user_id", identity.ID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch dropdown options")
		return
	}

	writeJSON(w, http.StatusOK, options)
}

// Add returns a handler that appends a name to the given lookup list.
func (h *LookupHandler) Add(kind string) http.HandlerFunc {
	text := lookupText[kind]

	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxkeys.Identity(r.Context())

		var req nameRequest
		err := decodeJSON(w, r, &req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		entry, err := h.lookupService.Add(kind, identity.ID, req.Name)
		if err != nil {
			if errors.Is(err, repository.ErrLookupExists) {
				writeError(w, http.StatusBadRequest, text.exists)
				return
			}
			if msg, ok := service.AsInputError(err); ok {
				writeError(w, http.StatusBadRequest, msg)
				return
			}
			slog.Error("failed to add lookup entry", "error", err, "kind", kind, "user_id", identity.ID)
			writeError(w, http.StatusInternalServerError, text.addFailed)
			return
		}

		writeJSON(w, http.StatusCreated, entry)
	}
}

// Delete returns a handler that removes the name in the {name} path segment.
func (h *LookupHandler) Delete(kind string) http.HandlerFunc {
	text := lookupText[kind]

	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxkeys.Identity(r.Context())
		name := r.PathValue("name")

		err := h.lookupService.Delete(kind, identity.ID, name)
		if err != nil {
			if errors.Is(err, repository.ErrLookupNotFound) {
				writeError(w, http.StatusNotFound, text.notFound)
				return
			}
			slog.Error("failed to delete lookup entry", "error", err, "kind", kind, "user_id", identity.ID)
			writeError(w, http.StatusInternalServerError, text.delFailed)
			return
		}

		writeMessage(w, text.deleted)
	}
}
