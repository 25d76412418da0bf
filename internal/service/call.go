package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/storage"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
)

// CreateCallInput carries the fields a caller may set when logging a call.
type CreateCallInput struct {
	CallerName      string
	CallerNumber    string
	PersonToContact string
	OperatorName    string
	Priority        string
	Note            string
	FollowUpDate    *time.Time
}

type CallService struct {
	callRepo repository.CallRepository
	storage  storage.Storage
	now      func() time.Time
}

func NewCallService(callRepo repository.CallRepository, storage storage.Storage) *CallService {
	return &CallService{
		callRepo: callRepo,
		storage:  storage,
		now:      time.Now,
	}
}

// Calls returns every call of the user, newest first, with comment history.
func (s *CallService) Calls(userID string) ([]*model.Call, error) {
	calls, err := s.callRepo.CallsWithComments(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	return calls, nil
}

func (s *CallService) Create(userID string, in CreateCallInput) (*model.Call, error) {
	in.CallerName = strings.TrimSpace(in.CallerName)
	in.CallerNumber = strings.TrimSpace(in.CallerNumber)
	in.PersonToContact = strings.TrimSpace(in.PersonToContact)
	in.OperatorName = strings.TrimSpace(in.OperatorName)

	if in.CallerName == "" || in.CallerNumber == "" || in.PersonToContact == "" || in.OperatorName == "" || in.Priority == "" {
		return nil, inputErrorf("Caller name, caller number, person to contact, operator name and priority are required")
	}
	if !model.ValidPriority(in.Priority) {
		return nil, inputErrorf("Invalid priority")
	}

	call := &model.Call{
		ID:              uuid.New().String(),
		UserID:          userID,
		CallerName:      in.CallerName,
		CallerNumber:    in.CallerNumber,
		PersonToContact: in.PersonToContact,
		OperatorName:    in.OperatorName,
		Priority:        in.Priority,
		Status:          model.CallStatusActive,
		FollowUpDate:    in.FollowUpDate,
		CreatedAt:       s.now(),
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		call.Note = &note
	}

	err := s.callRepo.Create(call)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	call.CommentHistory = []*model.Comment{}
	return call, nil
}

// UpdateStatus moves a call to any of the known statuses. Followed Up, Not
// Received Call and Completed stamp their timestamp every time they are set.
func (s *CallService) UpdateStatus(userID, callID, status string) (*model.Call, error) {
	if !model.ValidCallStatus(status) {
		return nil, ErrInvalidStatus
	}

	call, err := s.callRepo.UpdateStatus(userID, callID, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return call, nil
}

// Delete removes the call with its comments and attachment rows, then reclaims
// the attachment files. File removal is best effort.
func (s *CallService) Delete(userID, callID string) error {
	_, err := s.callRepo.ByID(userID, callID)
	if err != nil {
		return fmt.Errorf("failed to get call: %w", err)
	}

	paths, err := s.callRepo.AttachmentPaths(userID, callID)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	err = s.callRepo.Delete(userID, callID)
	if err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}

	for _, path := range paths {
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Warn("failed to delete attachment file", "call_id", callID, "storage_path", path, "error", delErr)
		}
	}

	return nil
}

func (s *CallService) Stats(userID string) (*model.CallStats, error) {
	stats, err := s.callRepo.Stats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get call stats: %w", err)
	}
	return stats, nil
}
