package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
)

type CommentService struct {
	callRepo    repository.CallRepository
	commentRepo repository.CommentRepository
}

func NewCommentService(callRepo repository.CallRepository, commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{
		callRepo:    callRepo,
		commentRepo: commentRepo,
	}
}

// AddComment appends a comment to an owned call. The text is stored as sent.
func (s *CommentService) AddComment(userID, callID, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, inputErrorf("Comment text is required")
	}

	_, err := s.callRepo.ByID(userID, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	now := time.Now()
	comment := &model.Comment{
		ID:          uuid.New().String(),
		CallID:      callID,
		UserID:      userID,
		Text:        text,
		CreatedAt:   now,
		UpdatedAt:   now,
		Attachments: []*model.Attachment{},
	}

	err = s.commentRepo.Create(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}
