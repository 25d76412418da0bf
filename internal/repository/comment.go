package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/calldesk/internal/model"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByID(userID, commentID string) (*model.Comment, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comments (id, call_id, user_id, text, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		comment.ID,
		comment.CallID,
		comment.UserID,
		comment.Text,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	return err
}

// ByID returns the comment only if it sits on a call owned by userID.
func (r *commentRepository) ByID(userID, commentID string) (*model.Comment, error) {
	comment := &model.Comment{}
	query := `
		SELECT cm.*
		FROM comments cm
		JOIN calls c ON cm.call_id = c.id
		WHERE cm.id = $1 AND c.user_id = $2
	`

	err := r.db.Get(comment, query, commentID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}

	return comment, err
}
