package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/calldesk/internal/model"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
)

type AttachmentRepository interface {
	Create(attachment *model.Attachment) error
	ByID(userID, attachmentID string) (*model.Attachment, error)
	Attachments(commentID string) ([]*model.Attachment, error)
	Delete(attachmentID string) error
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *model.Attachment) error {
	query := `INSERT INTO attachments (id, comment_id, file_name, file_size, file_type, file_url, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		attachment.ID,
		attachment.CommentID,
		attachment.FileName,
		attachment.FileSize,
		attachment.FileType,
		attachment.FileURL,
		attachment.StoragePath,
		attachment.CreatedAt,
	)

	return err
}

// ByID resolves ownership through attachment -> comment -> call -> user.
func (r *attachmentRepository) ByID(userID, attachmentID string) (*model.Attachment, error) {
	attachment := &model.Attachment{}
	query := `
		SELECT a.*
		FROM attachments a
		JOIN comments cm ON a.comment_id = cm.id
		JOIN calls c ON cm.call_id = c.id
		WHERE a.id = $1 AND c.user_id = $2
	`

	err := r.db.Get(attachment, query, attachmentID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrAttachmentNotFound
	}

	return attachment, err
}

// Attachments lists a comment's attachments; callers check comment ownership first.
func (r *attachmentRepository) Attachments(commentID string) ([]*model.Attachment, error) {
	attachments := []*model.Attachment{}
	query := `SELECT * FROM attachments WHERE comment_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&attachments, query, commentID)
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

func (r *attachmentRepository) Delete(attachmentID string) error {
	query := `DELETE FROM attachments WHERE id = $1`
	result, err := r.db.Exec(query, attachmentID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrAttachmentNotFound
	}

	return nil
}
