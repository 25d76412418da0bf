package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/calldesk/internal/model"
)

var (
	ErrCallNotFound = errors.New("call not found")
)

// statusStampColumns maps a status to the column stamped each time it is set.
var statusStampColumns = map[string]string{
	model.CallStatusFollowedUp:  "followed_up_at",
	model.CallStatusNotReceived: "not_received_at",
	model.CallStatusCompleted:   "completed_at",
}

type CallRepository interface {
	Create(call *model.Call) error
	ByID(userID, callID string) (*model.Call, error)
	CallsWithComments(userID string) ([]*model.Call, error)
	UpdateStatus(userID, callID, status string, at time.Time) (*model.Call, error)
	AttachmentPaths(userID, callID string) ([]string, error)
	Delete(userID, callID string) error
	Stats(userID string) (*model.CallStats, error)
}

type callRepository struct {
	db *sqlx.DB
}

func NewCallRepository(db *sqlx.DB) CallRepository {
	return &callRepository{db: db}
}

func (r *callRepository) Create(call *model.Call) error {
	query := `INSERT INTO calls (id, user_id, caller_name, caller_number, person_to_contact, operator_name, priority, note, status, follow_up_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		call.ID,
		call.UserID,
		call.CallerName,
		call.CallerNumber,
		call.PersonToContact,
		call.OperatorName,
		call.Priority,
		call.Note,
		call.Status,
		call.FollowUpDate,
		call.CreatedAt,
	)

	return err
}

func (r *callRepository) ByID(userID, callID string) (*model.Call, error) {
	call := &model.Call{}
	query := `SELECT * FROM calls WHERE id = $1 AND user_id = $2`

	err := r.db.Get(call, query, callID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrCallNotFound
	}

	return call, err
}

// callRow is one row of the calls ⟕ comments ⟕ attachments join.
type callRow struct {
	model.Call

	CommentID        sql.NullString `db:"comment_id"`
	CommentUserID    sql.NullString `db:"comment_user_id"`
	CommentText      sql.NullString `db:"comment_text"`
	CommentCreatedAt sql.NullTime   `db:"comment_created_at"`
	CommentUpdatedAt sql.NullTime   `db:"comment_updated_at"`

	AttachmentID        sql.NullString `db:"attachment_id"`
	AttachmentFileName  sql.NullString `db:"attachment_file_name"`
	AttachmentFileSize  sql.NullInt64  `db:"attachment_file_size"`
	AttachmentFileType  sql.NullString `db:"attachment_file_type"`
	AttachmentFileURL   sql.NullString `db:"attachment_file_url"`
	AttachmentCreatedAt sql.NullTime   `db:"attachment_created_at"`
}

// CallsWithComments returns the user's calls newest first, each with its comment
// history (oldest first) and the attachments of every comment, in a single read.
func (r *callRepository) CallsWithComments(userID string) ([]*model.Call, error) {
	query := `
		SELECT c.*,
		       cm.id AS comment_id,
		       cm.user_id AS comment_user_id,
		       cm.text AS comment_text,
		       cm.created_at AS comment_created_at,
		       cm.updated_at AS comment_updated_at,
		       a.id AS attachment_id,
		       a.file_name AS attachment_file_name,
		       a.file_size AS attachment_file_size,
		       a.file_type AS attachment_file_type,
		       a.file_url AS attachment_file_url,
		       a.created_at AS attachment_created_at
		FROM calls c
		LEFT JOIN comments cm ON cm.call_id = c.id
		LEFT JOIN attachments a ON a.comment_id = cm.id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id, cm.created_at ASC, cm.id, a.created_at ASC, a.id
	`

	rows, err := r.db.Queryx(query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	calls := []*model.Call{}
	callsByID := map[string]*model.Call{}
	commentsByID := map[string]*model.Comment{}

	for rows.Next() {
		var row callRow
		err = rows.StructScan(&row)
		if err != nil {
			return nil, err
		}

		call, ok := callsByID[row.ID]
		if !ok {
			call = &row.Call
			call.CommentHistory = []*model.Comment{}
			callsByID[call.ID] = call
			calls = append(calls, call)
		}

		if !row.CommentID.Valid {
			continue
		}

		comment, ok := commentsByID[row.CommentID.String]
		if !ok {
			comment = &model.Comment{
				ID:          row.CommentID.String,
				CallID:      call.ID,
				UserID:      row.CommentUserID.String,
				Text:        row.CommentText.String,
				CreatedAt:   row.CommentCreatedAt.Time,
				UpdatedAt:   row.CommentUpdatedAt.Time,
				Attachments: []*model.Attachment{},
			}
			commentsByID[comment.ID] = comment
			call.CommentHistory = append(call.CommentHistory, comment)
		}

		if !row.AttachmentID.Valid {
			continue
		}

		comment.Attachments = append(comment.Attachments, &model.Attachment{
			ID:        row.AttachmentID.String,
			CommentID: comment.ID,
			FileName:  row.AttachmentFileName.String,
			FileSize:  row.AttachmentFileSize.Int64,
			FileType:  row.AttachmentFileType.String,
			FileURL:   row.AttachmentFileURL.String,
			CreatedAt: row.AttachmentCreatedAt.Time,
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return calls, nil
}

// UpdateStatus sets the status and, for Followed Up / Not Received Call / Completed,
// stamps that status's timestamp column. Re-setting a status re-stamps it.
func (r *callRepository) UpdateStatus(userID, callID, status string, at time.Time) (*model.Call, error) {
	call := &model.Call{}

	var err error
	column, ok := statusStampColumns[status]
	if ok {
		query := `UPDATE calls SET status = $1, ` + column + ` = $2 WHERE id = $3 AND user_id = $4 RETURNING *`
		err = r.db.Get(call, query, status, at, callID, userID)
	} else {
		query := `UPDATE calls SET status = $1 WHERE id = $2 AND user_id = $3 RETURNING *`
		err = r.db.Get(call, query, status, callID, userID)
	}

	if err == sql.ErrNoRows {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, err
	}

	return call, nil
}

// AttachmentPaths lists the storage paths of every attachment under the call.
func (r *callRepository) AttachmentPaths(userID, callID string) ([]string, error) {
	paths := []string{}
	query := `
		SELECT a.storage_path
		FROM attachments a
		JOIN comments cm ON a.comment_id = cm.id
		JOIN calls c ON cm.call_id = c.id
		WHERE c.id = $1 AND c.user_id = $2
	`

	err := r.db.Select(&paths, query, callID, userID)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// Delete removes the call; comments and attachment rows go with it (ON DELETE CASCADE).
func (r *callRepository) Delete(userID, callID string) error {
	query := `DELETE FROM calls WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, callID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCallNotFound
	}

	return nil
}

func (r *callRepository) Stats(userID string) (*model.CallStats, error) {
	stats := &model.CallStats{}
	query := `
		SELECT
			COUNT(*) AS total_calls,
			COUNT(CASE WHEN status = 'Active' THEN 1 END) AS active_calls,
			COUNT(CASE WHEN status = 'Pending' THEN 1 END) AS pending_calls,
			COUNT(CASE WHEN status = 'Followed Up' THEN 1 END) AS followed_up_calls,
			COUNT(CASE WHEN status = 'Not Received Call' THEN 1 END) AS not_received_calls,
			COUNT(CASE WHEN status = 'Completed' THEN 1 END) AS completed_calls
		FROM calls
		WHERE user_id = $1
	`

	err := r.db.Get(stats, query, userID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
