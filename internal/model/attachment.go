package model

import (
	"time"
)

// MaxAttachmentSize is the upload limit for a single attachment (10 MiB).
const MaxAttachmentSize = 10 << 20

type Attachment struct {
	ID          string    `db:"id" json:"id"`
	CommentID   string    `db:"comment_id" json:"comment_id"`
	FileName    string    `db:"file_name" json:"file_name"` // Original name as uploaded
	FileSize    int64     `db:"file_size" json:"file_size"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileURL     string    `db:"file_url" json:"file_url"`
	StoragePath string    `db:"storage_path" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
