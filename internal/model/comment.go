package model

import (
	"time"
)

type Comment struct {
	ID        string    `db:"id" json:"id"`
	CallID    string    `db:"call_id" json:"call_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Attachments []*Attachment `db:"-" json:"attachments"`
}
