package model

import (
	"time"
)

// PublicUsername is the shared identity used when authentication is disabled.
const PublicUsername = "public"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is the caller resolved by the auth gate.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
