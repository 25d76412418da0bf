package model

import (
	"time"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

const (
	CallStatusActive      = "Active"
	CallStatusPending     = "Pending"
	CallStatusFollowedUp  = "Followed Up"
	CallStatusNotReceived = "Not Received Call"
	CallStatusCompleted   = "Completed"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var CallStatuses = []string{
	CallStatusActive,
	CallStatusPending,
	CallStatusFollowedUp,
	CallStatusNotReceived,
	CallStatusCompleted,
}

func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

func ValidCallStatus(s string) bool {
	for _, v := range CallStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Call struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	CallerName      string     `db:"caller_name" json:"caller_name"`
	CallerNumber    string     `db:"caller_number" json:"caller_number"`
	PersonToContact string     `db:"person_to_contact" json:"person_to_contact"`
	OperatorName    string     `db:"operator_name" json:"operator_name"`
	Priority        string     `db:"priority" json:"priority"`
	Note            *string    `db:"note" json:"note"`
	Status          string     `db:"status" json:"status"`
	FollowUpDate    *time.Time `db:"follow_up_date" json:"follow_up_date"`
	FollowedUpAt    *time.Time `db:"followed_up_at" json:"followed_up_at"`
	NotReceivedAt   *time.Time `db:"not_received_at" json:"not_received_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	// Aggregated on list (not a column)
	CommentHistory []*Comment `db:"-" json:"comment_history"`
}

// CallStats holds per-status counts for one user's calls.
type CallStats struct {
	TotalCalls       int64 `db:"total_calls" json:"total_calls"`
	ActiveCalls      int64 `db:"active_calls" json:"active_calls"`
	PendingCalls     int64 `db:"pending_calls" json:"pending_calls"`
	FollowedUpCalls  int64 `db:"followed_up_calls" json:"followed_up_calls"`
	NotReceivedCalls int64 `db:"not_received_calls" json:"not_received_calls"`
	CompletedCalls   int64 `db:"completed_calls" json:"completed_calls"`
}
