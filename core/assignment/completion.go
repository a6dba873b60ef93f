package assignment

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Per-user completion states in Stats details.
const (
	CompletionDone    = "COMPLETED"
	CompletionPending = "PENDING"
)

// Completion records that a user marked an assignment done. At most one row
// exists per (user, assignment) pair; toggling deletes it again.
type Completion struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AssignmentID string    `json:"assignment_id"`
	CompletedAt  time.Time `json:"completed_at"` // UTC
}

// UserStat is one audience member's line in an assignment's stats.
type UserStat struct {
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	CompletedAt null.Time `json:"completed_at"`
}

// Stats aggregates completion progress over an assignment's resolved audience.
type Stats struct {
	AssignmentID    string     `json:"assignment_id"`
	AssignmentTitle string     `json:"assignment_title"`
	TotalAssigned   int        `json:"total_assigned"`
	TotalCompleted  int        `json:"total_completed"`
	CompletionRate  float64    `json:"completion_rate"`
	Details         []UserStat `json:"details"`
}
