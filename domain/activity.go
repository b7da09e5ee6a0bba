package domain

import "time"

// Activity actions recorded in the journal.
const (
	ActivityCreated   = "created"
	ActivityUpdated   = "updated"
	ActivityDeleted   = "deleted"
	ActivityCompleted = "completed"
	ActivityReopened  = "reopened"
)

// ActivityEntry is one line of a user's task mutation journal.
type ActivityEntry struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner"`
	TaskID     string    `json:"task_id"`
	Action     string    `json:"action"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
