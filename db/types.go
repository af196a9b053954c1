package db

import (
	"encoding/json"
	"time"
)

// User represents a user from the database.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
// Example: "2024-03-07T15:04:05Z"
type User struct {
	ID    string
	Email string
	// Non empty password means password authentication is active.
	// Password is empty for passwordless methods like oauth2 and otp over
	// email.
	Password  string
	FirstName string
	LastName  string
	Avatar    string
	// GoogleID is the Google subject id, empty unless the account is
	// linked to a Google login.
	GoogleID string
	Verified bool
	Created  time.Time
	Updated  time.Time
}

// OtpCode is a one-time email code. Only the bcrypt hash of the code is
// stored, never the plaintext.
type OtpCode struct {
	ID        string
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	Verified  bool
	Created   time.Time
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	Date         time.Time
	Status       string
	ReminderSent bool
	Created      time.Time
	Updated      time.Time
}

type Report struct {
	ID          string
	UserID      string
	Title       string
	Description string
	ReportType  string
	FileURL     string
	ReportDate  time.Time
	Created     time.Time
	Updated     time.Time
}

type Medication struct {
	ID                string
	Name              string
	Description       string
	Dosage            string
	SideEffects       string
	Indications       string
	Contraindications string
	Created           time.Time
	Updated           time.Time
}

type ChatSession struct {
	ID      string
	UserID  string
	Title   string
	Created time.Time
	Updated time.Time
}

// Chat message roles, matching the wire format of the assistant API.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	Created   time.Time
}

// Job represents a job in the processing queue
type Job struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ScheduledFor time.Time       `json:"scheduled_for"`
	LockedAt     time.Time       `json:"locked_at,omitempty"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Recurrent    bool            `json:"recurrent"`
	Interval     time.Duration   `json:"interval"`
}

// Pagination selects a page of results. Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
