package db

import "time"

// DbAuth defines the user persistence operations needed by authentication.
type DbAuth interface {
	// GetUserByEmail retrieves a user by email. Returns nil, nil when no
	// matching record exists; error only on database failure.
	GetUserByEmail(email string) (*User, error)

	// GetUserById retrieves a user by id. Returns nil, nil when absent.
	GetUserById(id string) (*User, error)

	// GetUserByGoogleId retrieves a user by its Google subject id.
	// Returns nil, nil when absent.
	GetUserByGoogleId(googleID string) (*User, error)

	// CreateUser inserts a new user. Returns ErrConstraintUnique when a
	// user with the same email already exists.
	CreateUser(user User) (*User, error)

	// CreateUserWithOauth2 inserts a new user or, when the email already
	// exists, backfills google_id and marks the account verified.
	CreateUserWithOauth2(user User) (*User, error)

	// VerifyEmail marks the user as verified.
	VerifyEmail(userID string) error

	// UpdateUser updates the mutable profile fields (first name, last
	// name, avatar) and returns the stored row.
	UpdateUser(user User) (*User, error)

	// UpdateAvatar sets the avatar URL for a user.
	UpdateAvatar(userID string, url string) error
}

// DbOtp defines persistence for email one-time codes.
type DbOtp interface {
	// CreateOtp inserts a new code row.
	CreateOtp(otp OtpCode) (*OtpCode, error)

	// GetLatestOtp returns the newest code row for the email with the
	// given verified state, ordered by creation time. Returns nil, nil
	// when absent.
	GetLatestOtp(email string, verified bool) (*OtpCode, error)

	// MarkOtpVerified flips the verified flag on a code row.
	MarkOtpVerified(id string) error

	// DeleteUnverifiedOtps removes all unverified code rows for an email.
	DeleteUnverifiedOtps(email string) error

	// DeleteOtps removes all code rows for an email.
	DeleteOtps(email string) error

	// DeleteExpiredOtps removes code rows that expired before the given
	// time and returns the number of rows removed.
	DeleteExpiredOtps(before time.Time) (int64, error)
}

// DbAppointments defines persistence for user appointments.
type DbAppointments interface {
	CreateAppointment(a Appointment) (*Appointment, error)

	// GetAppointmentById returns the row regardless of owner so callers
	// can distinguish absent from foreign. Returns nil, nil when absent.
	GetAppointmentById(id string) (*Appointment, error)

	ListAppointments(userID string, p Pagination) ([]*Appointment, error)
	CountAppointments(userID string) (int, error)
	UpdateAppointment(a Appointment) (*Appointment, error)
	DeleteAppointment(id string) error

	// ListDueReminders returns appointments scheduled within [from, to)
	// whose reminder has not been sent yet.
	ListDueReminders(from, to time.Time) ([]*Appointment, error)
	MarkReminderSent(id string) error
}

// DbReports defines persistence for patient reports.
type DbReports interface {
	CreateReport(r Report) (*Report, error)

	// GetReportById returns nil, nil when absent.
	GetReportById(id string) (*Report, error)

	ListReports(userID string, p Pagination) ([]*Report, error)
	CountReports(userID string) (int, error)
	UpdateReport(r Report) (*Report, error)
	DeleteReport(id string) error
}

// DbPharmacy defines persistence for the medication catalog.
type DbPharmacy interface {
	CreateMedication(m Medication) (*Medication, error)

	// GetMedicationById returns nil, nil when absent.
	GetMedicationById(id string) (*Medication, error)

	ListMedications(p Pagination) ([]*Medication, error)
	CountMedications() (int, error)

	// SearchMedications matches the query against name and description.
	SearchMedications(query string, p Pagination) ([]*Medication, error)
	CountMedicationSearch(query string) (int, error)

	UpdateMedication(m Medication) (*Medication, error)
	DeleteMedication(id string) error
}

// DbChat defines persistence for assistant chat sessions and messages.
type DbChat interface {
	CreateChatSession(s ChatSession) (*ChatSession, error)

	// GetChatSessionById returns nil, nil when absent.
	GetChatSessionById(id string) (*ChatSession, error)

	ListChatSessions(userID string, p Pagination) ([]*ChatSession, error)
	CountChatSessions(userID string) (int, error)

	// DeleteChatSession removes the session and its messages.
	DeleteChatSession(id string) error

	// TouchChatSession bumps the session's updated timestamp.
	TouchChatSession(id string) error

	CreateChatMessage(m ChatMessage) (*ChatMessage, error)

	// ListChatMessages returns up to limit of the most recent messages in
	// a session, oldest first.
	ListChatMessages(sessionID string, limit int) ([]*ChatMessage, error)
}

// DbQueue defines the job queue operations used by the scheduler.
type DbQueue interface {
	// InsertJob adds a new job to the queue.
	InsertJob(job Job) error

	// Claim locks and returns up to limit runnable jobs, marking them as
	// processing and incrementing their attempt counter.
	Claim(limit int) ([]*Job, error)

	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
}

// DbApp is an interface combining the required DB roles for the application.
// The concrete DB implementation (e.g. *zombiezen.Db) must satisfy this
// interface.
type DbApp interface {
	DbAuth
	DbOtp
	DbAppointments
	DbReports
	DbPharmacy
	DbChat
	DbQueue
}
