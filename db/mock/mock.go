package mock

import (
	"time"

	"github.com/pamcare/pamcare/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc       func(email string) (*db.User, error)
	GetUserByIdFunc          func(id string) (*db.User, error)
	GetUserByGoogleIdFunc    func(googleID string) (*db.User, error)
	CreateUserFunc           func(user db.User) (*db.User, error)
	CreateUserWithOauth2Func func(user db.User) (*db.User, error)
	VerifyEmailFunc          func(userID string) error
	UpdateUserFunc           func(user db.User) (*db.User, error)
	UpdateAvatarFunc         func(userID string, url string) error

	// --- Mock DbOtp Methods ---
	CreateOtpFunc            func(otp db.OtpCode) (*db.OtpCode, error)
	GetLatestOtpFunc         func(email string, verified bool) (*db.OtpCode, error)
	MarkOtpVerifiedFunc      func(id string) error
	DeleteUnverifiedOtpsFunc func(email string) error
	DeleteOtpsFunc           func(email string) error
	DeleteExpiredOtpsFunc    func(before time.Time) (int64, error)

	// --- Mock DbAppointments Methods ---
	CreateAppointmentFunc  func(a db.Appointment) (*db.Appointment, error)
	GetAppointmentByIdFunc func(id string) (*db.Appointment, error)
	ListAppointmentsFunc   func(userID string, p db.Pagination) ([]*db.Appointment, error)
	CountAppointmentsFunc  func(userID string) (int, error)
	UpdateAppointmentFunc  func(a db.Appointment) (*db.Appointment, error)
	DeleteAppointmentFunc  func(id string) error
	ListDueRemindersFunc   func(from, to time.Time) ([]*db.Appointment, error)
	MarkReminderSentFunc   func(id string) error

	// --- Mock DbReports Methods ---
	CreateReportFunc  func(r db.Report) (*db.Report, error)
	GetReportByIdFunc func(id string) (*db.Report, error)
	ListReportsFunc   func(userID string, p db.Pagination) ([]*db.Report, error)
	CountReportsFunc  func(userID string) (int, error)
	UpdateReportFunc  func(r db.Report) (*db.Report, error)
	DeleteReportFunc  func(id string) error

	// --- Mock DbPharmacy Methods ---
	CreateMedicationFunc      func(m db.Medication) (*db.Medication, error)
	GetMedicationByIdFunc     func(id string) (*db.Medication, error)
	ListMedicationsFunc       func(p db.Pagination) ([]*db.Medication, error)
	CountMedicationsFunc      func() (int, error)
	SearchMedicationsFunc     func(query string, p db.Pagination) ([]*db.Medication, error)
	CountMedicationSearchFunc func(query string) (int, error)
	UpdateMedicationFunc      func(m db.Medication) (*db.Medication, error)
	DeleteMedicationFunc      func(id string) error

	// --- Mock DbChat Methods ---
	CreateChatSessionFunc  func(s db.ChatSession) (*db.ChatSession, error)
	GetChatSessionByIdFunc func(id string) (*db.ChatSession, error)
	ListChatSessionsFunc   func(userID string, p db.Pagination) ([]*db.ChatSession, error)
	CountChatSessionsFunc  func(userID string) (int, error)
	DeleteChatSessionFunc  func(id string) error
	TouchChatSessionFunc   func(id string) error
	CreateChatMessageFunc  func(m db.ChatMessage) (*db.ChatMessage, error)
	ListChatMessagesFunc   func(sessionID string, limit int) ([]*db.ChatMessage, error)

	// --- Mock DbQueue Methods ---
	InsertJobFunc     func(job db.Job) error
	ClaimFunc         func(limit int) ([]*db.Job, error)
	MarkCompletedFunc func(jobID int64) error
	MarkFailedFunc    func(jobID int64, errMsg string) error
}

// --- Implement DbAuth ---

func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserByGoogleId(googleID string) (*db.User, error) {
	if m.GetUserByGoogleIdFunc != nil {
		return m.GetUserByGoogleIdFunc(googleID)
	}
	return nil, nil // Default: Not found
}

func (m *Db) CreateUser(user db.User) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(user)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-user-id"
	return &user, nil
}

func (m *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	if m.CreateUserWithOauth2Func != nil {
		return m.CreateUserWithOauth2Func(user)
	}
	user.ID = "mock-oauth-user-id"
	user.Verified = true
	return &user, nil
}

func (m *Db) VerifyEmail(userID string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(userID)
	}
	return nil
}

func (m *Db) UpdateUser(user db.User) (*db.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(user)
	}
	return &user, nil
}

func (m *Db) UpdateAvatar(userID string, url string) error {
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(userID, url)
	}
	return nil
}

// --- Implement DbOtp ---

func (m *Db) CreateOtp(otp db.OtpCode) (*db.OtpCode, error) {
	if m.CreateOtpFunc != nil {
		return m.CreateOtpFunc(otp)
	}
	otp.ID = "mock-otp-id"
	return &otp, nil
}

func (m *Db) GetLatestOtp(email string, verified bool) (*db.OtpCode, error) {
	if m.GetLatestOtpFunc != nil {
		return m.GetLatestOtpFunc(email, verified)
	}
	return nil, nil // Default: Not found
}

func (m *Db) MarkOtpVerified(id string) error {
	if m.MarkOtpVerifiedFunc != nil {
		return m.MarkOtpVerifiedFunc(id)
	}
	return nil
}

func (m *Db) DeleteUnverifiedOtps(email string) error {
	if m.DeleteUnverifiedOtpsFunc != nil {
		return m.DeleteUnverifiedOtpsFunc(email)
	}
	return nil
}

func (m *Db) DeleteOtps(email string) error {
	if m.DeleteOtpsFunc != nil {
		return m.DeleteOtpsFunc(email)
	}
	return nil
}

func (m *Db) DeleteExpiredOtps(before time.Time) (int64, error) {
	if m.DeleteExpiredOtpsFunc != nil {
		return m.DeleteExpiredOtpsFunc(before)
	}
	return 0, nil
}

// --- Implement DbAppointments ---

func (m *Db) CreateAppointment(a db.Appointment) (*db.Appointment, error) {
	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(a)
	}
	a.ID = "mock-appointment-id"
	return &a, nil
}

func (m *Db) GetAppointmentById(id string) (*db.Appointment, error) {
	if m.GetAppointmentByIdFunc != nil {
		return m.GetAppointmentByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) ListAppointments(userID string, p db.Pagination) ([]*db.Appointment, error) {
	if m.ListAppointmentsFunc != nil {
		return m.ListAppointmentsFunc(userID, p)
	}
	return []*db.Appointment{}, nil
}

func (m *Db) CountAppointments(userID string) (int, error) {
	if m.CountAppointmentsFunc != nil {
		return m.CountAppointmentsFunc(userID)
	}
	return 0, nil
}

func (m *Db) UpdateAppointment(a db.Appointment) (*db.Appointment, error) {
	if m.UpdateAppointmentFunc != nil {
		return m.UpdateAppointmentFunc(a)
	}
	return &a, nil
}

func (m *Db) DeleteAppointment(id string) error {
	if m.DeleteAppointmentFunc != nil {
		return m.DeleteAppointmentFunc(id)
	}
	return nil
}

func (m *Db) ListDueReminders(from, to time.Time) ([]*db.Appointment, error) {
	if m.ListDueRemindersFunc != nil {
		return m.ListDueRemindersFunc(from, to)
	}
	return []*db.Appointment{}, nil
}

func (m *Db) MarkReminderSent(id string) error {
	if m.MarkReminderSentFunc != nil {
		return m.MarkReminderSentFunc(id)
	}
	return nil
}

// --- Implement DbReports ---

func (m *Db) CreateReport(r db.Report) (*db.Report, error) {
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(r)
	}
	r.ID = "mock-report-id"
	return &r, nil
}

func (m *Db) GetReportById(id string) (*db.Report, error) {
	if m.GetReportByIdFunc != nil {
		return m.GetReportByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) ListReports(userID string, p db.Pagination) ([]*db.Report, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(userID, p)
	}
	return []*db.Report{}, nil
}

func (m *Db) CountReports(userID string) (int, error) {
	if m.CountReportsFunc != nil {
		return m.CountReportsFunc(userID)
	}
	return 0, nil
}

func (m *Db) UpdateReport(r db.Report) (*db.Report, error) {
	if m.UpdateReportFunc != nil {
		return m.UpdateReportFunc(r)
	}
	return &r, nil
}

func (m *Db) DeleteReport(id string) error {
	if m.DeleteReportFunc != nil {
		return m.DeleteReportFunc(id)
	}
	return nil
}

// --- Implement DbPharmacy ---

func (m *Db) CreateMedication(med db.Medication) (*db.Medication, error) {
	if m.CreateMedicationFunc != nil {
		return m.CreateMedicationFunc(med)
	}
	med.ID = "mock-medication-id"
	return &med, nil
}

func (m *Db) GetMedicationById(id string) (*db.Medication, error) {
	if m.GetMedicationByIdFunc != nil {
		return m.GetMedicationByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) ListMedications(p db.Pagination) ([]*db.Medication, error) {
	if m.ListMedicationsFunc != nil {
		return m.ListMedicationsFunc(p)
	}
	return []*db.Medication{}, nil
}

func (m *Db) CountMedications() (int, error) {
	if m.CountMedicationsFunc != nil {
		return m.CountMedicationsFunc()
	}
	return 0, nil
}

func (m *Db) SearchMedications(query string, p db.Pagination) ([]*db.Medication, error) {
	if m.SearchMedicationsFunc != nil {
		return m.SearchMedicationsFunc(query, p)
	}
	return []*db.Medication{}, nil
}

func (m *Db) CountMedicationSearch(query string) (int, error) {
	if m.CountMedicationSearchFunc != nil {
		return m.CountMedicationSearchFunc(query)
	}
	return 0, nil
}

func (m *Db) UpdateMedication(med db.Medication) (*db.Medication, error) {
	if m.UpdateMedicationFunc != nil {
		return m.UpdateMedicationFunc(med)
	}
	return &med, nil
}

func (m *Db) DeleteMedication(id string) error {
	if m.DeleteMedicationFunc != nil {
		return m.DeleteMedicationFunc(id)
	}
	return nil
}

// --- Implement DbChat ---

func (m *Db) CreateChatSession(s db.ChatSession) (*db.ChatSession, error) {
	if m.CreateChatSessionFunc != nil {
		return m.CreateChatSessionFunc(s)
	}
	s.ID = "mock-session-id"
	return &s, nil
}

func (m *Db) GetChatSessionById(id string) (*db.ChatSession, error) {
	if m.GetChatSessionByIdFunc != nil {
		return m.GetChatSessionByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) ListChatSessions(userID string, p db.Pagination) ([]*db.ChatSession, error) {
	if m.ListChatSessionsFunc != nil {
		return m.ListChatSessionsFunc(userID, p)
	}
	return []*db.ChatSession{}, nil
}

func (m *Db) CountChatSessions(userID string) (int, error) {
	if m.CountChatSessionsFunc != nil {
		return m.CountChatSessionsFunc(userID)
	}
	return 0, nil
}

func (m *Db) DeleteChatSession(id string) error {
	if m.DeleteChatSessionFunc != nil {
		return m.DeleteChatSessionFunc(id)
	}
	return nil
}

func (m *Db) TouchChatSession(id string) error {
	if m.TouchChatSessionFunc != nil {
		return m.TouchChatSessionFunc(id)
	}
	return nil
}

func (m *Db) CreateChatMessage(msg db.ChatMessage) (*db.ChatMessage, error) {
	if m.CreateChatMessageFunc != nil {
		return m.CreateChatMessageFunc(msg)
	}
	msg.ID = "mock-message-id"
	return &msg, nil
}

func (m *Db) ListChatMessages(sessionID string, limit int) ([]*db.ChatMessage, error) {
	if m.ListChatMessagesFunc != nil {
		return m.ListChatMessagesFunc(sessionID, limit)
	}
	return []*db.ChatMessage{}, nil
}

// --- Implement DbQueue ---

func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil
}

func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil
}

func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil
}

func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil
}
