package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pamcare/pamcare/db"
)

// appointmentResponse is the wire representation of an appointment.
type appointmentResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	ReminderSent bool      `json:"reminder_sent"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func toAppointmentResponse(a *db.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Date:         a.Date,
		Status:       a.Status,
		ReminderSent: a.ReminderSent,
		Created:      a.Created,
		Updated:      a.Updated,
	}
}

func validAppointmentStatus(s string) bool {
	switch s {
	case db.AppointmentScheduled, db.AppointmentCompleted, db.AppointmentCancelled:
		return true
	}
	return false
}

// ownedAppointment loads an appointment and enforces ownership: absent rows
// produce 404, rows owned by someone else 403. Returns nil after writing the
// error response.
func (a *App) ownedAppointment(w http.ResponseWriter, r *http.Request, userID string) *db.Appointment {
	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return nil
	}

	appt, err := a.DbAppointments().GetAppointmentById(id)
	if err != nil {
		a.Logger().Error("appointment lookup failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return nil
	}
	if appt == nil {
		writeJsonError(w, errorNotFound)
		return nil
	}
	if appt.UserID != userID {
		writeJsonError(w, errorForbidden)
		return nil
	}
	return appt
}

// CreateAppointmentHandler creates an appointment for the current user.
// Endpoint: POST /api/appointments
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Status      string    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Date.IsZero() {
		writeJsonError(w, errorMissingFields)
		return
	}
	if req.Status == "" {
		req.Status = db.AppointmentScheduled
	}
	if !validAppointmentStatus(req.Status) {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	appt, err := a.DbAppointments().CreateAppointment(db.Appointment{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Status:      req.Status,
	})
	if err != nil {
		a.Logger().Error("appointment insert failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusCreated,
			Code:    CodeOkCreated,
			Message: "Appointment created",
		},
		Data: toAppointmentResponse(appt),
	})
}

// ListAppointmentsHandler returns the current user's appointments, paginated.
// The page and the total count are independent reads and run concurrently.
// Endpoint: GET /api/appointments
// Authenticated: Yes
func (a *App) ListAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	p := paginationFromRequest(r)

	var (
		appts []*db.Appointment
		total int
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		appts, err = a.DbAppointments().ListAppointments(user.ID, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.DbAppointments().CountAppointments(user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Logger().Error("appointment list failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	items := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		items = append(items, toAppointmentResponse(appt))
	}

	writeJsonList(w, CodeOkList, "Appointments", items, ListMeta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetAppointmentHandler returns one appointment owned by the current user.
// Endpoint: GET /api/appointments/{id}
// Authenticated: Yes
func (a *App) GetAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	appt := a.ownedAppointment(w, r, user.ID)
	if appt == nil {
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkFound,
			Message: "Appointment",
		},
		Data: toAppointmentResponse(appt),
	})
}

// UpdateAppointmentHandler partially updates an appointment.
// Endpoint: PATCH /api/appointments/{id}
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	appt := a.ownedAppointment(w, r, user.ID)
	if appt == nil {
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Date        *time.Time `json:"date"`
		Status      *string    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Title != nil {
		appt.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		appt.Description = *req.Description
	}
	if req.Date != nil {
		appt.Date = *req.Date
		// A rescheduled appointment gets its reminder again.
		appt.ReminderSent = false
	}
	if req.Status != nil {
		appt.Status = *req.Status
	}
	if appt.Title == "" || appt.Date.IsZero() || !validAppointmentStatus(appt.Status) {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	stored, err := a.DbAppointments().UpdateAppointment(*appt)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		a.Logger().Error("appointment update failed", "error", err, "id", appt.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUpdated,
			Message: "Appointment updated",
		},
		Data: toAppointmentResponse(stored),
	})
}

// DeleteAppointmentHandler removes an appointment.
// Endpoint: DELETE /api/appointments/{id}
// Authenticated: Yes
func (a *App) DeleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	appt := a.ownedAppointment(w, r, user.ID)
	if appt == nil {
		return
	}

	if err := a.DbAppointments().DeleteAppointment(appt.ID); err != nil {
		a.Logger().Error("appointment delete failed", "error", err, "id", appt.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonOk(w, okDeleted)
}
