package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func authedRequest(method, path, body string, user *db.User) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(withUser(req.Context(), user))
}

func TestCreateAppointmentHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created with default status",
			body:       `{"title":"Dentist","date":"2026-09-14T10:00:00Z"}`,
			wantStatus: http.StatusCreated,
			wantCode:   CodeOkCreated,
		},
		{
			name:       "missing title",
			body:       `{"date":"2026-09-14T10:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
		{
			name:       "missing date",
			body:       `{"title":"Dentist"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
		{
			name:       "unknown status",
			body:       `{"title":"Dentist","date":"2026-09-14T10:00:00Z","status":"postponed"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var inserted db.Appointment
			mockDb := &mock.Db{
				CreateAppointmentFunc: func(a db.Appointment) (*db.Appointment, error) {
					inserted = a
					a.ID = "appt1"
					return &a, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			rr := httptest.NewRecorder()
			app.CreateAppointmentHandler(rr, authedRequest("POST", "/api/appointments", tc.body, user))

			assertResponse(t, rr, tc.wantStatus, tc.wantCode)

			if tc.wantStatus == http.StatusCreated {
				if inserted.UserID != user.ID {
					t.Errorf("appointment not owned by the caller: %q", inserted.UserID)
				}
				if inserted.Status != db.AppointmentScheduled {
					t.Errorf("default status not applied: %q", inserted.Status)
				}
			}
		})
	}
}

func TestAppointmentOwnership(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}
	foreign := &db.Appointment{ID: "appt9", UserID: "someone-else", Title: "X", Date: time.Now(), Status: db.AppointmentScheduled}
	owned := &db.Appointment{ID: "appt1", UserID: "user123", Title: "Dentist", Date: time.Now(), Status: db.AppointmentScheduled}

	testCases := []struct {
		name       string
		id         string
		row        *db.Appointment
		wantStatus int
		wantCode   string
	}{
		{"absent row is 404", "missing", nil, http.StatusNotFound, CodeErrorNotFound},
		{"foreign row is 403", "appt9", foreign, http.StatusForbidden, CodeErrorForbidden},
		{"owned row is returned", "appt1", owned, http.StatusOK, CodeOkFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetAppointmentByIdFunc: func(id string) (*db.Appointment, error) {
					return tc.row, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			req := authedRequest("GET", "/api/appointments/"+tc.id, "", user)
			req.SetPathValue("id", tc.id)
			rr := httptest.NewRecorder()

			app.GetAppointmentHandler(rr, req)
			assertResponse(t, rr, tc.wantStatus, tc.wantCode)
		})
	}
}

func TestListAppointmentsHandler_Pagination(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	var gotPagination db.Pagination
	mockDb := &mock.Db{
		ListAppointmentsFunc: func(userID string, p db.Pagination) ([]*db.Appointment, error) {
			gotPagination = p
			return []*db.Appointment{
				{ID: "a1", UserID: userID, Title: "One", Date: time.Now(), Status: db.AppointmentScheduled},
				{ID: "a2", UserID: userID, Title: "Two", Date: time.Now(), Status: db.AppointmentScheduled},
			}, nil
		},
		CountAppointmentsFunc: func(userID string) (int, error) {
			return 11, nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	rr := httptest.NewRecorder()
	app.ListAppointmentsHandler(rr, authedRequest("GET", "/api/appointments?page=2&limit=5", "", user))

	body := assertResponse(t, rr, http.StatusOK, CodeOkList)

	if gotPagination.Page != 2 || gotPagination.Limit != 5 {
		t.Errorf("pagination not forwarded: %+v", gotPagination)
	}

	meta, _ := body["meta"].(map[string]interface{})
	if meta == nil {
		t.Fatal("expected meta in list response")
	}
	if total, _ := meta["total"].(float64); total != 11 {
		t.Errorf("expected total 11, got %v", meta["total"])
	}
	if pages, _ := meta["totalPages"].(float64); pages != 3 {
		t.Errorf("expected totalPages 3, got %v", meta["totalPages"])
	}

	data, _ := body["data"].([]interface{})
	if len(data) != 2 {
		t.Errorf("expected 2 items, got %d", len(data))
	}
}

func TestUpdateAppointmentHandler_RescheduleResetsReminder(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	var updated db.Appointment
	mockDb := &mock.Db{
		GetAppointmentByIdFunc: func(id string) (*db.Appointment, error) {
			return &db.Appointment{
				ID: "appt1", UserID: "user123", Title: "Dentist",
				Date: time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC), Status: db.AppointmentScheduled,
				ReminderSent: true,
			}, nil
		},
		UpdateAppointmentFunc: func(a db.Appointment) (*db.Appointment, error) {
			updated = a
			return &a, nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	req := authedRequest("PATCH", "/api/appointments/appt1", `{"date":"2026-10-01T09:00:00Z"}`, user)
	req.SetPathValue("id", "appt1")
	rr := httptest.NewRecorder()

	app.UpdateAppointmentHandler(rr, req)
	assertResponse(t, rr, http.StatusOK, CodeOkUpdated)

	if updated.ReminderSent {
		t.Error("changing the date must re-arm the reminder")
	}
	if !updated.Date.Equal(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("date not updated: %v", updated.Date)
	}
	if updated.Title != "Dentist" {
		t.Errorf("unchanged fields must survive a partial update: %q", updated.Title)
	}
}

func TestDeleteAppointmentHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	deleted := ""
	mockDb := &mock.Db{
		GetAppointmentByIdFunc: func(id string) (*db.Appointment, error) {
			return &db.Appointment{ID: id, UserID: "user123", Title: "X", Date: time.Now(), Status: db.AppointmentScheduled}, nil
		},
		DeleteAppointmentFunc: func(id string) error {
			deleted = id
			return nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	req := authedRequest("DELETE", "/api/appointments/appt1", "", user)
	req.SetPathValue("id", "appt1")
	rr := httptest.NewRecorder()

	app.DeleteAppointmentHandler(rr, req)
	assertResponse(t, rr, http.StatusOK, CodeOkDeleted)

	if deleted != "appt1" {
		t.Errorf("wrong row deleted: %q", deleted)
	}
}
