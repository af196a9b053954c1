package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func TestLoginHandler(t *testing.T) {
	hashed, _ := crypto.GenerateHash("password123")

	testCases := []struct {
		name       string
		body       string
		user       *db.User
		wantStatus int
		wantCode   string
	}{
		{
			name:       "successful login",
			body:       `{"email":"test@example.com","password":"password123"}`,
			user:       &db.User{ID: "user123", Email: "test@example.com", Password: hashed, Verified: true},
			wantStatus: http.StatusOK,
			wantCode:   CodeOkAuthentication,
		},
		{
			name:       "user not found",
			body:       `{"email":"missing@example.com","password":"password123"}`,
			user:       nil,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name: "passwordless account",
			// OTP and Google accounts have no hash; password login is off.
			body:       `{"email":"test@example.com","password":"password123"}`,
			user:       &db.User{ID: "user123", Email: "test@example.com", Password: "", Verified: true},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name:       "unverified account with correct password",
			body:       `{"email":"test@example.com","password":"password123"}`,
			user:       &db.User{ID: "user123", Email: "test@example.com", Password: hashed, Verified: false},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name:       "wrong password",
			body:       `{"email":"test@example.com","password":"nope-nope-nope"}`,
			user:       &db.User{ID: "user123", Email: "test@example.com", Password: hashed, Verified: true},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name:       "missing fields",
			body:       `{"email":"test@example.com"}`,
			user:       nil,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) {
					return tc.user, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			app.LoginHandler(rr, req)

			body := assertResponse(t, rr, tc.wantStatus, tc.wantCode)

			if tc.wantStatus == http.StatusOK {
				data, ok := body["data"].(map[string]interface{})
				if !ok {
					t.Fatal("expected data in successful response")
				}
				if _, ok := data["access_token"]; !ok {
					t.Error("successful response missing access_token")
				}
				if _, ok := data["refresh_token"]; !ok {
					t.Error("successful response missing refresh_token")
				}
			}
		})
	}
}
