package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func otpRowFor(t *testing.T, email, code string, expiresAt time.Time) *db.OtpCode {
	t.Helper()
	hash, err := crypto.GenerateHash(code)
	if err != nil {
		t.Fatal(err)
	}
	return &db.OtpCode{
		ID:        "otp1",
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: expiresAt,
	}
}

func postVerify(t *testing.T, app *App, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/auth/verify-code", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.VerifyCodeHandler(rr, req)
	return rr
}

func TestVerifyCodeHandler_Failures(t *testing.T) {
	testCases := []struct {
		name       string
		otp        *db.OtpCode
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			// Absent and wrong codes give the same answer so emails with
			// pending codes cannot be enumerated.
			name:       "no code on file",
			otp:        nil,
			body:       `{"email":"a@x.com","code":"1234"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorCodeInvalid,
		},
		{
			name:       "expired code rejects even the right digits",
			otp:        otpRowFor(t, "a@x.com", "1234", time.Now().Add(-time.Minute)),
			body:       `{"email":"a@x.com","code":"1234"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorCodeExpired,
		},
		{
			name:       "wrong code",
			otp:        otpRowFor(t, "a@x.com", "1234", time.Now().Add(10*time.Minute)),
			body:       `{"email":"a@x.com","code":"9999"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorCodeInvalid,
		},
		{
			name:       "missing fields",
			otp:        nil,
			body:       `{"email":"a@x.com"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetLatestOtpFunc: func(email string, verified bool) (*db.OtpCode, error) {
					return tc.otp, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			rr := postVerify(t, app, tc.body)
			assertResponse(t, rr, tc.wantStatus, tc.wantCode)
		})
	}
}

func TestVerifyCodeHandler_ExistingUserGetsSession(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: false}
	verifiedCalled := false
	deletedOtps := false

	mockDb := &mock.Db{
		GetLatestOtpFunc: func(email string, verified bool) (*db.OtpCode, error) {
			return otpRowFor(t, "a@x.com", "1234", time.Now().Add(10*time.Minute)), nil
		},
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return user, nil
		},
		VerifyEmailFunc: func(userID string) error {
			verifiedCalled = true
			return nil
		},
		DeleteOtpsFunc: func(email string) error {
			deletedOtps = true
			return nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	rr := postVerify(t, app, `{"email":"a@x.com","code":"1234"}`)
	body := assertResponse(t, rr, http.StatusOK, CodeOkAuthentication)

	data, _ := body["data"].(map[string]interface{})
	if data["access_token"] == "" || data["refresh_token"] == "" {
		t.Error("expected a token pair in the response")
	}
	if !verifiedCalled {
		t.Error("existing user must be flipped to verified")
	}
	if !deletedOtps {
		t.Error("the consumed code rows must be deleted")
	}
}

// Codes are single use: once consumed by a successful verification, a second
// submit of the same code fails.
func TestVerifyCodeHandler_CodeIsSingleUse(t *testing.T) {
	otp := otpRowFor(t, "a@x.com", "1234", time.Now().Add(10*time.Minute))
	consumed := false

	mockDb := &mock.Db{
		GetLatestOtpFunc: func(email string, verified bool) (*db.OtpCode, error) {
			if consumed {
				return nil, nil
			}
			return otp, nil
		},
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return &db.User{ID: "user123", Email: "a@x.com", Verified: true}, nil
		},
		DeleteOtpsFunc: func(email string) error {
			consumed = true
			return nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	rr := postVerify(t, app, `{"email":"a@x.com","code":"1234"}`)
	assertResponse(t, rr, http.StatusOK, CodeOkAuthentication)

	rr = postVerify(t, app, `{"email":"a@x.com","code":"1234"}`)
	assertResponse(t, rr, http.StatusUnauthorized, CodeErrorCodeInvalid)
}

func TestVerifyCodeHandler_NoAccountPromptsCompletion(t *testing.T) {
	markedVerified := false
	deletedOtps := false

	mockDb := &mock.Db{
		GetLatestOtpFunc: func(email string, verified bool) (*db.OtpCode, error) {
			return otpRowFor(t, "new@x.com", "4821", time.Now().Add(10*time.Minute)), nil
		},
		MarkOtpVerifiedFunc: func(id string) error {
			markedVerified = true
			return nil
		},
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return nil, nil
		},
		DeleteOtpsFunc: func(email string) error {
			deletedOtps = true
			return nil
		},
	}
	app, _ := newTestApp(t, mockDb)

	rr := postVerify(t, app, `{"email":"new@x.com","code":"4821"}`)
	body := assertResponse(t, rr, http.StatusOK, CodeOkCodeVerified)

	data, _ := body["data"].(map[string]interface{})
	if registered, _ := data["registered"].(bool); registered {
		t.Error("expected registered=false for an email without an account")
	}
	if !markedVerified {
		t.Error("the code row must be marked verified to gate completion")
	}
	if deletedOtps {
		t.Error("the verified row must be retained for the completion step")
	}
}
