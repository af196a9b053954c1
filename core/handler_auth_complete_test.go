package core

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(fileData); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf, mw.FormDataContentType()
}

func verifiedOtpDb(t *testing.T, email string) *mock.Db {
	t.Helper()
	return &mock.Db{
		GetLatestOtpFunc: func(gotEmail string, verified bool) (*db.OtpCode, error) {
			if !verified || gotEmail != email {
				return nil, nil
			}
			otp := otpRowFor(t, email, "1234", time.Now().Add(10*time.Minute))
			otp.Verified = true
			return otp, nil
		},
	}
}

func TestCompleteRegistrationHandler_RequiresVerifiedCode(t *testing.T) {
	// No verified code row exists for this email.
	app, _ := newTestApp(t, &mock.Db{})

	body, contentType := multipartBody(t, map[string]string{
		"email":      "new@x.com",
		"first_name": "Jane",
	}, "", "", nil)

	req := httptest.NewRequest("POST", "/api/auth/complete-registration", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.CompleteRegistrationHandler(rr, req)
	assertResponse(t, rr, http.StatusUnauthorized, CodeErrorCodeInvalid)
}

func TestCompleteRegistrationHandler_ConflictWhenUserAppeared(t *testing.T) {
	mockDb := verifiedOtpDb(t, "new@x.com")
	mockDb.GetUserByEmailFunc = func(email string) (*db.User, error) {
		return &db.User{ID: "raced", Email: email}, nil
	}
	app, _ := newTestApp(t, mockDb)

	body, contentType := multipartBody(t, map[string]string{
		"email":      "new@x.com",
		"first_name": "Jane",
	}, "", "", nil)

	req := httptest.NewRequest("POST", "/api/auth/complete-registration", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.CompleteRegistrationHandler(rr, req)
	assertResponse(t, rr, http.StatusConflict, CodeErrorEmailConflict)
}

func TestCompleteRegistrationHandler_Success(t *testing.T) {
	var created db.User
	deletedOtps := false

	mockDb := verifiedOtpDb(t, "new@x.com")
	mockDb.CreateUserFunc = func(user db.User) (*db.User, error) {
		created = user
		user.ID = "user42"
		return &user, nil
	}
	mockDb.DeleteOtpsFunc = func(email string) error {
		deletedOtps = true
		return nil
	}

	app, _ := newTestApp(t, mockDb)
	app.blobStore = &mockBlobStore{
		uploadFunc: func(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
			if prefix != "avatars" {
				t.Errorf("avatar stored under wrong prefix %q", prefix)
			}
			return "https://files.test.example/avatars/abc", nil
		},
	}

	body, contentType := multipartBody(t, map[string]string{
		"email":      "new@x.com",
		"first_name": "Jane",
		"last_name":  "Doe",
	}, "avatar", "me.png", []byte("png-bytes"))

	req := httptest.NewRequest("POST", "/api/auth/complete-registration", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.CompleteRegistrationHandler(rr, req)
	respBody := assertResponse(t, rr, http.StatusOK, CodeOkAuthentication)

	if !created.Verified {
		t.Error("completion must create the account verified")
	}
	if created.FirstName != "Jane" || created.LastName != "Doe" {
		t.Errorf("profile fields lost: %+v", created)
	}
	if created.Avatar != "https://files.test.example/avatars/abc" {
		t.Errorf("avatar url not stored: %q", created.Avatar)
	}
	if !deletedOtps {
		t.Error("the consumed code rows must be deleted")
	}

	data, _ := respBody["data"].(map[string]interface{})
	if data["access_token"] == "" {
		t.Error("expected a session in the response")
	}
}

func TestCompleteRegistrationHandler_UploadFailureIsClientError(t *testing.T) {
	mockDb := verifiedOtpDb(t, "new@x.com")
	created := false
	mockDb.CreateUserFunc = func(user db.User) (*db.User, error) {
		created = true
		return &user, nil
	}

	app, _ := newTestApp(t, mockDb)
	app.blobStore = &mockBlobStore{
		uploadFunc: func(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
			return "", errors.New("bucket unreachable")
		},
	}

	body, contentType := multipartBody(t, map[string]string{
		"email":      "new@x.com",
		"first_name": "Jane",
	}, "avatar", "me.png", []byte("png-bytes"))

	req := httptest.NewRequest("POST", "/api/auth/complete-registration", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	app.CompleteRegistrationHandler(rr, req)
	assertResponse(t, rr, http.StatusBadRequest, CodeErrorUploadFailed)

	if created {
		t.Error("no user row may be created when the upload fails")
	}
}
