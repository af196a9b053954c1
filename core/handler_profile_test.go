package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func TestMeHandler(t *testing.T) {
	user := &db.User{
		ID:        "user123",
		Email:     "a@x.com",
		FirstName: "Pam",
		LastName:  "Beesly",
		Avatar:    "https://files.test.example/avatars/pam",
		Verified:  true,
	}
	app, _ := newTestApp(t, &mock.Db{})

	rr := httptest.NewRecorder()
	app.MeHandler(rr, authedRequest("GET", "/api/auth/me", "", user))

	body := assertResponse(t, rr, http.StatusOK, CodeOkProfile)

	data, _ := body["data"].(map[string]interface{})
	if data["email"] != user.Email {
		t.Errorf("expected email %q, got %v", user.Email, data["email"])
	}
	if data["first_name"] != user.FirstName || data["last_name"] != user.LastName {
		t.Errorf("name fields wrong: %v %v", data["first_name"], data["last_name"])
	}
	if data["avatar"] != user.Avatar {
		t.Errorf("expected avatar %q, got %v", user.Avatar, data["avatar"])
	}
	if _, present := data["password"]; present {
		t.Error("profile response must not expose password fields")
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", FirstName: "Pam", LastName: "Beesly", Verified: true}

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantFirst  string
		wantLast   string
	}{
		{
			name:       "update both names",
			body:       `{"first_name":"  Pamela ","last_name":"Halpert"}`,
			wantStatus: http.StatusOK,
			wantCode:   CodeOkUpdated,
			wantFirst:  "Pamela",
			wantLast:   "Halpert",
		},
		{
			name:       "omitted fields keep their value",
			body:       `{"last_name":"Halpert"}`,
			wantStatus: http.StatusOK,
			wantCode:   CodeOkUpdated,
			wantFirst:  "Pam",
			wantLast:   "Halpert",
		},
		{
			name:       "first name cannot be blanked",
			body:       `{"first_name":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
		{
			name:       "malformed json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var stored *db.User
			mockDb := &mock.Db{
				UpdateUserFunc: func(u db.User) (*db.User, error) {
					stored = &u
					return &u, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			rr := httptest.NewRecorder()
			app.UpdateProfileHandler(rr, authedRequest("PUT", "/api/users/profile", tc.body, user))
			assertResponse(t, rr, tc.wantStatus, tc.wantCode)

			if tc.wantStatus != http.StatusOK {
				if stored != nil {
					t.Error("no update should reach the database on validation failure")
				}
				return
			}
			if stored == nil {
				t.Fatal("expected the update to be persisted")
			}
			if stored.FirstName != tc.wantFirst || stored.LastName != tc.wantLast {
				t.Errorf("persisted names %q %q, want %q %q", stored.FirstName, stored.LastName, tc.wantFirst, tc.wantLast)
			}
			if stored.ID != user.ID {
				t.Errorf("update targeted wrong user: %q", stored.ID)
			}
		})
	}
}

func TestUpdateProfilePictureHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	var gotUserID, gotURL string
	mockDb := &mock.Db{
		UpdateAvatarFunc: func(userID, avatar string) error {
			gotUserID, gotURL = userID, avatar
			return nil
		},
	}
	app, _ := newTestApp(t, mockDb)
	app.blobStore = &mockBlobStore{}

	body, contentType := multipartBody(t, nil, "picture", "selfie.jpg", []byte("jpegdata"))
	req := httptest.NewRequest("PUT", "/api/users/profile/picture", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(withUser(req.Context(), user))

	rr := httptest.NewRecorder()
	app.UpdateProfilePictureHandler(rr, req)

	respBody := assertResponse(t, rr, http.StatusOK, CodeOkUploaded)

	if gotUserID != user.ID {
		t.Errorf("avatar stored for wrong user: %q", gotUserID)
	}
	if gotURL == "" {
		t.Fatal("expected an avatar url to be stored")
	}
	data, _ := respBody["data"].(map[string]interface{})
	if data["avatar"] != gotURL {
		t.Errorf("response avatar %v does not match stored url %q", data["avatar"], gotURL)
	}
}

func TestUpdateProfilePictureHandler_MissingFile(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}

	app, _ := newTestApp(t, &mock.Db{})
	app.blobStore = &mockBlobStore{}

	body, contentType := multipartBody(t, map[string]string{"unrelated": "field"}, "", "", nil)
	req := httptest.NewRequest("PUT", "/api/users/profile/picture", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(withUser(req.Context(), user))

	rr := httptest.NewRecorder()
	app.UpdateProfilePictureHandler(rr, req)
	assertResponse(t, rr, http.StatusBadRequest, CodeErrorMissingFields)
}
