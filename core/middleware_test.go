package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
)

func TestRequireAuth(t *testing.T) {
	user := &db.User{ID: "user123", Email: "a@x.com", Verified: true}
	cfg := testConfig()

	validToken, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.AuthSecret), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expiredToken, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.AuthSecret), -time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	refreshToken, _, err := crypto.NewRefreshToken(user.ID, []byte(cfg.Jwt.RefreshSecret), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no authorization header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorNoAuthHeader,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorInvalidTokenFormat,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorJwtInvalidToken,
		},
		{
			name:       "expired session token",
			authHeader: "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorJwtTokenExpired,
		},
		{
			// Refresh tokens carry a different claim type and must never
			// pass as session tokens.
			name:       "refresh token presented as session token",
			authHeader: "Bearer " + refreshToken,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeErrorJwtInvalidToken,
		},
		{
			name:       "valid session token",
			authHeader: "Bearer " + validToken,
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetUserByIdFunc: func(id string) (*db.User, error) {
					if id == user.ID {
						return user, nil
					}
					return nil, nil
				},
			}
			app, _ := newTestApp(t, mockDb)

			var gotUser *db.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/api/auth/me", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			app.RequireAuth(next).ServeHTTP(rr, req)

			if tc.wantStatus == http.StatusOK {
				if rr.Code != http.StatusOK {
					t.Fatalf("expected the request to pass, got %d (body %s)", rr.Code, rr.Body.String())
				}
				if gotUser == nil || gotUser.ID != user.ID {
					t.Errorf("expected user %q in the request context, got %+v", user.ID, gotUser)
				}
				return
			}

			assertResponse(t, rr, tc.wantStatus, tc.wantCode)
			if gotUser != nil {
				t.Error("next handler must not run on failed authentication")
			}
		})
	}
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	cfg := testConfig()
	token, _, err := crypto.NewSessionToken("gone", []byte(cfg.Jwt.AuthSecret), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	app, _ := newTestApp(t, &mock.Db{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run for a deleted account")
	})

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	app.RequireAuth(next).ServeHTTP(rr, req)
	assertResponse(t, rr, http.StatusUnauthorized, CodeErrorJwtInvalidToken)
}
