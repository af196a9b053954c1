package core

import (
	"encoding/json"
	"net/http"

	"github.com/pamcare/pamcare/crypto"
)

// LoginHandler handles password-based authentication.
// Endpoint: POST /api/auth/login
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil || user == nil {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	// An empty hash means a passwordless account (OTP or Google only).
	if user.Password == "" {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	// Unverified accounts never get a session, even with the right password.
	if !user.Verified {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, pair, user)
}
