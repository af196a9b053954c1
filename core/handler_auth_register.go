package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
)

// RegisterHandler handles password-based user registration. The account is
// created unverified; a one-time code is emailed and must be verified before
// the user can log in.
// Endpoint: POST /api/auth/register
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
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

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if len(req.Password) < 8 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.Logger().Error("password hash failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	user, err := a.DbAuth().CreateUser(db.User{
		Email:    req.Email,
		Password: hashedPassword,
		Verified: false,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorEmailConflict)
			return
		}
		a.Logger().Error("user insert failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	if err := a.issueOtp(r.Context(), user.Email); err != nil {
		// The account exists but the code never arrived. Registering again
		// conflicts; the client recovers through send-code, which reissues.
		if errors.Is(err, errMailDelivery) {
			writeJsonError(w, errorServiceUnavailable)
			return
		}
		a.Logger().Error("otp issuance failed", "error", err, "email", user.Email)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusAccepted,
			Code:    CodeOkRegistered,
			Message: "Registration pending, check your email for the verification code",
		},
		Data: map[string]string{"user_id": user.ID},
	})
}

// SendCodeHandler issues a fresh one-time code for an email. This is both
// the passwordless login entry point and the recovery path when a previous
// code never arrived.
// Endpoint: POST /api/auth/send-code
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) SendCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if err := a.issueOtp(r.Context(), req.Email); err != nil {
		if errors.Is(err, errMailDelivery) {
			writeJsonError(w, errorServiceUnavailable)
			return
		}
		a.Logger().Error("otp issuance failed", "error", err, "email", req.Email)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okCodeSent)
}
