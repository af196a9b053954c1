package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pamcare/pamcare/crypto"
)

// VerifyCodeHandler checks a submitted one-time code. When an account exists
// for the email it is marked verified and a session is issued; otherwise the
// response signals that registration must be completed first.
//
// Absent and wrong codes produce the same message so the endpoint cannot be
// used to probe which emails have pending codes.
// Endpoint: POST /api/auth/verify-code
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) VerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	otp, err := a.DbOtp().GetLatestOtp(req.Email, false)
	if err != nil {
		a.Logger().Error("otp lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if otp == nil {
		writeJsonError(w, errorCodeInvalid)
		return
	}

	// Expiry is checked before correctness: an expired row rejects even the
	// right code.
	if time.Now().After(otp.ExpiresAt) {
		writeJsonError(w, errorCodeExpired)
		return
	}

	if !crypto.CheckPassword(req.Code, otp.CodeHash) {
		writeJsonError(w, errorCodeInvalid)
		return
	}

	if err := a.DbOtp().MarkOtpVerified(otp.ID); err != nil {
		a.Logger().Error("otp verify mark failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		a.Logger().Error("user lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	if user == nil {
		// The verified row stays behind to gate registration completion.
		writeJsonOk(w, okCodeVerifiedNoAccount)
		return
	}

	if !user.Verified {
		if err := a.DbAuth().VerifyEmail(user.ID); err != nil {
			a.Logger().Error("email verify failed", "error", err)
			writeJsonError(w, errorAuthDatabaseError)
			return
		}
		user.Verified = true
	}

	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	// Codes are single use: consume every row for this email so the same
	// code cannot log in twice.
	if err := a.DbOtp().DeleteOtps(req.Email); err != nil {
		a.Logger().Error("otp cleanup failed", "error", err, "email", req.Email)
	}

	writeAuthResponse(w, pair, user)
}
