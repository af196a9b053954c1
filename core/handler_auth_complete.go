package core

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pamcare/pamcare/blobstore"
	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
)

const multipartMaxMemory = 8 << 20

// CompleteRegistrationHandler finishes a passwordless registration after the
// email was verified with a one-time code. Profile fields arrive as multipart
// form values with an optional avatar image.
// Endpoint: POST /api/auth/complete-registration
// Authenticated: No
// Allowed Mimetype: multipart/form-data
func (a *App) CompleteRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeMultipart); err != nil {
		writeJsonError(w, resp)
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	password := r.FormValue("password")

	if email == "" || firstName == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if password != "" && len(password) < 8 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	// The gate: a verified, unconsumed and unexpired code row must exist.
	otp, err := a.DbOtp().GetLatestOtp(email, true)
	if err != nil {
		a.Logger().Error("otp lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if otp == nil || time.Now().After(otp.ExpiresAt) {
		writeJsonError(w, errorCodeInvalid)
		return
	}

	existing, err := a.DbAuth().GetUserByEmail(email)
	if err != nil {
		a.Logger().Error("user lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if existing != nil {
		writeJsonError(w, errorEmailConflict)
		return
	}

	avatarURL, ok := a.uploadFormFile(w, r, "avatar", blobstore.PrefixAvatars)
	if !ok {
		return
	}

	var passwordHash string
	if password != "" {
		passwordHash, err = crypto.GenerateHash(password)
		if err != nil {
			a.Logger().Error("password hash failed", "error", err)
			writeJsonError(w, errorAuthDatabaseError)
			return
		}
	}

	user, err := a.DbAuth().CreateUser(db.User{
		Email:     email,
		Password:  passwordHash,
		FirstName: firstName,
		LastName:  lastName,
		Avatar:    avatarURL,
		Verified:  true,
	})
	if err != nil {
		// A concurrent registration for the same email won the race.
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorEmailConflict)
			return
		}
		a.Logger().Error("user insert failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	// The gating code is now consumed.
	if err := a.DbOtp().DeleteOtps(email); err != nil {
		a.Logger().Error("otp cleanup failed", "error", err, "email", email)
	}

	writeAuthResponse(w, pair, user)
}

// uploadFormFile reads an optional multipart file field and pushes it to the
// object store. The second return value is false when a response was already
// written. Upload failures surface as a client error and are not retried.
func (a *App) uploadFormFile(w http.ResponseWriter, r *http.Request, field, prefix string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		writeJsonError(w, errorInvalidRequest)
		return "", false
	}
	defer file.Close()

	if a.BlobStore() == nil {
		writeJsonError(w, errorServiceUnavailable)
		return "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJsonError(w, errorInvalidRequest)
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := a.BlobStore().Upload(r.Context(), prefix, contentType, data)
	if err != nil {
		a.Logger().Error("file upload failed", "error", err, "field", field)
		writeJsonError(w, errorUploadFailed)
		return "", false
	}

	return url, true
}
