package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pamcare/pamcare/blobstore"
)

// MeHandler returns the profile of the authenticated user.
// Endpoint: GET /api/auth/me
// Authenticated: Yes
func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkProfile,
			Message: "Current user profile",
		},
		Data: newAuthRecord(user),
	})
}

// GetProfileHandler returns the authenticated user's profile.
// Endpoint: GET /api/users/profile
// Authenticated: Yes
func (a *App) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	a.MeHandler(w, r)
}

// UpdateProfileHandler updates the mutable profile fields.
// Endpoint: PUT /api/users/profile
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	updated := *user
	if req.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updated.LastName = strings.TrimSpace(*req.LastName)
	}
	if updated.FirstName == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	stored, err := a.DbAuth().UpdateUser(updated)
	if err != nil {
		a.Logger().Error("profile update failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUpdated,
			Message: "Profile updated",
		},
		Data: newAuthRecord(stored),
	})
}

// UpdateProfilePictureHandler replaces the user's avatar with an uploaded
// image.
// Endpoint: PUT /api/users/profile/picture
// Authenticated: Yes
// Allowed Mimetype: multipart/form-data
func (a *App) UpdateProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeMultipart); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	url, ok := a.uploadFormFile(w, r, "picture", blobstore.PrefixAvatars)
	if !ok {
		return
	}
	if url == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := a.DbAuth().UpdateAvatar(user.ID, url); err != nil {
		a.Logger().Error("avatar update failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUploaded,
			Message: "Profile picture updated",
		},
		Data: map[string]string{"avatar": url},
	})
}
