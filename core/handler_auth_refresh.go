package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/tokenstore"
)

// RefreshHandler exchanges a valid refresh token for a new token pair. The
// presented token must match the stored value exactly; a token that was
// already rotated away is rejected even when its signature is still valid.
// Endpoint: POST /api/auth/refresh
// Authenticated: No (the refresh token is the credential)
// Allowed Mimetype: application/json
func (a *App) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.RefreshToken == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	cfg := a.Config()
	userID, err := crypto.ParseRefreshToken(req.RefreshToken, []byte(cfg.Jwt.RefreshSecret))
	if err != nil {
		if errors.Is(err, crypto.ErrJwtTokenExpired) {
			writeJsonError(w, errorJwtTokenExpired)
			return
		}
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	stored, err := a.TokenStore().Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			writeJsonError(w, errorRefreshTokenRevoked)
			return
		}
		a.Logger().Error("refresh token lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if stored != req.RefreshToken {
		// Structurally valid but superseded by a later rotation.
		writeJsonError(w, errorRefreshTokenRevoked)
		return
	}

	user, err := a.DbAuth().GetUserById(userID)
	if err != nil {
		a.Logger().Error("user lookup failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if user == nil {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	// Rotation on use: the new pair overwrites the stored token, which
	// invalidates the one just presented.
	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, pair, user)
}

// LogoutHandler deletes the stored refresh token of the authenticated user.
// Subsequent refresh attempts fail even with a structurally valid token.
// Endpoint: POST /api/auth/logout
// Authenticated: Yes
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if err := a.TokenStore().Delete(r.Context(), user.ID); err != nil {
		a.Logger().Error("refresh token delete failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okLogout)
}
