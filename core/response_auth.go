package core

import (
	"net/http"

	"github.com/pamcare/pamcare/db"
)

// This file defines the standardized response format for authentication
// endpoints (login, code verification, refresh, registration completion).
//
// Example:
// {
//   "status": 200,
//   "code": "ok_authentication",
//   "message": "Authentication successful",
//   "data": {
//     "token_type": "Bearer",
//     "access_token": "eyJhbGciOiJIUzI...",
//     "refresh_token": "eyJhbGciOiJIUzI...",
//     "expires_in": 86400,
//     "record": {
//       "id": "user123",
//       "email": "user@example.com",
//       "first_name": "Jane",
//       "last_name": "Doe",
//       "avatar": "https://...",
//       "verified": true
//     }
//   }
// }

// AuthRecord represents the user record in authentication responses.
type AuthRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
	Verified  bool   `json:"verified"`
}

// AuthData represents the authentication response structure.
type AuthData struct {
	TokenType    string     `json:"token_type"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	Record       AuthRecord `json:"record"`
}

func newAuthRecord(user *db.User) AuthRecord {
	return AuthRecord{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Avatar:    user.Avatar,
		Verified:  user.Verified,
	}
}

// writeAuthResponse writes a standardized authentication response.
func writeAuthResponse(w http.ResponseWriter, pair tokenPair, user *db.User) {
	authData := AuthData{
		TokenType:    "Bearer",
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresIn:    pair.ExpiresIn,
		Record:       newAuthRecord(user),
	}
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkAuthentication,
			Message: "Authentication successful",
		},
		Data: authData,
	}
	writeJsonWithData(w, response)
}
