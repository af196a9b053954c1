package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkLogout        = "ok_logout"
	CodeOkDeleted       = "ok_deleted"
	CodeOkCodeVerified  = "ok_code_verified"

	// errors
	CodeErrorInvalidRequest         = "err_invalid_input"
	CodeErrorMissingFields          = "err_missing_fields"
	CodeErrorPasswordComplexity     = "err_password_complexity"
	CodeErrorInvalidCredentials     = "err_invalid_credentials"
	CodeErrorEmailConflict          = "err_email_conflict"
	CodeErrorNotFound               = "err_not_found"
	CodeErrorForbidden              = "err_forbidden"
	CodeErrorCodeInvalid            = "err_code_invalid"
	CodeErrorCodeExpired            = "err_code_expired"
	CodeErrorTokenGeneration        = "err_token_generation"
	CodeErrorNoAuthHeader           = "err_no_auth_header"
	CodeErrorInvalidTokenFormat     = "err_invalid_token_format"
	CodeErrorJwtTokenExpired        = "err_token_expired"
	CodeErrorJwtInvalidToken        = "err_invalid_token"
	CodeErrorRefreshTokenRevoked    = "err_refresh_token_revoked"
	CodeErrorAuthDatabaseError      = "err_auth_database_error"
	CodeErrorDatabaseError          = "err_database_error"
	CodeErrorInvalidContentType     = "err_invalid_content_type"
	CodeErrorTooManyRequests        = "err_too_many_requests"
	CodeErrorServiceUnavailable     = "err_service_unavailable"
	CodeErrorUploadFailed           = "err_upload_failed"
	CodeErrorOAuth2Exchange         = "err_oauth2_token_exchange_failed"
	CodeErrorOAuth2UserInfo         = "err_oauth2_user_info_failed"
	CodeErrorOAuth2Provider         = "err_invalid_oauth2_provider"
	CodeErrorGoogleTokenInvalid     = "err_google_token_invalid"
	CodeErrorAssistantUnavailable   = "err_assistant_unavailable"
)

// precomputeBasicResponse marshals a short response once during package
// initialization so request handlers only write pre-computed bytes.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// precomputeWithDataResponse is the same for responses with a constant
// data payload.
func precomputeWithDataResponse(status int, code, message string, data interface{}) jsonResponse {
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  status,
			Code:    code,
			Message: message,
		},
		Data: data,
	}
	body, _ := json.Marshal(response)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorInvalidRequest       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorMissingFields        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity   = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 8 characters")
	errorInvalidCredentials   = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorEmailConflict        = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorNotFound             = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorForbidden            = precomputeBasicResponse(http.StatusForbidden, CodeErrorForbidden, "You do not have access to this resource")
	errorCodeInvalid          = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorCodeInvalid, "Invalid or expired code")
	errorCodeExpired          = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorCodeExpired, "Code has expired, request a new one")
	errorTokenGeneration      = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorNoAuthHeader         = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat   = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtTokenExpired      = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtTokenExpired, "Authentication token has expired")
	errorJwtInvalidToken      = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorRefreshTokenRevoked  = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorRefreshTokenRevoked, "Refresh token is no longer valid")
	errorAuthDatabaseError    = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Database error during authentication")
	errorDatabaseError        = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorDatabaseError, "Database error")
	errorInvalidContentType   = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorTooManyRequests      = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyRequests, "Too many requests, please try again later")
	errorServiceUnavailable   = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorUploadFailed         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorUploadFailed, "File upload failed")
	errorOAuth2Exchange       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2Exchange, "Failed to exchange OAuth2 token")
	errorOAuth2UserInfo       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2UserInfo, "Failed to get user info from OAuth2 provider")
	errorOAuth2Provider       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2Provider, "Invalid OAuth2 provider specified")
	errorGoogleTokenInvalid   = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorGoogleTokenInvalid, "Google token verification failed")
	errorAssistantUnavailable = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorAssistantUnavailable, "Assistant is temporarily unavailable")

	// oks
	okCodeSent = precomputeBasicResponse(http.StatusAccepted, CodeOkCodeSent, "Verification code will be sent to your email")
	okLogout  = precomputeBasicResponse(http.StatusOK, CodeOkLogout, "Logged out successfully")
	okDeleted = precomputeBasicResponse(http.StatusOK, CodeOkDeleted, "Deleted successfully")

	// Code verified but no account exists yet; the client must finish
	// registration before a session can be issued.
	okCodeVerifiedNoAccount = precomputeWithDataResponse(http.StatusOK, CodeOkCodeVerified, "Code verified, complete your registration", map[string]bool{"registered": false})
)
