package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
)

// Authenticator defines the interface for authentication operations.
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, error, jsonResponse)
}

// DefaultAuthenticator implements Authenticator using session JWTs.
type DefaultAuthenticator struct {
	dbAuth         db.DbAuth
	logger         *slog.Logger
	configProvider *config.Provider
}

// NewDefaultAuthenticator creates a new DefaultAuthenticator instance.
func NewDefaultAuthenticator(dbAuth db.DbAuth, logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth:         dbAuth,
		logger:         logger,
		configProvider: configProvider,
	}
}

// Authenticate implements the Authenticator interface. It verifies the bearer
// session token and loads the user it names.
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	errAuth := errors.New("auth error")

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errAuth, errorNoAuthHeader
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errAuth, errorInvalidTokenFormat
	}

	cfg := a.configProvider.Get()
	userID, err := crypto.ParseSessionToken(tokenString, []byte(cfg.Jwt.AuthSecret))
	if err != nil {
		if errors.Is(err, crypto.ErrJwtTokenExpired) {
			return nil, errAuth, errorJwtTokenExpired
		}
		return nil, errAuth, errorJwtInvalidToken
	}

	user, err := a.dbAuth.GetUserById(userID)
	if err != nil {
		a.logger.Error("auth user lookup failed", "error", err)
		return nil, errAuth, errorAuthDatabaseError
	}
	if user == nil {
		// A valid signature naming a missing user means the account was
		// removed after the token was minted.
		return nil, errAuth, errorJwtInvalidToken
	}

	return user, nil, jsonResponse{}
}

// contextKey is a type for context keys private to this package.
type contextKey string

const userContextKey contextKey = "auth_user"

// withUser attaches the authenticated principal to the request context.
func withUser(ctx context.Context, user *db.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated principal set by the auth
// middleware, or false when the request is unauthenticated.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(userContextKey).(*db.User)
	return user, ok && user != nil
}
