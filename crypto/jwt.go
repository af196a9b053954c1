package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum required length for JWT signing keys.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256
	// keys to provide sufficient security against brute force attacks.
	MinKeyLength = 32

	// JWT claim constants
	ClaimIssuedAt  = "iat"     // JWT Issued At claim key
	ClaimExpiresAt = "exp"     // JWT Expiration Time claim key
	ClaimUserID    = "user_id" // JWT User ID claim key
	ClaimType      = "type"    // JWT token type claim key

	// Token type claim values. Session tokens authenticate requests, refresh
	// tokens only mint new session tokens. Keeping the type inside the signed
	// payload stops one from being replayed as the other.
	ClaimTypeSession = "session"
	ClaimTypeRefresh = "refresh"
)

var (
	// ErrJwtTokenExpired is returned when the token has expired
	ErrJwtTokenExpired = errors.New("token expired")
	// ErrJwtInvalidToken is returned when the token is invalid
	ErrJwtInvalidToken = errors.New("invalid token")
	// ErrJwtInvalidSigningMethod is returned when the signing method is not HS256
	ErrJwtInvalidSigningMethod = errors.New("unexpected signing method")
	// ErrJwtInvalidSecretLength is returned for invalid secret lengths
	ErrJwtInvalidSecretLength = errors.New("invalid secret length")
)

// ParseJwt verifies and parses a JWT and returns its claims as a
// map[string]any that you can access like any other Go map.
func ParseJwt(token string, verificationKey []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	parsedToken, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return verificationKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrJwtTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrJwtInvalidSigningMethod
		}
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}

	if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok && parsedToken.Valid {
		return claims, nil
	}

	return nil, ErrJwtInvalidToken
}

// NewJwt generates a new JWT token with the provided claims.
// payload is jwt.MapClaims which is just map[string]any.
func NewJwt(payload jwt.MapClaims, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	if len(signingKey) < MinKeyLength {
		return "", time.Time{}, ErrJwtInvalidSecretLength
	}

	now := time.Now()
	expirationTime := now.Add(duration)
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = expirationTime.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// NewSessionToken mints a session token for the given user.
func NewSessionToken(userID string, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	return NewJwt(jwt.MapClaims{
		ClaimUserID: userID,
		ClaimType:   ClaimTypeSession,
	}, signingKey, duration)
}

// NewRefreshToken mints a refresh token for the given user.
func NewRefreshToken(userID string, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	return NewJwt(jwt.MapClaims{
		ClaimUserID: userID,
		ClaimType:   ClaimTypeRefresh,
	}, signingKey, duration)
}

// ParseSessionToken verifies a session token and returns the user id.
func ParseSessionToken(token string, verificationKey []byte) (string, error) {
	return parseTyped(token, verificationKey, ClaimTypeSession)
}

// ParseRefreshToken verifies a refresh token and returns the user id.
func ParseRefreshToken(token string, verificationKey []byte) (string, error) {
	return parseTyped(token, verificationKey, ClaimTypeRefresh)
}

func parseTyped(token string, verificationKey []byte, wantType string) (string, error) {
	claims, err := ParseJwt(token, verificationKey)
	if err != nil {
		return "", err
	}

	if typ, ok := claims[ClaimType].(string); !ok || typ != wantType {
		return "", fmt.Errorf("%w: wrong token type", ErrJwtInvalidToken)
	}

	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing user_id claim", ErrJwtInvalidToken)
	}

	return userID, nil
}
