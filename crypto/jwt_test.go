package crypto

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test_secret_32_bytes_long_xxxxxx")

func generateExpiredToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID:    "user123",
		ClaimType:      ClaimTypeSession,
		ClaimIssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ClaimExpiresAt: time.Now().Add(-1 * time.Hour).Unix(),
	})
	s, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}
	return s
}

func TestCreateAndParseValidToken(t *testing.T) {
	userID := "testuser123"
	tokenDuration := 15 * time.Minute

	claims := jwt.MapClaims{ClaimUserID: userID}
	tokenString, _, err := NewJwt(claims, testSecret, tokenDuration)
	if err != nil {
		t.Fatalf("NewJwt() error = %v", err)
	}

	parsedClaims, err := ParseJwt(tokenString, testSecret)
	if err != nil {
		t.Fatalf("ParseJwt() error = %v", err)
	}

	if parsedClaims[ClaimUserID] != userID {
		t.Errorf("expected UserID %q, got %q", userID, parsedClaims[ClaimUserID])
	}
}

func TestParseInvalidToken(t *testing.T) {
	validToken, _, err := NewSessionToken("user123", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	testCases := []struct {
		name        string
		tokenString string
		secret      []byte
		wantError   error
	}{
		{
			name:        "expired token",
			tokenString: generateExpiredToken(t),
			secret:      testSecret,
			wantError:   ErrJwtTokenExpired,
		},
		{
			name:        "invalid signature",
			tokenString: validToken,
			secret:      []byte("wrong_secret_32_bytes_long_xxxxx"),
			wantError:   ErrJwtInvalidSigningMethod,
		},
		{
			name:        "malformed token",
			tokenString: "malformed.token.string",
			secret:      testSecret,
			wantError:   ErrJwtInvalidToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJwt(tc.tokenString, tc.secret)
			if !errors.Is(err, tc.wantError) {
				t.Errorf("ParseJwt() error = %v, want %v", err, tc.wantError)
			}
		})
	}
}

func TestCreateWithInvalidSecret(t *testing.T) {
	claims := jwt.MapClaims{ClaimUserID: "user123"}
	_, _, err := NewJwt(claims, nil, 15*time.Minute)
	if !errors.Is(err, ErrJwtInvalidSecretLength) {
		t.Errorf("expected ErrJwtInvalidSecretLength, got %v", err)
	}
}

func TestSessionAndRefreshTokenTypes(t *testing.T) {
	session, _, err := NewSessionToken("user123", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}
	refresh, _, err := NewRefreshToken("user123", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewRefreshToken() error = %v", err)
	}

	userID, err := ParseSessionToken(session, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if userID != "user123" {
		t.Errorf("ParseSessionToken() user id = %q, want user123", userID)
	}

	if _, err := ParseRefreshToken(refresh, testSecret); err != nil {
		t.Fatalf("ParseRefreshToken() error = %v", err)
	}

	// A refresh token must not authenticate as a session and vice versa.
	if _, err := ParseSessionToken(refresh, testSecret); !errors.Is(err, ErrJwtInvalidToken) {
		t.Errorf("ParseSessionToken(refresh) error = %v, want ErrJwtInvalidToken", err)
	}
	if _, err := ParseRefreshToken(session, testSecret); !errors.Is(err, ErrJwtInvalidToken) {
		t.Errorf("ParseRefreshToken(session) error = %v, want ErrJwtInvalidToken", err)
	}
}

func TestParseTypedMissingUserID(t *testing.T) {
	token, _, err := NewJwt(jwt.MapClaims{ClaimType: ClaimTypeSession}, testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewJwt() error = %v", err)
	}

	if _, err := ParseSessionToken(token, testSecret); !errors.Is(err, ErrJwtInvalidToken) {
		t.Errorf("ParseSessionToken() error = %v, want ErrJwtInvalidToken", err)
	}
}
