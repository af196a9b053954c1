package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
)

// Mailer is the slice of the mail package the auth handlers need. Reminder
// delivery runs inside the job queue, not here.
type Mailer interface {
	SendOtpEmail(ctx context.Context, email, code string, window time.Duration) error
}

// errMailDelivery marks issuance failures caused by the mail collaborator so
// handlers can map them to 503 instead of 500. The code row stays behind and
// is superseded by the next issuance.
var errMailDelivery = errors.New("mail delivery failed")

// tokenPair is a freshly minted access/refresh token pair.
type tokenPair struct {
	Access    string
	Refresh   string
	ExpiresIn int
}

// issueTokenPair mints a session and refresh token for the user and persists
// the refresh token, overwriting and thereby invalidating any previous one.
func (a *App) issueTokenPair(ctx context.Context, user *db.User) (tokenPair, error) {
	cfg := a.Config()

	access, expiresAt, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.AuthSecret), cfg.Jwt.AuthTokenDuration.Duration)
	if err != nil {
		return tokenPair{}, fmt.Errorf("failed to mint session token: %w", err)
	}

	refresh, _, err := crypto.NewRefreshToken(user.ID, []byte(cfg.Jwt.RefreshSecret), cfg.Jwt.RefreshTokenDuration.Duration)
	if err != nil {
		return tokenPair{}, fmt.Errorf("failed to mint refresh token: %w", err)
	}

	// The stored copy expires in lockstep with the token claims.
	if err := a.TokenStore().Save(ctx, user.ID, refresh, cfg.Jwt.RefreshTokenDuration.Duration); err != nil {
		return tokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return tokenPair{
		Access:    access,
		Refresh:   refresh,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

// issueOtp generates a one-time code for the email, stores its hash and
// emails the plaintext. Prior unverified codes are removed first so only the
// latest code can verify.
func (a *App) issueOtp(ctx context.Context, email string) error {
	cfg := a.Config()

	if err := a.DbOtp().DeleteUnverifiedOtps(email); err != nil {
		return fmt.Errorf("failed to clear previous codes: %w", err)
	}

	code := crypto.GenerateOtp(cfg.Otp.Digits)
	codeHash, err := crypto.GenerateHash(code)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	_, err = a.DbOtp().CreateOtp(db.OtpCode{
		Email:     email,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(cfg.Otp.Window.Duration),
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := a.Mailer().SendOtpEmail(ctx, email, code, cfg.Otp.Window.Duration); err != nil {
		a.Logger().Error("otp email delivery failed", "error", err)
		return fmt.Errorf("%w: %w", errMailDelivery, err)
	}

	return nil
}
