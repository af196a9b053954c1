package core

import (
	"fmt"
	"log/slog"

	"github.com/pamcare/pamcare/assistant"
	"github.com/pamcare/pamcare/blobstore"
	"github.com/pamcare/pamcare/cache"
	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/router"
	"github.com/pamcare/pamcare/tokenstore"
	"github.com/pamcare/pamcare/trending"
)

type Option func(*App)

func errMissingDependency(name string) error {
	return fmt.Errorf("%s is required but was not provided", name)
}

// WithDb sets all database role interfaces from a single implementation.
func WithDb(d db.DbApp) Option {
	return func(a *App) {
		a.SetDb(d)
	}
}

// WithRouter sets the router implementation.
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithMedCache sets the medication read cache.
func WithMedCache(c cache.Cache[string, *db.Medication]) Option {
	return func(a *App) {
		a.medCache = c
	}
}

// WithTrending sets the trending search sketch.
func WithTrending(s *trending.Sketch) Option {
	return func(a *App) {
		a.trending = s
	}
}

// WithTokenStore sets the refresh token store.
func WithTokenStore(s tokenstore.Store) Option {
	return func(a *App) {
		a.tokenStore = s
	}
}

// WithMailer sets the outbound mailer.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithBlobStore sets the object storage client.
func WithBlobStore(s blobstore.Store) Option {
	return func(a *App) {
		a.blobStore = s
	}
}

// WithAssistant sets the chat assistant client.
func WithAssistant(c assistant.Assistant) Option {
	return func(a *App) {
		a.assistant = c
	}
}

// WithAuthenticator sets the authenticator implementation.
func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.authenticator = auth
	}
}

// WithValidator sets the validator implementation.
func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}
