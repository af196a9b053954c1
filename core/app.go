package core

import (
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

// App is the application wide context.
// db connections and permanent structs go here.
//
// All handlers and middleware have App as receiver; the router only ever
// sees closures over it.
type App struct {
	dbAuth         db.DbAuth
	dbOtp          db.DbOtp
	dbAppointments db.DbAppointments
	dbReports      db.DbReports
	dbPharmacy     db.DbPharmacy
	dbChat         db.DbChat
	dbQueue        db.DbQueue

	router   router.Router
	medCache cache.Cache[string, *db.Medication]
	trending *trending.Sketch

	tokenStore tokenstore.Store
	mailer     Mailer
	blobStore  blobstore.Store
	assistant  assistant.Assistant

	configProvider *config.Provider
	logger         *slog.Logger
	authenticator  Authenticator
	validator      Validator
}

// NewApp builds an App from options. Dependencies that every request path
// touches are checked here; optional collaborators (storage, assistant) are
// checked at their call sites so the rest of the API can run without them.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.configProvider == nil {
		return nil, errMissingDependency("config provider")
	}
	if a.dbAuth == nil {
		return nil, errMissingDependency("database")
	}
	if a.logger == nil {
		return nil, errMissingDependency("logger")
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.authenticator == nil {
		a.authenticator = NewDefaultAuthenticator(a.dbAuth, a.logger, a.configProvider)
	}

	return a, nil
}

// Router returns the application's router instance.
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbOtp() db.DbOtp {
	return a.dbOtp
}

func (a *App) DbAppointments() db.DbAppointments {
	return a.dbAppointments
}

func (a *App) DbReports() db.DbReports {
	return a.dbReports
}

func (a *App) DbPharmacy() db.DbPharmacy {
	return a.dbPharmacy
}

func (a *App) DbChat() db.DbChat {
	return a.dbChat
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

// SetDb sets all database role interfaces from a single implementation.
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbOtp = dbApp
	a.dbAppointments = dbApp
	a.dbReports = dbApp
	a.dbPharmacy = dbApp
	a.dbChat = dbApp
	a.dbQueue = dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) MedCache() cache.Cache[string, *db.Medication] {
	return a.medCache
}

func (a *App) SetMedCache(c cache.Cache[string, *db.Medication]) {
	a.medCache = c
}

func (a *App) Trending() *trending.Sketch {
	return a.trending
}

func (a *App) SetTrending(s *trending.Sketch) {
	a.trending = s
}

func (a *App) TokenStore() tokenstore.Store {
	return a.tokenStore
}

func (a *App) SetTokenStore(s tokenstore.Store) {
	a.tokenStore = s
}

func (a *App) Mailer() Mailer {
	return a.mailer
}

func (a *App) SetMailer(m Mailer) {
	a.mailer = m
}

func (a *App) BlobStore() blobstore.Store {
	return a.blobStore
}

func (a *App) SetBlobStore(s blobstore.Store) {
	a.blobStore = s
}

func (a *App) Assistant() assistant.Assistant {
	return a.assistant
}

func (a *App) SetAssistant(as assistant.Assistant) {
	a.assistant = as
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

// SetAuthenticator sets the authenticator implementation.
func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

// Validator returns the validator instance.
func (a *App) Validator() Validator {
	return a.validator
}

// SetValidator sets the validator implementation.
func (a *App) SetValidator(v Validator) {
	a.validator = v
}
