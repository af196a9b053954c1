package core

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pamcare/pamcare/assistant"
	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/mock"
	"github.com/pamcare/pamcare/router/servemux"
	"github.com/pamcare/pamcare/tokenstore"
)

// MockValidator implements the Validator interface for testing.
type MockValidator struct {
	ContentTypeFunc func(r *http.Request, allowedType string) (error, jsonResponse)
}

func (m *MockValidator) ContentType(r *http.Request, allowedType string) (error, jsonResponse) {
	if m.ContentTypeFunc != nil {
		return m.ContentTypeFunc(r, allowedType)
	}
	return nil, jsonResponse{}
}

// MockAuth implements the Authenticator interface for testing.
type MockAuth struct {
	AuthenticateFunc func(r *http.Request) (*db.User, error, jsonResponse)
}

func (m *MockAuth) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(r)
	}
	return &db.User{ID: "mock-user-id", Email: "mock@example.com", Verified: true}, nil, jsonResponse{}
}

type sentOtp struct {
	Email string
	Code  string
}

// mockMailer captures outbound one-time codes instead of sending them.
type mockMailer struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, email, code string, window time.Duration) error
	sent     []sentOtp
}

func (m *mockMailer) SendOtpEmail(ctx context.Context, email, code string, window time.Duration) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentOtp{Email: email, Code: code})
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, email, code, window)
	}
	return nil
}

func (m *mockMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Code
}

// mockBlobStore implements blobstore.Store for testing.
type mockBlobStore struct {
	uploadFunc func(ctx context.Context, prefix, contentType string, data []byte) (string, error)
}

func (m *mockBlobStore) Upload(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, prefix, contentType, data)
	}
	return "https://files.test.example/" + prefix + "/fixed", nil
}

// mockAssistant implements assistant.Assistant for testing.
type mockAssistant struct {
	completeFunc func(ctx context.Context, history []assistant.Message) (string, error)
}

func (m *mockAssistant) Complete(ctx context.Context, history []assistant.Message) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, history)
	}
	return "mock reply", nil
}

// mapCache is a deterministic cache.Cache for tests; the real ristretto
// cache admits writes asynchronously which makes assertions racy.
type mapCache[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

func newMapCache[V any]() *mapCache[V] {
	return &mapCache[V]{m: make(map[string]V)}
}

func (c *mapCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache[V]) Set(key string, value V, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return true
}

func (c *mapCache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func (c *mapCache[V]) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func testConfig() *config.Config {
	return &config.Config{
		Jwt: config.Jwt{
			AuthSecret:           "test_auth_secret_32_bytes_long_x",
			AuthTokenDuration:    config.Duration{Duration: 24 * time.Hour},
			RefreshSecret:        "test_refresh_secret_32_bytes_lng",
			RefreshTokenDuration: config.Duration{Duration: 30 * 24 * time.Hour},
		},
		Otp: config.Otp{
			Digits: 4,
			Window: config.Duration{Duration: 10 * time.Minute},
		},
		Assistant: config.Assistant{
			HistoryMax: 10,
		},
		Cache: config.Cache{
			MedicationTTL: config.Duration{Duration: time.Minute},
		},
		Server: config.Server{
			FrontendURL: "https://app.test.example",
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp builds an App wired to the mock database, a miniredis backed
// token store and capture-only collaborators.
func newTestApp(t *testing.T, mockDb *mock.Db) (*App, *mockMailer) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mailer := &mockMailer{}
	provider := config.NewProvider(testConfig())

	app := &App{
		configProvider: provider,
		logger:         testLogger(),
		validator:      &DefaultValidator{},
		router:         servemux.New(),
		tokenStore:     tokenstore.New(client),
		mailer:         mailer,
	}
	app.SetDb(mockDb)
	app.SetAuthenticator(NewDefaultAuthenticator(mockDb, app.logger, provider))

	return app, mailer
}
