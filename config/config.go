package config

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Env var names for secrets that should not live in the TOML file.
const (
	EnvJwtAuthSecret      = "PAMCARE_JWT_AUTH_SECRET"
	EnvJwtRefreshSecret   = "PAMCARE_JWT_REFRESH_SECRET"
	EnvSmtpPassword       = "PAMCARE_SMTP_PASSWORD"
	EnvRedisPassword      = "PAMCARE_REDIS_PASSWORD"
	EnvStorageSecretKey   = "PAMCARE_STORAGE_SECRET_KEY"
	EnvAssistantApiKey    = "PAMCARE_ASSISTANT_API_KEY"
	EnvGoogleClientID     = "OAUTH2_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "OAUTH2_GOOGLE_CLIENT_SECRET"
)

// Duration wraps time.Duration for TOML unmarshalling of strings like "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Server struct {
	Addr                    string   `toml:"addr"`
	BaseURL                 string   `toml:"base_url"`
	FrontendURL             string   `toml:"frontend_url"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
}

type Jwt struct {
	AuthSecret           string   `toml:"auth_secret"`
	AuthTokenDuration    Duration `toml:"auth_token_duration"`
	RefreshSecret        string   `toml:"refresh_secret"`
	RefreshTokenDuration Duration `toml:"refresh_token_duration"`
}

// Otp controls the one-time code flow. Both 4 and 6 digit variants exist in
// the clients, so the width is configuration, not a constant.
type Otp struct {
	Digits int      `toml:"digits"`
	Window Duration `toml:"window"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type Sqlite struct {
	Path     string `toml:"path"`
	PoolSize int    `toml:"pool_size"`
}

// Storage configures the S3 compatible object store used for avatars and
// report files. Endpoint is optional and allows pointing at MinIO.
type Storage struct {
	Enabled   bool   `toml:"enabled"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
	MaxUpload int64  `toml:"max_upload"`
}

type Assistant struct {
	Enabled     bool     `toml:"enabled"`
	BaseURL     string   `toml:"base_url"`
	ApiKey      string   `toml:"api_key"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
	RateLimit   Duration `toml:"rate_limit"`
	RateBurst   int      `toml:"rate_burst"`
	HistoryMax  int      `toml:"history_max"`
}

type OAuth2Provider struct {
	Name         string   `toml:"name"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"user_info_url"`
	Scopes       []string `toml:"scopes"`
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
	JobTimeout            Duration `toml:"job_timeout"`
}

type Reminders struct {
	Lead     Duration `toml:"lead"`
	Interval Duration `toml:"interval"`
}

type BackupLocal struct {
	Enabled   bool     `toml:"enabled"`
	BackupDir string   `toml:"backup_dir"`
	Interval  Duration `toml:"interval"`
}

type Cache struct {
	MedicationTTL Duration `toml:"medication_ttl"`
	TrendingTick  uint64   `toml:"trending_tick"`
	TrendingK     int      `toml:"trending_k"`
}

type Config struct {
	Server          Server                    `toml:"server"`
	Jwt             Jwt                       `toml:"jwt"`
	Otp             Otp                       `toml:"otp"`
	Smtp            Smtp                      `toml:"smtp"`
	Redis           Redis                     `toml:"redis"`
	Sqlite          Sqlite                    `toml:"sqlite"`
	Storage         Storage                   `toml:"storage"`
	Assistant       Assistant                 `toml:"assistant"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
	Scheduler       Scheduler                 `toml:"scheduler"`
	Reminders       Reminders                 `toml:"reminders"`
	BackupLocal     BackupLocal               `toml:"backup_local"`
	Cache           Cache                     `toml:"cache"`
}

// Provider gives handlers lock-free access to the current configuration and
// allows it to be swapped atomically on reload.
type Provider struct {
	config atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.config.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.config.Load()
}

func (p *Provider) Update(cfg *Config) {
	p.config.Store(cfg)
}
