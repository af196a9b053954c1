package config

import (
	"time"

	"github.com/pamcare/pamcare/crypto"
)

// NewDefaultConfig creates a Config with sensible defaults.
// All secret values are randomly generated.
func NewDefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                    ":8080",
			BaseURL:                 "http://localhost:8080",
			FrontendURL:             "http://localhost:3000",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 5 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 30 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
		},
		Jwt: Jwt{
			AuthSecret:           crypto.RandomString(32, crypto.AlphanumericAlphabet),
			AuthTokenDuration:    Duration{Duration: 7 * 24 * time.Hour},
			RefreshSecret:        crypto.RandomString(32, crypto.AlphanumericAlphabet),
			RefreshTokenDuration: Duration{Duration: 30 * 24 * time.Hour},
		},
		Otp: Otp{
			Digits: 4,
			Window: Duration{Duration: 10 * time.Minute},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Pamcare",
			FromAddress: "",
		},
		Redis: Redis{
			Addr: "127.0.0.1:6379",
			DB:   0,
		},
		Sqlite: Sqlite{
			Path:     "pamcare.db",
			PoolSize: 0, // 0 means runtime.NumCPU()
		},
		Storage: Storage{
			Enabled:   false,
			Region:    "us-east-1",
			Bucket:    "pamcare-uploads",
			MaxUpload: 10 << 20, // 10MB
		},
		Assistant: Assistant{
			Enabled:     false,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			MaxTokens:   1000,
			Temperature: 0.7,
			Timeout:     Duration{Duration: 30 * time.Second},
			RateLimit:   Duration{Duration: 1 * time.Second},
			RateBurst:   5,
			HistoryMax:  20,
		},
		OAuth2Providers: map[string]OAuth2Provider{
			"google": {
				Name:        "google",
				RedirectURL: "",
				AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:    "https://oauth2.googleapis.com/token",
				UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.profile",
					"https://www.googleapis.com/auth/userinfo.email",
				},
			},
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 60 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
			JobTimeout:            Duration{Duration: 10 * time.Minute},
		},
		Reminders: Reminders{
			Lead:     Duration{Duration: 24 * time.Hour},
			Interval: Duration{Duration: 15 * time.Minute},
		},
		BackupLocal: BackupLocal{
			Enabled:   false,
			BackupDir: "backups",
			Interval:  Duration{Duration: 24 * time.Hour},
		},
		Cache: Cache{
			MedicationTTL: Duration{Duration: 5 * time.Minute},
			TrendingTick:  100,
			TrendingK:     10,
		},
	}
}
