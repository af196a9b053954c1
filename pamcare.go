// Package pamcare wires configuration, storage, background jobs and the HTTP
// API into a runnable backend for the Pamcare companion app.
package pamcare

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pamcare/pamcare/assistant"
	"github.com/pamcare/pamcare/blobstore"
	"github.com/pamcare/pamcare/cache/ristretto"
	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/core"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/mail"
	"github.com/pamcare/pamcare/queue"
	"github.com/pamcare/pamcare/queue/executor"
	"github.com/pamcare/pamcare/queue/handlers"
	scl "github.com/pamcare/pamcare/queue/scheduler"
	"github.com/pamcare/pamcare/server"
	"github.com/pamcare/pamcare/tokenstore"
	"github.com/pamcare/pamcare/trending"
)

// New loads the configuration at configPath (defaults when empty), builds the
// core App with the provided options and returns it with a ready to run
// Server. The caller must supply a database and a logger via options.
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	provider := config.NewProvider(cfg)

	allOpts := append([]core.Option{core.WithConfigProvider(provider)}, opts...)
	app, err := core.NewApp(allOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	logger := app.Logger()

	if app.Router() == nil {
		app.SetRouter(newServeMuxRouter())
	}

	if app.TokenStore() == nil {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.SetTokenStore(tokenstore.New(client))
	}

	if app.MedCache() == nil {
		medCache, err := ristretto.New[*db.Medication]("medium")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create medication cache: %w", err)
		}
		app.SetMedCache(medCache)
	}
	if app.Trending() == nil {
		app.SetTrending(trending.New(cfg.Cache.TrendingK, cfg.Cache.TrendingTick))
	}

	var mailer *mail.Mailer
	if cfg.Smtp.Enabled {
		mailer, err = mail.New(provider)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create mailer: %w", err)
		}
		if app.Mailer() == nil {
			app.SetMailer(mailer)
		}
	}

	if cfg.Storage.Enabled && app.BlobStore() == nil {
		store, err := blobstore.New(provider, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create blob store: %w", err)
		}
		app.SetBlobStore(store)
	}

	if cfg.Assistant.Enabled && app.Assistant() == nil {
		client, err := assistant.New(provider, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create assistant client: %w", err)
		}
		app.SetAssistant(client)
	}

	routes(app)

	scheduler := setupScheduler(provider, app, mailer, logger)
	seedRecurrentJobs(cfg, app.DbQueue(), logger)

	reload := func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		provider.Update(next)
		return nil
	}

	srv := server.NewServer(provider, app.RequestLog(app.Router()), logger, reload)
	srv.AddDaemon(scheduler)

	return app, srv, nil
}

// setupScheduler registers a handler per job type. Jobs whose collaborators
// are not configured are left unregistered and fail visibly if seeded.
func setupScheduler(provider *config.Provider, app *core.App, mailer *mail.Mailer, logger *slog.Logger) *scl.Scheduler {
	hdls := make(map[string]executor.JobHandler)

	cfg := provider.Get()

	hdls[queue.JobTypeOtpCleanup] = handlers.NewOtpCleanupHandler(app.DbOtp(), logger)

	if mailer != nil {
		hdls[queue.JobTypeAppointmentReminder] = handlers.NewAppointmentReminderHandler(
			app.DbAppointments(), app.DbAuth(), provider, mailer, logger)
	}

	if cfg.BackupLocal.Enabled {
		hdls[queue.JobTypeBackupLocal] = handlers.NewBackupLocalHandler(provider, logger)
	}

	return scl.NewScheduler(provider, app.DbQueue(), executor.NewExecutor(hdls), logger)
}

// seedRecurrentJobs inserts the periodic maintenance jobs. A partial unique
// index keeps at most one pending occurrence per type, so reboots are no-ops.
func seedRecurrentJobs(cfg *config.Config, dbQueue db.DbQueue, logger *slog.Logger) {
	jobs := []db.Job{
		queue.NewRecurrentJob(queue.JobTypeOtpCleanup, cfg.Otp.Window.Duration),
	}
	if cfg.Smtp.Enabled {
		jobs = append(jobs, queue.NewRecurrentJob(queue.JobTypeAppointmentReminder, cfg.Reminders.Interval.Duration))
	}
	if cfg.BackupLocal.Enabled {
		jobs = append(jobs, queue.NewRecurrentJob(queue.JobTypeBackupLocal, cfg.BackupLocal.Interval.Duration))
	}

	for _, job := range jobs {
		if err := dbQueue.InsertJob(job); err != nil {
			if errors.Is(err, db.ErrConstraintUnique) {
				continue
			}
			logger.Error("failed to seed recurrent job", "job_type", job.JobType, "err", err)
		}
	}
}
