package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/meinhoongagan/doctor-appointment/config"
	"github.com/meinhoongagan/doctor-appointment/cron"
	"github.com/meinhoongagan/doctor-appointment/db"
	"github.com/meinhoongagan/doctor-appointment/identity"
	"github.com/meinhoongagan/doctor-appointment/push"
	"github.com/meinhoongagan/doctor-appointment/redis"
	"github.com/meinhoongagan/doctor-appointment/store"
	"github.com/meinhoongagan/doctor-appointment/utils"
)

const devJWTSecret = "solid_secret_key"

// deps holds the process-wide clients shared by every command.
type deps struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    store.Store
	identity *identity.Local
	redis    *goredis.Client
}

func setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*deps, error) {
	if !cfg.EnvFileLoaded {
		log.Warn().Msg(".env file not loaded, using environment variables directly")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	gdb, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("database connection established")

	d := &deps{
		cfg:      cfg,
		log:      log,
		identity: identity.NewLocal(identity.NewGormAccounts(gdb), cfg.JWTSecret, cfg.TokenTTL),
	}

	switch cfg.StoreDriver {
	case "mongo":
		ms, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		d.store = ms
		log.Info().Str("db", cfg.MongoDB).Msg("document store: mongo")
	default:
		d.store = store.NewGormStore(gdb)
		log.Info().Msg("document store: postgres")
	}

	if cfg.RedisAddr != "" {
		client, err := redis.Init(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		d.redis = client
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}
	return d, nil
}

func (d *deps) close(ctx context.Context) {
	if err := d.store.Close(ctx); err != nil {
		d.log.Warn().Err(err).Msg("close store")
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.log.Warn().Err(err).Msg("close redis")
		}
	}
	if err := db.Close(); err != nil {
		d.log.Warn().Err(err).Msg("close database")
	}
}

func (d *deps) pushSender(ctx context.Context) (push.Sender, error) {
	switch d.cfg.PushDriver {
	case "fcm":
		return push.NewFCMSender(ctx, d.cfg.FCMProjectID, option.WithCredentialsFile(d.cfg.FCMCredentialsFile))
	case "redis":
		return push.NewRedisSender(d.redis), nil
	default:
		return push.NewLogSender(d.log), nil
	}
}

func (d *deps) reminders() *cron.Reminders {
	r := cron.NewReminders(d.store, d.cfg.ReminderDelay, d.cfg.ReminderBatchLimit, d.log)
	if d.cfg.MailEnabled() {
		r.WithMailer(utils.NewSMTPMailer(d.cfg.SMTPHost, d.cfg.SMTPPort, d.cfg.EmailUser, d.cfg.EmailPass))
	}
	return r
}

func (d *deps) scheduler() (*cron.Scheduler, error) {
	var locker cron.Locker
	if d.cfg.SchedulerLock {
		locker = redis.NewLocker(d.redis)
	}
	s, err := cron.NewScheduler(d.cfg.SchedulerSpec, d.reminders(), locker, d.log)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

func (d *deps) photoUploader() (*utils.CloudinaryUploader, error) {
	return utils.NewCloudinaryUploader(utils.CloudinaryConfig{
		CloudName:    d.cfg.CloudinaryCloudName,
		APIKey:       d.cfg.CloudinaryAPIKey,
		APISecret:    d.cfg.CloudinaryAPISecret,
		UploadPreset: d.cfg.CloudinaryUploadPreset,
	})
}
