package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meinhoongagan/doctor-appointment/config"
	"github.com/meinhoongagan/doctor-appointment/controllers"
	"github.com/meinhoongagan/doctor-appointment/db"
	"github.com/meinhoongagan/doctor-appointment/events"
	"github.com/meinhoongagan/doctor-appointment/logger"
	"github.com/meinhoongagan/doctor-appointment/redis"
	"github.com/meinhoongagan/doctor-appointment/routes"
	"github.com/meinhoongagan/doctor-appointment/services"
	"github.com/meinhoongagan/doctor-appointment/store"
)

const appointmentsChannel = "appointments:updated"

func main() {
	root := &cobra.Command{
		Use:          "doctor-appointment",
		Short:        "Admin callables, appointment notifications and reminders",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), remindCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func load(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return setup(ctx, cfg, logger.New(cfg.Env))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, the reminder scheduler and the change subscriber",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := load(ctx)
			if err != nil {
				return err
			}
			defer d.close(context.Background())
			return serve(ctx, d)
		},
	}
}

func serve(ctx context.Context, d *deps) error {
	cfg, log := d.cfg, d.log

	app := routes.NewApp(cfg.CORSOrigins, log)
	callables := controllers.NewCallables(
		services.NewAdminUsers(d.store, d.identity, log),
		services.NewAdminDoctors(d.store, cfg.DefaultCurrency, log),
	)
	routes.SetupAuthRoutes(app, controllers.NewAuth(d.identity))
	routes.SetupCallableRoutes(app, cfg.JWTSecret, callables.Funcs(), log)

	sender, err := d.pushSender(ctx)
	if err != nil {
		return err
	}
	triggers := controllers.NewTriggers(events.NewDispatcher(d.store, sender, log), cfg.TriggerSecret, log)
	if cfg.TriggerSecret != "" {
		routes.SetupTriggerRoutes(app, triggers)
	} else {
		log.Warn().Msg("TRIGGER_SECRET not set, appointment webhook disabled")
	}

	if cfg.CloudinaryEnabled() {
		uploader, err := d.photoUploader()
		if err != nil {
			return err
		}
		routes.SetupAdminRoutes(app, cfg.JWTSecret, d.store, controllers.NewMedia(uploader, log))
	}

	if d.redis != nil {
		go func() {
			if err := redis.Subscribe(ctx, d.redis, appointmentsChannel, triggers.HandleMessage, log); err != nil {
				log.Error().Err(err).Msg("appointment change subscriber stopped")
			}
		}()
	}

	if cfg.SchedulerEnabled {
		s, err := d.scheduler()
		if err != nil {
			return err
		}
		s.Start()
		defer s.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			if err := db.Migrate(db.GetDB()); err != nil {
				return err
			}
			if ms, ok := d.store.(*store.MongoStore); ok {
				if err := ms.EnsureIndexes(cmd.Context()); err != nil {
					return err
				}
			}
			d.log.Info().Msg("migrations applied successfully")
			return nil
		},
	}
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close(context.Background())

			r := d.reminders()
			n, err := r.RunOnce(cmd.Context(), time.Now())
			r.Close()
			if err != nil {
				return err
			}
			fmt.Printf("reminded %d appointments\n", n)
			return nil
		},
	}
}
