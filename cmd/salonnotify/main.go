package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"salon-notify/internal/bot"
	"salon-notify/internal/config"
	"salon-notify/internal/extract"
	"salon-notify/internal/repository"
	"salon-notify/internal/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("salonnotify: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salonnotify",
		Short: "Salon booking notification bot",
		Long: "Keeps Telegram clients informed about their salon bookings by " +
			"reconciling scraped journal snapshots and dispatching scheduled notifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}

	cmd.AddCommand(newInitDBCommand())
	cmd.AddCommand(newResetDBCommand())
	cmd.AddCommand(newSyncOnceCommand())

	return cmd
}

func newInitDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := repository.NewDB(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Println("[info] database initialized")
			return nil
		},
	}
}

func newResetDBCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop and recreate all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := repository.NewDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := repository.Reset(db); err != nil {
				return err
			}
			log.Println("[info] database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm destructive reset")
	return cmd
}

func newSyncOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-once",
		Short: "Run one reconciliation cycle and print its stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := repository.NewDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			// Diagnostics path: no Telegram connection, just the engine.
			stats, err := newSyncService(cfg, db).RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("created: %d, changed: %d, canceled: %d\n", stats.Created, stats.Changed, stats.Canceled)
			return nil
		},
	}
}

type deps struct {
	telegramBot *bot.Bot
	sync        *service.SyncService
	dispatcher  *service.Dispatcher
}

// newSyncService builds the scrape→reconcile→plan pipeline.
func newSyncService(cfg config.Config, db *gorm.DB) *service.SyncService {
	bookingRepo := repository.NewBookingRepository(db)
	reconciler := service.NewReconciler(db,
		bookingRepo,
		repository.NewUserRepository(db),
		repository.NewCompanyRepository(db),
		cfg.CompanyName, cfg.CompanyAddress, time.Local)
	planner := service.NewPlanner(repository.NewNotificationRepository(db), time.Local)
	return service.NewSyncService(newExtractor(cfg), reconciler, planner, bookingRepo, cfg.ScrapeTimeout)
}

func wire(cfg config.Config, db *gorm.DB) (deps, error) {
	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	companyRepo := repository.NewCompanyRepository(db)

	limiter := service.NewRateLimiter(2, time.Minute)
	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, bookingRepo, limiter, &cfg)
	if err != nil {
		return deps{}, err
	}

	dispatcher := service.NewDispatcher(notificationRepo, bookingRepo, userRepo, companyRepo, telegramBot, service.TemplateLinks{
		BookingURL: cfg.BookingURL,
		ReviewURL:  cfg.ReviewURL,
		GroupURL:   cfg.GroupURL,
	})

	return deps{telegramBot: telegramBot, sync: newSyncService(cfg, db), dispatcher: dispatcher}, nil
}

// newExtractor returns the journal extractor for this deployment. The
// scraping implementation lives outside this repository; an unconfigured
// deployment fails each cycle cleanly and retries on the next tick.
func newExtractor(cfg config.Config) extract.Extractor {
	return extract.Func(func(ctx context.Context) (extract.Result, error) {
		return extract.Result{}, fmt.Errorf("no extractor configured")
	})
}

func runBot() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	d, err := wire(cfg, db)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval("sync", cfg.SyncInterval, true, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), cfg.ScrapeTimeout+30*time.Second)
		defer cancel()
		if _, err := d.sync.RunCycle(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("sync: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	if _, err := scheduler.ScheduleInterval("dispatch", cfg.DispatchInterval, true, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.dispatcher.DispatchDue(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("dispatch: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule dispatch: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Salon notification bot started.")
	if err := d.telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	log.Println("Shutdown complete.")
	return nil
}
