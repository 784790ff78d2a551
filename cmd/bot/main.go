package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teacher_referral_bot/internal/app"
	"teacher_referral_bot/internal/domain/session"
	"teacher_referral_bot/internal/infra/config"
	idb "teacher_referral_bot/internal/infra/database"
	infraGeo "teacher_referral_bot/internal/infra/geo"
	"teacher_referral_bot/internal/infra/logger"
	"teacher_referral_bot/internal/infra/scheduler"
	infraSession "teacher_referral_bot/internal/infra/session"
	"teacher_referral_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	accountRepo := idb.NewPostgresAccountRepository(db)
	teacherRepo := idb.NewPostgresTeacherRepository(db)
	referralRepo := idb.NewPostgresReferralRepository(db)
	geoRepo := idb.NewPostgresGeoRepository(db)
	channelRepo := idb.NewPostgresChannelRepository(db)

	var sessionStore session.Store
	if cfg.RedisURL != "" {
		redisClient, err := infraSession.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Could not connect to Redis")
		}
		defer redisClient.Close()
		sessionStore = infraSession.NewRedisStore(redisClient)
		log.Info("Using Redis session store")
	} else {
		sessionStore = infraSession.NewMemoryStore()
		log.Info("Using in-memory session store")
	}

	if err := infraGeo.LoadFromFiles(ctx, geoRepo, cfg.RegionsJSONPath, cfg.DistrictsJSONPath,
		logger.Get().WithField("component", "geo_loader")); err != nil {
		// Existing reference data keeps the bot usable when a reload fails.
		log.WithError(err).Warn("Failed to load geo reference data")
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Get().WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.WithError(err).Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	client := telegram.NewTelebotAdapter(bot)

	notifier := app.NewNotifier(client, channelRepo, geoRepo, cfg.AdminChannelID,
		logger.Get().WithField("component", "notifier"))
	referralService := app.NewReferralService(accountRepo, teacherRepo, referralRepo, notifier,
		logger.Get().WithField("component", "referral_service"))
	registrationService := app.NewRegistrationService(accountRepo, teacherRepo, geoRepo, sessionStore,
		referralService, notifier, client,
		logger.Get().WithField("component", "registration_service"), cfg.CountryCallingCode)
	profileService := app.NewProfileService(accountRepo, teacherRepo, geoRepo, client,
		logger.Get().WithField("component", "profile_service"))
	statsService := app.NewStatsService(accountRepo, referralRepo, client,
		logger.Get().WithField("component", "stats_service"))
	adminService := app.NewAdminService(accountRepo, teacherRepo, referralService, client,
		logger.Get().WithField("component", "admin_service"))

	digestScheduler := scheduler.NewPendingDigestScheduler(teacherRepo, notifier,
		logger.Get().WithField("component", "scheduler"), cfg.CronSpecPendingDigest)
	if err := digestScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start scheduler")
	}

	handlerLogger := logger.Get().WithField("component", "handlers")
	telegram.RegisterBotHandlers(ctx, bot, registrationService, profileService, statsService, handlerLogger)
	telegram.RegisterCallbackHandlers(ctx, bot, registrationService, profileService, statsService,
		adminService, cfg.AdminChannelID, handlerLogger)

	log.Info("Application setup complete, starting bot")
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	bot.Stop()
	digestScheduler.Stop()
	cancel()
	log.Info("Application shut down gracefully")
}
