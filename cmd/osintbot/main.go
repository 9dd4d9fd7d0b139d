package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"osintbot/internal/bot"
	"osintbot/internal/cache"
	"osintbot/internal/config"
	"osintbot/internal/health"
	"osintbot/internal/repository"
	"osintbot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envLoaded := godotenv.Load() == nil

	cfg, cfgErr := config.Load()
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	if !envLoaded {
		logger.Info("no .env file found, using process environment")
	}
	if cfgErr != nil {
		logger.Fatal("load config", zap.Error(cfgErr))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	admins := repository.NewAdminRepository(db)
	bans := repository.NewBanRepository(db)
	lookups := repository.NewLookupRepository(db)
	groups := repository.NewGroupRepository(db)
	settings := repository.NewSettingRepository(db)

	if err := admins.Bootstrap(ctx, cfg.InitialAdmins, cfg.OwnerID); err != nil {
		logger.Fatal("bootstrap admins", zap.Error(err))
	}

	sanitizer := service.NewSanitizer(cfg.GlobalDenylist)
	upstream := service.NewUpstreamClient(cfg.UpstreamTimeout)
	pipeline := service.NewPipeline(cfg, upstream, sanitizer)
	copyCache := cache.New(cfg.CopyTTL, cfg.CopyCapacity)

	b, err := bot.New(cfg, bot.Deps{
		Users:    users,
		Admins:   admins,
		Bans:     bans,
		Lookups:  lookups,
		Groups:   groups,
		Settings: settings,
		Pipeline: pipeline,
		Cache:    copyCache,
	}, logger.Named("Bot"))
	if err != nil {
		logger.Fatal("create bot", zap.Error(err))
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
		if removed := copyCache.Sweep(); removed > 0 {
			logger.Debug("copy cache sweep", zap.Int("Removed", removed))
		}
	}); err != nil {
		logger.Fatal("schedule cache sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	healthSrv := health.NewServer(cfg.HealthAddr, logger.Named("Health"))
	go func() {
		if err := healthSrv.Run(); err != nil {
			logger.Error("health server", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("health shutdown", zap.Error(err))
		}
	}()

	if err := b.Start(ctx); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
