package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"TripBroker/internal/api"
	"TripBroker/internal/config"
	"TripBroker/internal/engine"
	"TripBroker/internal/journal"
	"TripBroker/internal/market/sim"
	"TripBroker/internal/notifier"
	"TripBroker/internal/recorder"
	"TripBroker/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/agent.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	log.Info("TripBroker starting", zap.String("config", cfgPath))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log.Named("recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	gj := journal.NewGameJournal(cfg.Journal.Dir)
	defer gj.Close()

	var notif engine.Notifier
	if cfg.Telegram.BotToken != "" {
		notif = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log.Named("telegram"))
	}

	market := sim.New(cfg.Sim(), log.Named("sim"))
	agent := engine.New(cfg.Engine(), engine.Deps{
		Market:   market,
		Recorder: rec,
		Journal:  gj,
		Notifier: notif,
		Log:      log.Named("agent"),
	})

	// Init scheduler
	sched := scheduler.NewScheduler(agent, cfg.Schedule.HotelWatch, cfg.Schedule.Entertainment, log.Named("scheduler"))
	if err := sched.RegisterAll(); err != nil {
		log.Fatal("register timers", zap.Error(err))
	}
	agent.SetTimers(sched)
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(cfg.API.Addr, cfg.API.CORSOrigins, api.NewRouter(agent, log.Named("api")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return agent.Run(gctx) })
	g.Go(func() error {
		for i := 0; i < cfg.Simulator.Games; i++ {
			log.Info("playing game", zap.Int("game", i+1), zap.Int("of", cfg.Simulator.Games))
			if err := market.Run(gctx, agent); err != nil {
				return err
			}
		}
		log.Info("all games played, status API stays up until shutdown")
		return nil
	})
	g.Go(func() error {
		log.Info("status API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("TripBroker stopped with error", zap.Error(err))
		return
	}
	log.Info("TripBroker stopped")
}

func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
