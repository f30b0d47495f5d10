package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"predictably/internal/config"
	cronrunner "predictably/internal/cron"
	"predictably/internal/db"
	"predictably/internal/handler"
	"predictably/internal/logger"
	redisrepo "predictably/internal/repository/redis"
	"predictably/internal/service"
	"predictably/internal/stats"

	_ "predictably/docs"
)

func main() {
	cfgPath := os.Getenv("PW_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PW_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client, err := db.Open(cfg.Redis)
	if err != nil {
		logger.Fatal("redis open failed", zap.Error(err))
	}
	defer db.Close(client)

	store := redisrepo.New(client)
	engine := &stats.Engine{Repo: store}
	gameService := &service.GameService{
		Repo:   store,
		Stats:  engine,
		Config: cfg.Game,
		Logger: logger,
	}
	closer := &service.VotingCloser{Repo: store, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.CORSMiddleware())
	router.Use(handler.IdentityMiddleware())

	healthHandler := &handler.HealthHandler{Redis: client}
	healthHandler.Register(router)
	questionHandler := &handler.QuestionHandler{Service: gameService, Logger: logger}
	questionHandler.Register(router)
	voteHandler := &handler.VoteHandler{Service: gameService, Logger: logger}
	voteHandler.Register(router)
	predictionHandler := &handler.PredictionHandler{Service: gameService, Logger: logger}
	predictionHandler.Register(router)
	statsHandler := &handler.StatsHandler{Service: gameService, Engine: engine, Logger: logger}
	statsHandler.Register(router)
	liveHandler := &handler.LiveHandler{Engine: engine, Config: cfg.Live, Logger: logger}
	liveHandler.Register(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.CloseVoting, closer.Run); err != nil {
			logger.Warn("cron register close voting failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
