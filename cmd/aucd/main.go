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

	"aucengine/internal/auction"
	"aucengine/internal/auth"
	"aucengine/internal/config"
	cronrunner "aucengine/internal/cron"
	"aucengine/internal/db"
	"aucengine/internal/events"
	"aucengine/internal/handler"
	"aucengine/internal/ledger"
	"aucengine/internal/logger"
	gormrepository "aucengine/internal/repository/gorm"
	"aucengine/internal/service"

	_ "aucengine/docs"
)

func main() {
	cfgPath := os.Getenv("AUC_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AUC_ENV_ONLY"); envOnlyRaw != "" {
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

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	registry := auction.NewRegistry(cfg.Engine.AdminIdentity, cfg.Engine.FeeRatePercent)
	book := ledger.NewBook(store, logger)
	hub := events.NewHub(cfg.Events.SubscriberBuffer, logger)

	settlementSvc := &service.SettlementService{
		Engine:          registry,
		Book:            book,
		Repo:            store,
		Hub:             hub,
		Logger:          logger,
		DefaultDuration: cfg.Engine.DefaultDurationSecs,
	}
	if err := settlementSvc.Rehydrate(context.Background()); err != nil {
		logger.Fatal("arena rehydrate failed", zap.Error(err))
	}
	logger.Info("arena rehydrated", zap.Int("auctions", registry.Len()))

	sweeper := &service.ExpirySweeper{Engine: registry, Repo: store, Logger: logger}
	statsSvc := &service.StatsService{Engine: registry, Repo: store, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(auth.RequireIdentityMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Engine: registry}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)

	auctionHandler := &handler.AuctionHandler{Service: settlementSvc, Repo: store}
	auctionHandler.Register(engine)
	accountHandler := &handler.AccountHandler{Book: book}
	accountHandler.Register(engine)
	reportHandler := &handler.ReportHandler{Repo: store, Stats: statsSvc}
	reportHandler.Register(engine)
	streamHandler := &handler.StreamHandler{Hub: hub, Logger: logger}
	streamHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add(cfg.Cron.ExpirySweep, func(ctx context.Context) {
			if err := sweeper.RunOnce(ctx); err != nil {
				logger.Warn("expiry sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register expiry sweep failed", zap.Error(err))
		}
		_, err = cronRunner.Add(cfg.Cron.StatsRefresh, func(ctx context.Context) {
			if err := statsSvc.Refresh(ctx); err != nil {
				logger.Warn("stats refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register stats refresh failed", zap.Error(err))
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

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Auc-Identity")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
