package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/rmmvinterp/api/rest"
	"github.com/kasuganosora/rmmvinterp/api/sse"
	"github.com/kasuganosora/rmmvinterp/audit"
	"github.com/kasuganosora/rmmvinterp/cache"
	"github.com/kasuganosora/rmmvinterp/config"
	dbadapter "github.com/kasuganosora/rmmvinterp/db"
	"github.com/kasuganosora/rmmvinterp/game/asset"
	"github.com/kasuganosora/rmmvinterp/game/interp"
	"github.com/kasuganosora/rmmvinterp/game/script"
	"github.com/kasuganosora/rmmvinterp/game/world"
	mw "github.com/kasuganosora/rmmvinterp/middleware"
	"github.com/kasuganosora/rmmvinterp/model"
	"github.com/kasuganosora/rmmvinterp/plugin/hook"
	"github.com/kasuganosora/rmmvinterp/resource"
	"github.com/kasuganosora/rmmvinterp/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	logger, err := newLogger(cfg.Log, cfg.Server.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; debug and admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)

	// ---- Game state ----
	gameState := world.NewGameState(db, cfg.Interpreter.FlushInterval, logger)
	if err := gameState.LoadFromDB(); err != nil {
		logger.Warn("failed to load game state from DB", zap.Error(err))
	}
	sysState := world.NewSystemState(db, logger)
	if err := sysState.Load(ctx); err != nil {
		logger.Warn("failed to load system settings from DB", zap.Error(err))
	}

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- RMMV Resource Loader ----
	res := resource.NewLoader(cfg.RPGMaker.DataPath, cfg.RPGMaker.ImgPath)
	if err := res.Load(); err != nil {
		logger.Warn("resource load warning", zap.Error(err))
	} else {
		logger.Info("RMMV resources loaded",
			zap.String("title", res.System.GameTitle),
			zap.Int("maps", len(res.Maps)),
			zap.Strings("plugins", res.ActivePlugins()))
	}

	// ---- Interpreter ----
	assets := asset.NewManager(cfg.RPGMaker.ImgPath, c, pubsub, logger)
	hooks := hook.NewHookCenter()
	opts := &interp.Options{
		Logger:             logger,
		Script:             newScriptEngine(cfg.Script, logger),
		Hooks:              hooks,
		Metrics:            interp.NewMetrics(prometheus.DefaultRegisterer),
		MaxCommandsPerTick: cfg.Interpreter.MaxCommandsPerTick,
	}
	w := world.New(res, gameState, sysState, assets, logger)
	host := interp.NewHost(w.Interp(), opts)
	w.Battle.SetRunner(host)
	sseH := sse.NewHandler(pubsub, cfg.Server.AdminKey, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	frameRate := cfg.Interpreter.FrameRate
	if frameRate <= 0 {
		frameRate = 60
	}
	sched.AddTicker("frame", time.Second/time.Duration(frameRate), func(ctx context.Context) error {
		if err := w.Step(ctx, host); err != nil {
			reportFailures(ctx, err, auditSvc, sseH, logger)
		}
		return nil
	})
	sched.AddTicker("system_save", cfg.Interpreter.FlushInterval, func(ctx context.Context) error {
		return sysState.Save(ctx)
	})
	sched.AddTicker("asset_gc", cfg.Cache.LocalGCInterval, func(ctx context.Context) error {
		n, err := assets.Evict(ctx)
		if n > 0 {
			logger.Debug("asset entries evicted", zap.Int("count", n))
		}
		return err
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminOnly := mw.IPWhitelist(cfg.Security.AdminIPs)
	r.GET("/metrics", adminOnly, gin.WrapH(promhttp.Handler()))

	debugH := apirest.NewDebugHandler(w, host, assets, auditSvc, opts, cfg.Interpreter.MaxRunTicks, logger)
	adminH := apirest.NewAdminHandler(sched, auditSvc, logger)

	api := r.Group("/api", adminOnly)
	{
		// EventSource cannot send headers; the stream checks the key itself.
		api.GET("/debug/events", sseH.ServeSSE)

		debugG := api.Group("/debug", apirest.AdminAuth(cfg.Server.AdminKey))
		debugG.GET("/status", debugH.Status)
		debugG.POST("/test-event", debugH.QueueTestEvent)
		debugG.POST("/common-events/:id/reserve", debugH.ReserveCommonEvent)
		debugG.POST("/run", debugH.Run)
		debugG.GET("/assets", debugH.Assets)

		adminG := api.Group("/admin", apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.GET("/audit", adminH.Audit)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	logger.Info("Server listening", zap.String("addr", addr))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop()
	assets.Close()
	if err := sysState.Save(shutdownCtx); err != nil {
		logger.Error("failed to save system settings", zap.Error(err))
	}
	gameState.Stop()
	auditSvc.Stop(shutdownCtx)
}

// newLogger builds the development or production logger. When cfg.File is
// set, entries are also written as JSON to a rotating file.
func newLogger(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return logger, nil
	}

	rotating := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotating, zc.Level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

// newScriptEngine returns the goja sandbox, or the govaluate engine when
// script.engine is "expr".
func newScriptEngine(cfg config.ScriptConfig, logger *zap.Logger) interp.ScriptEngine {
	if cfg.Engine == "expr" {
		logger.Info("script engine: expr")
		return script.NewExprEngine(logger)
	}
	logger.Info("script engine: goja", zap.Int("pool", cfg.VMPoolSize), zap.Duration("timeout", cfg.Timeout))
	return script.NewSandbox(cfg.VMPoolSize, cfg.Timeout, logger)
}

// eventTarget extracts the audit map and event IDs from an event source.
// Common events and troops report their own ID as the event ID.
func eventTarget(info interp.EventInfo) (mapID, eventID int) {
	switch i := info.(type) {
	case interp.MapEventInfo:
		return i.MapID, i.EventID
	case interp.CommonEventInfo:
		return 0, i.CommonEventID
	case interp.BattleEventInfo:
		return 0, i.TroopID
	}
	return 0, 0
}

// reportFailures streams interpreter failures to debug clients and writes
// them to the audit log. The host has already logged them.
func reportFailures(ctx context.Context, err error, auditSvc *audit.Service, sseH *sse.Handler, logger *zap.Logger) {
	for _, r := range interp.Reports(err) {
		if pubErr := sseH.Publish(ctx, sse.InterpChannel, r); pubErr != nil {
			logger.Debug("interp publish failed", zap.Error(pubErr))
		}
		mapID, eventID := eventTarget(r.EventInfo)
		auditSvc.Log(audit.AuditEntry{
			Action:    "event_error",
			EventType: r.EventType,
			EventID:   eventID,
			MapID:     mapID,
			Request:   r,
			Error:     r.Message,
		})
	}
}
