package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/solar-nova/presence-core/internal/config"
	"github.com/solar-nova/presence-core/internal/middleware"
	"github.com/solar-nova/presence-core/internal/modules/presence"
	"github.com/solar-nova/presence-core/internal/modules/stream"
	"github.com/solar-nova/presence-core/internal/pkg/schedule"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	reg    *presence.Registry
	hub    *stream.Hub
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	sched  *schedule.Scheduler
}

// New initializes the application: config → registry → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger, "/sse/online", "/ws/online"))

	originAllowed := originChecker(cfg.AllowedOrigins, cfg.IsDev())
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		AllowOriginFunc:  originAllowed,
	}))

	reg := presence.NewRegistry(
		int64(cfg.Presence.OnlineTTL),
		int64(cfg.Presence.ActivityWindow),
	)
	hub := stream.NewHub()

	ctx, cancel := context.WithCancel(context.Background())

	sched := schedule.New()
	if cfg.Presence.SweepAfter > 0 {
		registerSweepJob(sched, reg, cfg, logger)
		sched.Start(ctx)
	}

	app := &App{
		cfg:    cfg,
		router: router,
		reg:    reg,
		hub:    hub,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		sched:  sched,
	}
	app.registerRoutes(originAllowed)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cancels the app context, which stops the sweep loop and ends
// every observer delivery loop so the HTTP server can drain.
func (a *App) Shutdown() {
	a.cancel()
	a.logger.Info("background loops stopped",
		zap.Int("subscribers", a.hub.Count("")),
		zap.Int("records", a.reg.Len()),
	)
}

func registerSweepJob(sched *schedule.Scheduler, reg *presence.Registry, cfg *config.AppConfig, logger *zap.Logger) {
	ttl := int64(cfg.Presence.SweepAfter)
	// Sweeping at half the ttl keeps the worst-case overstay below 1.5x.
	interval := time.Duration(cfg.Presence.SweepAfter) * time.Second / 2

	sched.Register(schedule.Job{
		Name:        "presence-sweep",
		Description: fmt.Sprintf("drop records not seen for %ds", cfg.Presence.SweepAfter),
		Interval:    interval,
		Fn: func(ctx context.Context) error {
			removed := reg.Sweep(time.Now().Unix(), ttl)
			if removed > 0 {
				logger.Info("presence sweep", zap.Int("removed", removed), zap.Int("remaining", reg.Len()))
			}
			return nil
		},
	})
}
