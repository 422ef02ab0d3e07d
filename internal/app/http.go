package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/config"
	v1 "taskdesk/internal/delivery/http/v1"
	"taskdesk/internal/lockout"
	"taskdesk/internal/monitor"
	"taskdesk/internal/ratelimit"
	"taskdesk/internal/reconcile"
	"taskdesk/internal/services"
	"taskdesk/internal/storage"
	"taskdesk/internal/validate"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	// Outside local development failures feed the bounded monitoring
	// ring instead of only the console.
	var recorder *monitor.Recorder
	if cfg.Env != config.EnvLocal {
		recorder = monitor.NewRecorder(monitor.DefaultCapacity)
	}

	validator := validate.New(globalLogger)
	validator.AttachRecorder(recorder)

	policies := ratelimit.DefaultPolicies()
	if cfg.Security.RateLimitPolicyFile != "" {
		loaded, err := ratelimit.LoadPolicies(cfg.Security.RateLimitPolicyFile)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("path", cfg.Security.RateLimitPolicyFile).
				Msg("failed to load rate limit policies")
			panic(err)
		}
		policies = loaded
	}
	limits := ratelimit.NewPersistentLimiter(globalLogger, globalLocalStore, policies)
	lockouts := lockout.NewTracker(globalLogger, globalLocalStore)
	go sweepSecurityRecords(limits, lockouts)

	repo := storage.NewPostgresRepo(globalLogger, globalPostgresPool)
	engine := reconcile.NewEngine()

	jwtCfg := cfg.JWT
	authService := services.NewAuthService(
		globalLogger,
		globalPostgresPool,
		validator,
		lockouts,
		limits,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
		jwtCfg.RefreshTokenTTL,
	)
	taskService := services.NewTaskService(
		globalLogger,
		repo,
		validator,
		limits,
		engine,
		recorder,
	)

	v1Handler := v1.New(globalLogger, globalPostgresPool, recorder, authService, taskService)
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/login", v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/logout", v1Handler.HandleAuthMiddleware, v1Handler.HandleLogout)

	taskRouter := router.Group("/tasks", v1Handler.HandleAuthMiddleware)
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.GET("", v1Handler.HandleGetTasks)
	taskRouter.PUT("/:id", v1Handler.HandleUpdateTask)
	taskRouter.PATCH("/:id/status", v1Handler.HandleSetTaskStatus)
	taskRouter.DELETE("/:id", v1Handler.HandleDeleteTask)

	securityRouter := router.Group("/security", v1Handler.HandleAuthMiddleware)
	securityRouter.GET("/events", v1Handler.HandleGetSecurityEvents)
	securityRouter.DELETE("/events", v1Handler.HandleClearSecurityEvents)
}

const securitySweepInterval = 10 * time.Minute

// sweepSecurityRecords periodically drops expired rate-limit windows and
// lockout records from the local store so it does not grow unbounded.
func sweepSecurityRecords(limits *ratelimit.PersistentLimiter, lockouts *lockout.Tracker) {
	sweep := func() {
		dropped := limits.Sweep() + lockouts.Sweep()
		if dropped > 0 {
			globalLogger.Debug().
				Int("dropped", dropped).
				Msg("swept expired security records")
		}
	}
	sweep()

	ticker := time.NewTicker(securitySweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		sweep()
	}
}
