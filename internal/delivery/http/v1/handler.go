package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskdesk/internal/monitor"
	"taskdesk/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleGetSecurityEvents(c *gin.Context)
	HandleClearSecurityEvents(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	tasks    services.TaskService
	recorder *monitor.Recorder
	// The auth middleware reads the session row directly.
	pgPool *pgxpool.Pool
}

func New(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	recorder *monitor.Recorder,
	authService services.AuthService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		tasks:    taskService,
		recorder: recorder,
		pgPool:   pgPool,
	}
}
