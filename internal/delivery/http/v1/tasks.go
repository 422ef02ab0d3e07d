package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/models"
	"taskdesk/internal/services"
)

type getTaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Notes       *string    `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Notes:       task.Notes,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type saveTaskResponse struct {
	getTaskResponse
	// Warning is set when the task was saved but its note was not.
	Warning string `json:"warning,omitempty"`
}

func newSaveTaskResponse(result *services.SaveResult) saveTaskResponse {
	response := saveTaskResponse{
		getTaskResponse: newGetTaskResponse(result.Task),
	}
	if result.NoteErr != nil {
		response.Warning = "the task was saved but its note could not be"
	}
	return response
}

type taskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Status      string `json:"status" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
	Deadline    string `json:"deadline"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Notes       string `json:"notes" binding:"max=2000"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSaveTaskResponse(result))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
		return
	}

	tasks, err := h.tasks.FetchTasksForUser(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to fetch tasks")
		abortServiceError(c, err)
		return
	}

	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id is required"))
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:          taskID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSaveTaskResponse(result))
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id is required"))
		return
	}

	var req setTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c, services.UpdateTaskStatusParams{
		ID:     taskID,
		UserID: userID,
		Status: req.Status,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task status")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, exists := getStringFromContext(c, userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(services.ErrAuthRequired.Error()))
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id is required"))
		return
	}

	err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		ID:     taskID,
		UserID: userID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abortServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
