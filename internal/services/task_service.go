package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskdesk/internal/models"
	"taskdesk/internal/monitor"
	"taskdesk/internal/ratelimit"
	"taskdesk/internal/reconcile"
	"taskdesk/internal/storage"
	"taskdesk/internal/validate"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	repo      storage.TaskRepository
	validator *validate.Validator
	limits    *ratelimit.PersistentLimiter
	engine    *reconcile.Engine
	recorder  *monitor.Recorder
	now       func() time.Time

	mirror taskMirror
}

func NewTaskService(
	logger zerolog.Logger,
	repo storage.TaskRepository,
	validator *validate.Validator,
	limits *ratelimit.PersistentLimiter,
	engine *reconcile.Engine,
	recorder *monitor.Recorder,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		repo:      repo,
		validator: validator,
		limits:    limits,
		engine:    engine,
		recorder:  recorder,
		now:       time.Now,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*SaveResult, error) {
	if params.UserID == "" {
		return nil, ErrAuthRequired
	}
	if s.limits.IsRateLimited(params.UserID, ratelimit.OpTaskCreation) {
		return nil, ErrRateLimited
	}

	task, notes, err := s.validateTaskInput(
		params.UserID, params.Title, params.Description,
		params.Status, params.Priority,
		params.Deadline, params.StartDate, params.EndDate, params.Notes,
	)
	if err != nil {
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	err = s.repo.InsertTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to create task")
		return nil, wrapRemote(err)
	}

	result := &SaveResult{Task: task}
	s.writeNote(ctx, task, notes, result)

	s.mirror.prepend(task)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return result, nil
}

func (s *taskServiceImpl) FetchTasksForUser(ctx context.Context, userID string) ([]*models.Task, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if s.limits.IsRateLimited(userID, ratelimit.OpAPIRequest) {
		return nil, ErrRateLimited
	}

	tasks, err := s.repo.SelectTasksByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to fetch tasks for user")
		// Prefer an empty list over a stale one when the
		// authoritative fetch fails.
		s.mirror.replace(nil)
		return nil, wrapRemote(err)
	}

	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	noteRows, notesErr := s.repo.SelectNoteRows(ctx, userID, taskIDs)
	if notesErr != nil {
		s.logger.Warn().
			Err(notesErr).
			Str("user_id", userID).
			Msg("notes fetch failed, returning tasks without notes")
		s.recorder.Record("error", "notes fetch failed", notesErr.Error())
	}
	tasks = s.engine.MergeResult(tasks, noteRows, notesErr)

	s.mirror.replace(tasks)

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("fetched tasks for user")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*SaveResult, error) {
	if params.UserID == "" {
		return nil, ErrAuthRequired
	}
	if s.limits.IsRateLimited(params.UserID, ratelimit.OpTaskUpdate) {
		return nil, ErrRateLimited
	}

	taskID, err := s.validator.UUID(params.ID)
	if err != nil {
		return nil, err
	}

	task, notes, err := s.validateTaskInput(
		params.UserID, params.Title, params.Description,
		params.Status, params.Priority,
		params.Deadline, params.StartDate, params.EndDate, params.Notes,
	)
	if err != nil {
		return nil, err
	}
	task.ID = taskID
	task.UpdatedAt = s.now()

	err = s.repo.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, wrapRemote(err)
	}

	result := &SaveResult{Task: task}
	s.writeNote(ctx, task, notes, result)

	s.mirror.upsert(task)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return result, nil
}

func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error) {
	if params.UserID == "" {
		return nil, ErrAuthRequired
	}
	if s.limits.IsRateLimited(params.UserID, ratelimit.OpTaskUpdate) {
		return nil, ErrRateLimited
	}

	taskID, err := s.validator.UUID(params.ID)
	if err != nil {
		return nil, err
	}
	status, err := s.validator.Status(params.Status)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.UpdateTaskStatus(ctx, taskID, params.UserID, status, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task status")
		return nil, wrapRemote(err)
	}

	s.mirror.setStatus(task.ID, status, task.UpdatedAt)

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task status")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	if params.UserID == "" {
		return ErrAuthRequired
	}
	if s.limits.IsRateLimited(params.UserID, ratelimit.OpAPIRequest) {
		return ErrRateLimited
	}

	taskID, err := s.validator.UUID(params.ID)
	if err != nil {
		return err
	}

	err = s.repo.DeleteTask(ctx, taskID, params.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return wrapRemote(err)
	}

	s.mirror.remove(taskID)

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", params.UserID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) Tasks() []*models.Task {
	return s.mirror.snapshot()
}

// validateTaskInput normalizes the writable task fields, aborting before
// any write on the first failure.
func (s *taskServiceImpl) validateTaskInput(
	userID, title, description, status, priority,
	deadline, startDate, endDate, notes string,
) (*models.Task, string, error) {
	cleanTitle, err := s.validator.TaskTitle(title)
	if err != nil {
		return nil, "", err
	}
	cleanDescription, err := s.validator.TaskDescription(description)
	if err != nil {
		return nil, "", err
	}
	cleanStatus, err := s.validator.Status(status)
	if err != nil {
		return nil, "", err
	}
	cleanPriority, err := s.validator.Priority(priority)
	if err != nil {
		return nil, "", err
	}
	cleanDeadline, err := s.validator.ParsedDate(deadline)
	if err != nil {
		return nil, "", err
	}
	cleanStartDate, err := s.validator.ParsedDate(startDate)
	if err != nil {
		return nil, "", err
	}
	cleanEndDate, err := s.validator.ParsedDate(endDate)
	if err != nil {
		return nil, "", err
	}
	cleanNotes, err := s.validator.TaskNotes(notes)
	if err != nil {
		return nil, "", err
	}

	return &models.Task{
		UserID:      userID,
		Title:       cleanTitle,
		Description: cleanDescription,
		Status:      cleanStatus,
		Priority:    cleanPriority,
		Deadline:    cleanDeadline,
		StartDate:   cleanStartDate,
		EndDate:     cleanEndDate,
	}, cleanNotes, nil
}

// writeNote applies the note write strategy for a task that was just
// saved. Note-side failures are recorded and swallowed; the task write
// stays successful. The mirror reflects the sanitized text actually
// persisted, nil when nothing was.
func (s *taskServiceImpl) writeNote(ctx context.Context, task *models.Task, notes string, result *SaveResult) {
	noteID, hasExisting, err := s.repo.SelectNoteIDByTaskID(ctx, task.ID, task.UserID)
	if err != nil {
		s.swallowNoteError(task.ID, "failed to look up existing note", err, result)
		return
	}

	switch reconcile.DecideWrite(hasExisting, notes) {
	case reconcile.WriteNone:
		task.Notes = nil
		result.NoteSaved = true

	case reconcile.WriteInsert:
		noteUUID, err := uuid.NewV7()
		if err != nil {
			s.swallowNoteError(task.ID, "failed to generate note uuid", err, result)
			return
		}
		now := s.now()
		note := &models.Note{
			ID:        noteUUID.String(),
			TaskID:    task.ID,
			UserID:    task.UserID,
			Text:      notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertNote(ctx, note); err != nil {
			s.swallowNoteError(task.ID, "failed to insert note", err, result)
			return
		}
		task.Notes = &note.Text
		result.NoteSaved = true

	case reconcile.WriteUpdate:
		if err := s.repo.UpdateNoteText(ctx, noteID, notes, s.now()); err != nil {
			s.swallowNoteError(task.ID, "failed to update note", err, result)
			return
		}
		task.Notes = &notes
		result.NoteSaved = true

	case reconcile.WriteDelete:
		if err := s.repo.DeleteNote(ctx, noteID); err != nil {
			s.swallowNoteError(task.ID, "failed to delete note", err, result)
			return
		}
		task.Notes = nil
		result.NoteSaved = true
	}
}

func (s *taskServiceImpl) swallowNoteError(taskID, message string, err error, result *SaveResult) {
	s.logger.Warn().
		Err(err).
		Str("task_id", taskID).
		Msg(message)
	s.recorder.Record("error", message, err.Error())
	result.NoteSaved = false
	result.NoteErr = err
	result.Task.Notes = nil
}
