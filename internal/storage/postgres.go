package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskdesk/internal/models"
)

// noteWriteColumn is the designated column for the note text on the
// write path. The read path probes a superset of candidate names.
const noteWriteColumn = "notes"

type postgresRepo struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgresRepo(logger zerolog.Logger, pgPool *pgxpool.Pool) TaskRepository {
	return &postgresRepo{
		logger: logger,
		pgPool: pgPool,
	}
}

func (r *postgresRepo) SelectTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       title,
       description,
       status,
       priority,
       deadline,
       start_date,
       end_date,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pgPool.Query(
		ctx,
		selectTasksByUserIDQuery,
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.Deadline,
			&task.StartDate,
			&task.EndDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over task rows")
		return nil, err
	}

	r.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (r *postgresRepo) InsertTask(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   status,
                   priority,
                   deadline,
                   start_date,
                   end_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	_, err := r.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Deadline,
		task.StartDate,
		task.EndDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to insert task")
		return err
	}

	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (r *postgresRepo) UpdateTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    priority = $4,
    deadline = $5,
    start_date = $6,
    end_date = $7,
    updated_at = $8
WHERE id = $9 AND user_id = $10
RETURNING created_at
`
	err := r.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Deadline,
		task.StartDate,
		task.EndDate,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	).Scan(&task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.UserID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return err
	}

	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")
	return nil
}

func (r *postgresRepo) UpdateTaskStatus(ctx context.Context, taskID, userID, status string, updatedAt time.Time) (*models.Task, error) {
	task := &models.Task{
		ID:        taskID,
		UserID:    userID,
		Status:    status,
		UpdatedAt: updatedAt,
	}

	const updateTaskStatusQuery = `
UPDATE tasks
SET status = $1,
    updated_at = $2
WHERE id = $3 AND user_id = $4
RETURNING title, description, priority, deadline, start_date, end_date, created_at
`
	err := r.pgPool.QueryRow(
		ctx,
		updateTaskStatusQuery,
		task.Status,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Deadline,
		&task.StartDate,
		&task.EndDate,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error().
				Str("task_id", task.ID).
				Str("user_id", task.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		r.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task status")
		return nil, err
	}

	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task status")
	return task, nil
}

func (r *postgresRepo) DeleteTask(ctx context.Context, taskID, userID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := r.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Error().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	r.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

// SelectNoteRows returns the note rows as generic maps built from the
// result's field descriptions, so renamed text columns still come back.
func (r *postgresRepo) SelectNoteRows(ctx context.Context, userID string, taskIDs []string) ([]map[string]any, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	const selectNoteRowsQuery = `
SELECT *
FROM notes
WHERE user_id = $1 AND task_id = ANY($2)
ORDER BY created_at
`
	rows, err := r.pgPool.Query(
		ctx,
		selectNoteRowsQuery,
		userID,
		taskIDs,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select note rows")
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var noteRows []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to read note row values")
			return nil, err
		}

		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		noteRows = append(noteRows, row)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over note rows")
		return nil, err
	}

	r.logger.Debug().
		Int("count", len(noteRows)).
		Str("user_id", userID).
		Msg("selected note rows")
	return noteRows, nil
}

func (r *postgresRepo) SelectNoteIDByTaskID(ctx context.Context, taskID, userID string) (string, bool, error) {
	const selectNoteIDQuery = `
SELECT id
FROM notes
WHERE task_id = $1 AND user_id = $2
ORDER BY created_at
LIMIT 1
`
	var noteID string
	err := r.pgPool.QueryRow(
		ctx,
		selectNoteIDQuery,
		taskID,
		userID,
	).Scan(&noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}

		r.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select note id by task id")
		return "", false, err
	}
	return noteID, true, nil
}

func (r *postgresRepo) InsertNote(ctx context.Context, note *models.Note) error {
	const insertNoteQuery = `
INSERT INTO notes (id,
                   task_id,
                   user_id,
                   ` + noteWriteColumn + `,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.pgPool.Exec(
		ctx,
		insertNoteQuery,
		note.ID,
		note.TaskID,
		note.UserID,
		note.Text,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("note_id", note.ID).
			Str("task_id", note.TaskID).
			Msg("failed to insert note")
		return err
	}

	r.logger.Debug().
		Str("note_id", note.ID).
		Str("task_id", note.TaskID).
		Msg("inserted note")
	return nil
}

func (r *postgresRepo) UpdateNoteText(ctx context.Context, noteID, text string, updatedAt time.Time) error {
	const updateNoteQuery = `
UPDATE notes
SET ` + noteWriteColumn + ` = $1,
    updated_at = $2
WHERE id = $3
`
	_, err := r.pgPool.Exec(
		ctx,
		updateNoteQuery,
		text,
		updatedAt,
		noteID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("note_id", noteID).
			Msg("failed to update note text")
		return err
	}

	r.logger.Debug().
		Str("note_id", noteID).
		Msg("updated note text")
	return nil
}

func (r *postgresRepo) DeleteNote(ctx context.Context, noteID string) error {
	const deleteNoteQuery = `
DELETE FROM notes
WHERE id = $1
`
	_, err := r.pgPool.Exec(
		ctx,
		deleteNoteQuery,
		noteID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("note_id", noteID).
			Msg("failed to delete note")
		return err
	}

	r.logger.Debug().
		Str("note_id", noteID).
		Msg("deleted note")
	return nil
}
