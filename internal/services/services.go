package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskdesk/internal/lockout"
	"taskdesk/internal/models"
)

var (
	ErrAuthRequired         = errors.New("authentication required")
	ErrRateLimited          = errors.New("rate limit exceeded, please slow down")
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

// AccountLockedError is returned while a login lockout is active.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, try again in %s",
		lockout.FormatRemaining(e.Remaining))
}

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It checks the lockout state and the login rate limit before
	// touching credentials; failed credentials count toward the lockout
	// and a success clears it. On success all prior sessions for the
	// user are replaced by a fresh one with a new JWT token pair.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token and issues a new access token.
	//
	// It returns ErrSessionNotFound if no session matches the refresh
	// token or ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user with the given email and password and
	// opens a first session.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

// TaskService orchestrates task and note operations: auth check, rate
// limit, validation, the remote call, note reconciliation on reads, and
// an in-memory mirror kept consistent with the last known-good server
// state.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*SaveResult, error)
	FetchTasksForUser(ctx context.Context, userID string) ([]*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*SaveResult, error)
	UpdateTaskStatus(ctx context.Context, params UpdateTaskStatusParams) (*models.Task, error)
	DeleteTask(ctx context.Context, params DeleteTaskParams) error

	// Tasks returns a snapshot of the in-memory mirror.
	Tasks() []*models.Task
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    string
	StartDate   string
	EndDate     string
	Notes       string
}

type UpdateTaskParams struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    string
	StartDate   string
	EndDate     string
	Notes       string
}

type UpdateTaskStatusParams struct {
	ID     string
	UserID string
	Status string
}

type DeleteTaskParams struct {
	ID     string
	UserID string
}

// SaveResult distinguishes full success from "task saved, note failed".
// A note-side failure never fails the surrounding task write; callers can
// surface NoteErr as a soft warning instead of losing it silently.
type SaveResult struct {
	Task      *models.Task
	NoteSaved bool
	NoteErr   error
}
