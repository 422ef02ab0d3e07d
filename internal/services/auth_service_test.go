package services

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/validate"
)

func newTestAuthService(accessTokenTTL time.Duration) *authServiceImpl {
	return &authServiceImpl{
		logger:            zerolog.Nop(),
		validator:         validate.New(zerolog.Nop()),
		jwtIssuer:         "taskdesk",
		jwtSigningKey:     []byte("test-signing-key"),
		jwtAccessTokenTTL: accessTokenTTL,
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s := newTestAuthService(15 * time.Minute)

	_, err := s.Register(context.Background(), LoginParams{
		Email:    "user@example.com",
		Password: "short",
	})

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestAuthService(15 * time.Minute)

	token, expiresAt, err := s.generateAccessToken("session-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := s.ParseJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, "taskdesk", claims.Issuer)
	assert.Equal(t, "session-1", claims.Subject)
}

func TestParseJWTTokenRejectsExpired(t *testing.T) {
	s := newTestAuthService(-time.Minute)

	token, _, err := s.generateAccessToken("session-1")
	require.NoError(t, err)

	_, err = s.ParseJWTToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseJWTTokenRejectsWrongKey(t *testing.T) {
	s := newTestAuthService(15 * time.Minute)
	token, _, err := s.generateAccessToken("session-1")
	require.NoError(t, err)

	other := newTestAuthService(15 * time.Minute)
	other.jwtSigningKey = []byte("a-different-key")
	_, err = other.ParseJWTToken(token)
	require.Error(t, err)
}

func TestParseJWTTokenRejectsWrongIssuer(t *testing.T) {
	s := newTestAuthService(15 * time.Minute)
	token, _, err := s.generateAccessToken("session-1")
	require.NoError(t, err)

	other := newTestAuthService(15 * time.Minute)
	other.jwtIssuer = "someone-else"
	_, err = other.ParseJWTToken(token)
	require.Error(t, err)
}

func TestAccountLockedErrorMessage(t *testing.T) {
	err := &AccountLockedError{Remaining: 14*time.Minute + 30*time.Second}
	assert.Equal(t, "account temporarily locked, try again in 15 minutes", err.Error())

	err = &AccountLockedError{Remaining: 20 * time.Second}
	assert.Equal(t, "account temporarily locked, try again in 1 minute", err.Error())
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "connection refused" }
func (fakeNetError) Timeout() bool   { return false }
func (fakeNetError) Temporary() bool { return true }

var _ net.Error = fakeNetError{}

func TestCategorizeRemoteError(t *testing.T) {
	cases := map[RemoteCategory][]error{
		RemoteNotFound: {
			pgx.ErrNoRows,
			ErrTaskNotFound,
		},
		RemoteNetworkError: {
			fakeNetError{},
			context.DeadlineExceeded,
			context.Canceled,
			&pgconn.PgError{Code: pgerrcode.ConnectionFailure},
		},
		RemoteAccessDenied: {
			&pgconn.PgError{Code: pgerrcode.InsufficientPrivilege},
		},
		RemoteServerError: {
			&pgconn.PgError{Code: pgerrcode.UniqueViolation},
			&pgconn.PgError{Code: pgerrcode.SyntaxError},
		},
		RemoteUnknownError: {
			errors.New("something odd"),
		},
	}
	for want, errs := range cases {
		for _, err := range errs {
			assert.Equal(t, want, categorizeRemoteError(err), "error %v", err)
		}
	}
}

func TestRemoteErrorSurfacesGenericMessage(t *testing.T) {
	cause := errors.New("pq: relation tasks_internal does not exist")
	err := wrapRemote(cause)

	assert.NotContains(t, err.Error(), "tasks_internal")
	assert.ErrorIs(t, err, cause)
}
