package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Turan141/payments-terminal/internal/status"
)

func newTestSessionService(t *testing.T) (*SessionService, redismock.ClientMock) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	svc := &SessionService{
		Redis:         client,
		merchantEmail: "merchant@example.com",
		passwordHash:  string(hash),
		ttl:           12 * time.Hour,
		loginDelay:    time.Second,
		sleep:         func(time.Duration) {},
		newToken:      func() (string, error) { return "ABCD1234", nil },
	}
	return svc, mock
}

func TestLoginSuccess(t *testing.T) {
	svc, mock := newTestSessionService(t)
	mock.ExpectSet("session:ABCD1234", "merchant@example.com", 12*time.Hour).SetVal("OK")

	token, err := svc.Login(context.Background(), "merchant@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongEmail(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.Login(context.Background(), "stranger@example.com", "secret123")

	assert.ErrorIs(t, err, status.ErrInvalidLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.Login(context.Background(), "merchant@example.com", "nope")

	assert.ErrorIs(t, err, status.ErrInvalidLogin)
}

func TestValidateKnownToken(t *testing.T) {
	svc, mock := newTestSessionService(t)
	mock.ExpectGet("session:ABCD1234").SetVal("merchant@example.com")

	email, err := svc.Validate(context.Background(), "ABCD1234")

	require.NoError(t, err)
	assert.Equal(t, "merchant@example.com", email)
}

func TestValidateUnknownToken(t *testing.T) {
	svc, mock := newTestSessionService(t)
	mock.ExpectGet("session:expired").RedisNil()

	_, err := svc.Validate(context.Background(), "expired")

	assert.ErrorIs(t, err, status.ErrInvalidSession)
}

func TestValidateEmptyToken(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.Validate(context.Background(), "")

	assert.ErrorIs(t, err, status.ErrInvalidSession)
}

func TestLogout(t *testing.T) {
	svc, mock := newTestSessionService(t)
	mock.ExpectDel("session:ABCD1234").SetVal(1)

	err := svc.Logout(context.Background(), "ABCD1234")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
