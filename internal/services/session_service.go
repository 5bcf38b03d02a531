package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Turan141/payments-terminal/config"
	"github.com/Turan141/payments-terminal/internal/status"
	"github.com/Turan141/payments-terminal/utils"
)

// SessionService implements the mocked merchant sign-in. The original demo
// kept a boolean auth flag in browser storage; here it is an opaque token in
// redis with a TTL, checked by middleware on merchant endpoints.
type SessionService struct {
	Redis *redis.Client

	merchantEmail string
	passwordHash  string
	ttl           time.Duration
	loginDelay    time.Duration

	sleep    func(time.Duration)
	newToken func() (string, error)
}

func NewSessionService(redisClient *redis.Client, cfg *config.Config) *SessionService {
	return &SessionService{
		Redis:         redisClient,
		merchantEmail: cfg.MerchantEmail,
		passwordHash:  cfg.MerchantPasswordHash,
		ttl:           cfg.SessionTTL,
		loginDelay:    cfg.LoginDelay,
		sleep:         time.Sleep,
		newToken:      func() (string, error) { return utils.GenerateCode(16) },
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Login checks the single configured merchant credential and issues a
// session token. The delay mirrors the original screen's simulated call.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, error) {
	s.sleep(s.loginDelay)

	if email != s.merchantEmail {
		return "", status.ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", status.ErrInvalidLogin
	}

	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("login: token: %w", err)
	}

	if err := s.Redis.Set(ctx, sessionKey(token), email, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("login: redis: %w", err)
	}

	log.WithField("email", email).Info("Merchant signed in")
	return token, nil
}

// Validate resolves a token to the merchant email.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", status.ErrInvalidSession
	}

	email, err := s.Redis.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", status.ErrInvalidSession
	}
	if err != nil {
		return "", fmt.Errorf("validate: redis: %w", err)
	}

	return email, nil
}

// Logout invalidates the token.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.Redis.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("logout: redis: %w", err)
	}
	return nil
}
