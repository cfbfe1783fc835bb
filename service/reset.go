package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"smarthotel/apperror"
	"smarthotel/database"
	"smarthotel/logger"
	"smarthotel/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResetStore persists pending password resets by token. Get returns nil for
// unknown or expired tokens.
type ResetStore interface {
	Put(ctx context.Context, token string, reset model.PasswordReset, ttl time.Duration) error
	Update(ctx context.Context, token string, reset model.PasswordReset) error
	Get(ctx context.Context, token string) (*model.PasswordReset, error)
	Delete(ctx context.Context, token string) error
}

type Mailer interface {
	SendOTP(ctx context.Context, email, otp string) error
}

// LogMailer writes the OTP to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, email, otp string) error {
	logger.Info(ctx, "password reset otp issued", zap.String("email", email), zap.String("otp", otp))
	return nil
}

// maxOTPAttempts wrong guesses burn the reset token.
const maxOTPAttempts = 5

type ResetService struct {
	users  *UserService
	store  ResetStore
	mailer Mailer
	ttl    time.Duration
}

func NewResetService(users *UserService, store ResetStore, mailer Mailer, ttl time.Duration) *ResetService {
	return &ResetService{users: users, store: store, mailer: mailer, ttl: ttl}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%05d", n.Int64()+10000), nil
}

// RequestReset returns the reset token the client must present in the next
// two steps.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", apperror.Validation("email is required")
	}
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperror.NotFound("email not found")
	}

	otp, err := generateOTP()
	if err != nil {
		return "", apperror.Dependency("failed to generate otp", err)
	}
	token := uuid.NewString()
	if err := s.store.Put(ctx, token, model.PasswordReset{Email: email, OTP: otp}, s.ttl); err != nil {
		return "", apperror.Dependency("failed to store reset request", err)
	}
	if err := s.mailer.SendOTP(ctx, email, otp); err != nil {
		_ = s.store.Delete(ctx, token)
		return "", apperror.Dependency("failed to send otp", err)
	}
	return token, nil
}

func (s *ResetService) VerifyOTP(ctx context.Context, token, otp string) error {
	token, otp = strings.TrimSpace(token), strings.TrimSpace(otp)
	if token == "" || otp == "" {
		return apperror.Validation("reset_token and otp are required")
	}
	reset, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	if reset.Verified {
		return apperror.Validation("otp already used")
	}
	if subtle.ConstantTimeCompare([]byte(reset.OTP), []byte(otp)) != 1 {
		return s.recordFailedAttempt(ctx, token, reset)
	}

	reset.Verified = true
	if err := s.store.Update(ctx, token, *reset); err != nil {
		return resetUpdateError(err)
	}
	return nil
}

func (s *ResetService) recordFailedAttempt(ctx context.Context, token string, reset *model.PasswordReset) error {
	reset.Attempts++
	if reset.Attempts >= maxOTPAttempts {
		if err := s.store.Delete(ctx, token); err != nil {
			return apperror.Dependency("failed to revoke reset request", err)
		}
		logger.Warn(ctx, "reset request revoked after repeated invalid otp", zap.String("email", reset.Email))
		return apperror.Validation("too many invalid attempts, request a new code")
	}
	if err := s.store.Update(ctx, token, *reset); err != nil {
		return resetUpdateError(err)
	}
	return apperror.Validation("invalid otp")
}

func resetUpdateError(err error) error {
	if errors.Is(err, database.ErrResetNotFound) {
		return apperror.Validation("reset request expired")
	}
	return apperror.Dependency("failed to update reset request", err)
}

func (s *ResetService) UpdatePassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" || password == "" {
		return apperror.Validation("reset_token and password are required")
	}
	reset, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	if !reset.Verified {
		return apperror.Validation("otp not verified")
	}
	if err := s.users.SetPassword(ctx, reset.Email, password); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, token); err != nil {
		logger.Warn(ctx, "failed to delete reset request", zap.Error(err))
	}
	return nil
}

func (s *ResetService) load(ctx context.Context, token string) (*model.PasswordReset, error) {
	reset, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, apperror.Dependency("failed to load reset request", err)
	}
	if reset == nil {
		return nil, apperror.Validation("reset request expired or unknown")
	}
	return reset, nil
}
