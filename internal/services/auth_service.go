package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/metrics"
	"yamdb/internal/models"
	"yamdb/internal/store"
)

// AuthService runs signup and the confirmation code exchange.
type AuthService struct {
	store  *store.Store
	mail   CodeSender
	tokens *TokenIssuer
	codes  IntSource
	log    *zap.Logger
}

func NewAuthService(st *store.Store, mail CodeSender, tokens *TokenIssuer, codes IntSource, log *zap.Logger) *AuthService {
	return &AuthService{store: st, mail: mail, tokens: tokens, codes: codes, log: log}
}

// UnusablePassword returns a "!"-prefixed random marker. No password hash
// ever starts with "!", so the account can never log in with a password.
func UnusablePassword() string {
	return "!" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Signup registers username/email or, when that exact pair already exists,
// mails the existing user a fresh code. The new code replaces the old one.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := checkIdentityShape(username, email); err != nil {
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	existing, err := s.store.UserByEmailAndUsername(ctx, email, username)
	switch {
	case err == nil:
		if err := s.reissueCode(ctx, existing); err != nil {
			return nil, err
		}
		metrics.SignupsTotal.WithLabelValues("repeated").Inc()
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	if err := s.checkNewIdentity(ctx, username, email); err != nil {
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	code := GenerateConfirmationCode(ConfirmationCodeLength, s.codes)
	user := &models.User{
		Username:         username,
		Email:            email,
		Role:             models.RoleUser,
		Password:         UnusablePassword(),
		ConfirmationCode: &code,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			metrics.SignupsTotal.WithLabelValues("rejected").Inc()
			return nil, apperr.Validation(apperr.NonFieldErrors, "a user with this username or email already exists")
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.mail.SendConfirmationCode(user.Email, user.Username, code)
	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.log.Info("User signed up", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) reissueCode(ctx context.Context, u *models.User) error {
	code := GenerateConfirmationCode(ConfirmationCodeLength, s.codes)
	if err := s.store.SetConfirmationCode(ctx, u.ID, code); err != nil {
		return fmt.Errorf("reissue confirmation code: %w", err)
	}
	u.ConfirmationCode = &code
	s.mail.SendConfirmationCode(u.Email, u.Username, code)
	s.log.Info("Confirmation code reissued", zap.Uint("user_id", u.ID))
	return nil
}

// checkIdentityShape covers the checks that need no lookups: presence,
// length and email syntax.
func checkIdentityShape(username, email string) error {
	ve := &apperr.ValidationError{}
	switch {
	case username == "":
		ve.Add("username", "This field is required.")
	case utf8.RuneCountInString(username) > UsernameMaxLength:
		ve.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", UsernameMaxLength))
	}
	switch {
	case email == "":
		ve.Add("email", "This field is required.")
	case !validEmail(email):
		ve.Add("email", "Enter a valid email address.")
	}
	return ve.Err()
}

// checkNewIdentity runs in a fixed order and reports the first failure.
func (s *AuthService) checkNewIdentity(ctx context.Context, username, email string) error {
	if username == ReservedUsername {
		return apperr.Validation("username", `The username "me" is not allowed.`)
	}
	taken, err := s.store.EmailTaken(ctx, email, 0)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	if taken {
		return apperr.Validation("email", "A user with this email already exists.")
	}
	taken, err = s.store.UsernameTaken(ctx, username, 0)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	if taken {
		return apperr.Validation("username", "A user with this username already exists.")
	}
	if !ValidUsername(username) {
		return apperr.Validation("username", "Invalid username format.")
	}
	return nil
}

// ConfirmAndIssueToken exchanges a pending code for an access token. The
// code is consumed on success.
func (s *AuthService) ConfirmAndIssueToken(ctx context.Context, username, code string) (string, error) {
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)

	if username == "" {
		return "", apperr.Validation("username", "This field is required.")
	}
	if !ValidUsername(username) {
		return "", apperr.Validation("username", "Invalid username format.")
	}

	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if code == "" || user.ConfirmationCode == nil ||
		subtle.ConstantTimeCompare([]byte(*user.ConfirmationCode), []byte(code)) != 1 {
		metrics.TokensIssuedTotal.WithLabelValues("rejected").Inc()
		return "", apperr.Validation("confirmation_code", "Invalid confirmation code.")
	}

	if err := s.store.ConfirmUser(ctx, user.ID); err != nil {
		return "", fmt.Errorf("confirm user: %w", err)
	}
	user.IsConfirmed = true
	user.ConfirmationCode = nil

	token, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return "", err
	}
	metrics.TokensIssuedTotal.WithLabelValues("issued").Inc()
	s.log.Info("Access token issued", zap.Uint("user_id", user.ID))
	return token, nil
}
