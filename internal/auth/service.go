package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linguaku/linguaku/internal/gateway"
	"github.com/linguaku/linguaku/internal/model"
)

// ErrVerificationRequired is returned by Login for unverified accounts.
var ErrVerificationRequired = gateway.ErrVerificationRequired

// Service runs the account flows and keeps the AuthStore in sync.
type Service struct {
	api    *gateway.Client
	store  AuthStore
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(api *gateway.Client, s AuthStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{api: api, store: s, logger: logger}
}

// Session returns a SessionContext over the service's store.
func (s *Service) Session() *SessionContext {
	return NewSessionContext(s.store)
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("email", "Please enter your email and password")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	p, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, p.Token, p.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("signed in", "user", p.User.Email)
	return &p.User, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Register creates an account. When the server issues a token right away
// the session is stored; otherwise the result asks for email verification.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*gateway.RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Confirm == "" {
		return nil, invalid("form", "Please complete all required fields")
	}
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidateRegisterPassword(in.Password, in.Confirm); err != nil {
		return nil, err
	}

	res, err := s.api.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if !res.RequiresVerification && res.Token != "" && res.User != nil {
		if err := s.store.Set(ctx, res.Token, *res.User); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return res, nil
}

// GoogleSignIn exchanges an ID token obtained from the identity provider.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*model.User, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, invalid("idToken", "Google sign-in was unsuccessful")
	}
	p, err := s.api.GoogleSignIn(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, p.Token, p.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &p.User, nil
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	return s.api.ForgotPassword(ctx, strings.TrimSpace(email))
}

// ResetPassword sets a new password with an emailed reset token.
func (s *Service) ResetPassword(ctx context.Context, resetToken, password, confirm string) (string, error) {
	if strings.TrimSpace(resetToken) == "" {
		return "", invalid("token", "Invalid or missing reset token")
	}
	if err := ValidatePassword(password, confirm); err != nil {
		return "", err
	}
	return s.api.ResetPassword(ctx, resetToken, password)
}

// ResendVerification asks for another verification email.
func (s *Service) ResendVerification(ctx context.Context, email string) (string, error) {
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	return s.api.ResendVerification(ctx, strings.TrimSpace(email))
}

// Logout clears the stored session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Refresh reloads the profile from the server and updates the cache.
// A rejected token clears the session.
func (s *Service) Refresh(ctx context.Context) (*model.User, error) {
	tok, err := s.store.Token(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.api.Me(ctx)
	if errors.Is(err, gateway.ErrAuthExpired) {
		if cerr := s.store.Clear(ctx); cerr != nil {
			s.logger.Warn("failed to clear expired session", "error", cerr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, tok, *u); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// UpdateProfile renames the user and refreshes the cached profile.
func (s *Service) UpdateProfile(ctx context.Context, name string) (*model.User, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	tok, err := s.store.Token(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.api.UpdateProfile(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, tok, *u); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password of the signed-in user.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) (string, error) {
	if current == "" {
		return "", invalid("current", "Please enter your current password")
	}
	if err := ValidatePassword(next, confirm); err != nil {
		return "", err
	}
	return s.api.ChangePassword(ctx, current, next)
}
