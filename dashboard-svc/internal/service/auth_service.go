package service

import (
	"context"
	"errors"
	"fmt"

	"restodash/dashboard-svc/internal/cache"
	"restodash/dashboard-svc/internal/client"
	"restodash/dashboard-svc/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthService struct {
	api      AuthAPI
	tokens   TokenStore
	cache    *cache.Cache
	notifier Notifier
	validate *validator.Validate
	log      *zap.Logger
}

func NewAuthService(api AuthAPI, tokens TokenStore, c *cache.Cache, notifier Notifier, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		api:      api,
		tokens:   tokens,
		cache:    c,
		notifier: notifier,
		validate: newValidator(),
		log:      log.Named("auth"),
	}
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, validationError(err)
	}

	session, err := s.api.Login(ctx, creds)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Login failed: %s", client.MessageOf(err)))
		return nil, err
	}
	if err := s.tokens.Set(ctx, session.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	// a different account must not see the previous one's data
	s.cache.Remove(KeyUser)
	s.cache.Remove(KeyOrders)
	s.cache.Remove(KeyMenus)

	s.notifier.Success("Logged in successfully")
	s.log.Info("logged in", zap.String("user", session.User.ID))
	user := session.User
	return &user, nil
}

func (s *AuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.api.Signup(ctx, req)
	if err != nil {
		s.notifier.Error(fmt.Sprintf("Signup failed: %s", client.MessageOf(err)))
		return nil, err
	}
	s.notifier.Success("Account created successfully")
	return user, nil
}

// CurrentUser returns the account behind the stored token. Without a token
// it answers client.ErrUnauthenticated and never calls the API.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	_, ok, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return nil, client.ErrUnauthenticated
	}

	user, err := cache.Query(ctx, s.cache, KeyUser, s.api.Me)
	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			s.cache.Remove(KeyUser)
		}
		return nil, err
	}
	return user, nil
}

// IsAuthenticated reports false on any failure, never an error.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	_, err := s.CurrentUser(ctx)
	if err != nil && !errors.Is(err, client.ErrUnauthenticated) {
		s.log.Debug("authentication check failed", zap.Error(err))
	}
	return err == nil
}

// Logout only clears local state; the API keeps no session to end.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.cache.Remove(KeyUser)
	s.cache.Remove(KeyOrders)
	s.cache.Remove(KeyMenus)
	return nil
}
