package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// SessionRevoker ends all sessions belonging to a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

// UserService manages user accounts on behalf of HR.
type UserService struct {
	users      repository.UserRepository
	sessions   SessionRevoker
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles what the user service needs.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   SessionRevoker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	FullName string
	Email    string
	Password string
	Role     domain.Role
}

// UserUpdateInput lists the mutable account fields. Nil fields are unchanged.
type UserUpdateInput struct {
	FullName *string
	Role     *domain.Role
	Active   *bool
	Password *string
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

func userPayload(u *domain.User) events.UserPayload {
	return events.UserPayload{Email: u.Email, Role: u.Role, Active: u.Active}
}

func mapUserErr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

// Create registers a new account.
func (s *UserService) Create(ctx context.Context, actorID string, input UserCreateInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.EventUserCreated, user.ID, actorID, userPayload(user))
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err, id)
	}
	return user, nil
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, page repository.Page) ([]domain.User, int, error) {
	users, err := s.users.List(ctx, page)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return users, total, nil
}

// Update applies input to the user. Turning an account inactive ends its
// sessions.
func (s *UserService) Update(ctx context.Context, actorID, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err, id)
	}
	wasActive := user.Active

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(*input.Role)})
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserErr(err, id)
	}

	if wasActive && !user.Active {
		if err := s.endSessions(ctx, user.ID); err != nil {
			return nil, err
		}
		publish(ctx, s.dispatcher, events.EventUserDeactivated, user.ID, actorID, userPayload(user))
		return user, nil
	}
	publish(ctx, s.dispatcher, events.EventUserUpdated, user.ID, actorID, userPayload(user))
	return user, nil
}

// Deactivate disables the account and revokes all of its refresh tokens.
// Deactivating an inactive account is a no-op.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperrors.NewConflict("cannot deactivate your own account", nil)
	}
	inactive := false
	_, err := s.Update(ctx, actorID, id, UserUpdateInput{Active: &inactive})
	return err
}

func (s *UserService) endSessions(ctx context.Context, userID string) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// EnsureBootstrap creates the first HR account when no users exist. It
// reports whether an account was created.
func (s *UserService) EnsureBootstrap(ctx context.Context, cfg config.AuthConfig) (bool, error) {
	if cfg.BootstrapEmail == "" {
		return false, nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if n > 0 {
		return false, nil
	}
	user, err := s.Create(ctx, "", UserCreateInput{
		FullName: cfg.BootstrapName,
		Email:    cfg.BootstrapEmail,
		Password: cfg.BootstrapPassword,
		Role:     domain.RoleHR,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap HR account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}
