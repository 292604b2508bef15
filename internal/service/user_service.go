package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UserService manages account registration and maintenance.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	dispatcher events.Dispatcher
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// ProfileUpdateInput carries self-service profile changes. Nil fields are
// left untouched.
type ProfileUpdateInput struct {
	Name     *string
	Password *string
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, dispatcher: dispatcher}
}

// Register creates a new account. Role defaults to USER and is fixed at
// creation.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserRegistered,
		ActorEmail: user.Email,
		Payload: events.UserRegisteredPayload{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
	})
	return user, nil
}

// GetByEmail resolves one account.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateProfile applies self-service changes to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, email string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(email)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes an account by id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
