package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/security"
)

const minPasswordLength = 12

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, p pagination.Params) ([]models.User, int64, error)
}

// Service exposes administrative user management.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, page pagination.Params) (*UserPageDTO, error)
	Update(ctx context.Context, actorID, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Deactivate(ctx context.Context, actorID, id uuid.UUID) error
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a user management service.
func NewService(repo userRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

// CreateUserInput captures the data required to register an account.
type CreateUserInput struct {
	Email    string
	Password string
	Role     enums.Role
}

// UpdateUserInput captures the mutable account fields.
type UpdateUserInput struct {
	Role     *enums.Role
	Status   *enums.UserStatus
	Password *string
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       enums.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*UserPageDTO, error) {
	params := pagination.Normalize(page)
	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	result := &UserPageDTO{
		Users:      make([]UserDTO, 0, len(users)),
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: pagination.TotalPages(int(total), params.PageSize),
	}
	for i := range users {
		result.Users = append(result.Users, *FromModel(&users[i]))
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, actorID, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		if actorID == id && *input.Role != user.Role {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot change own role")
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if actorID == id && *input.Status != enums.UserStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate own account")
		}
		user.Status = *input.Status
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate own account")
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Status == enums.UserStatusInactive {
		return nil
	}
	user.Status = enums.UserStatusInactive
	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
