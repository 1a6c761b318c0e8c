package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/security"
)

type stubRepo struct {
	byID      map[uuid.UUID]*models.User
	createErr error
	updated   *models.User
}

func newStubRepo(users ...*models.User) *stubRepo {
	repo := &stubRepo{byID: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		repo.byID[u.ID] = u
	}
	return repo
}

func (s *stubRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	cpy := *user
	s.byID[user.ID] = &cpy
	return nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (s *stubRepo) Update(ctx context.Context, user *models.User) error {
	s.updated = user
	cpy := *user
	s.byID[user.ID] = &cpy
	return nil
}

func (s *stubRepo) List(ctx context.Context, p pagination.Params) ([]models.User, int64, error) {
	users := make([]models.User, 0, len(s.byID))
	for _, u := range s.byID {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

func activeUser(email string, role enums.Role) *models.User {
	return &models.User{
		ID:     uuid.New(),
		Email:  email,
		Role:   role,
		Status: enums.UserStatusActive,
	}
}

func TestCreateUser(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), CreateUserInput{
		Email:    " Marketing@Test.com ",
		Password: "SuperSecret123!",
		Role:     enums.RoleMarketer,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if dto.Email != "marketing@test.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.Status != enums.UserStatusActive {
		t.Fatalf("expected active status, got %s", dto.Status)
	}

	stored := repo.byID[dto.ID]
	if stored == nil || stored.PasswordHash == "SuperSecret123!" {
		t.Fatal("password must be stored hashed")
	}
	ok, err := security.VerifyPassword("SuperSecret123!", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatal("stored hash must verify the original password")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, err := NewService(newStubRepo(), config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"bad email", CreateUserInput{Email: "nope", Password: "SuperSecret123!", Role: enums.RoleViewer}},
		{"short password", CreateUserInput{Email: "a@b.com", Password: "short", Role: enums.RoleViewer}},
		{"bad role", CreateUserInput{Email: "a@b.com", Password: "SuperSecret123!", Role: "superuser"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			var coded *pkgerrors.Error
			if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = fmt.Errorf(`duplicate key value violates unique constraint "users_email_key"`)
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateUserInput{
		Email:    "a@b.com",
		Password: "SuperSecret123!",
		Role:     enums.RoleViewer,
	})
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateUserGuardsSelfService(t *testing.T) {
	admin := activeUser("admin@test.com", enums.RoleAdmin)
	other := activeUser("viewer@test.com", enums.RoleViewer)
	repo := newStubRepo(admin, other)
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	inactive := enums.UserStatusInactive
	_, err = svc.Update(context.Background(), admin.ID, admin.ID, UpdateUserInput{Status: &inactive})
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected rejection of self-deactivation, got %v", err)
	}

	viewer := enums.RoleViewer
	_, err = svc.Update(context.Background(), admin.ID, admin.ID, UpdateUserInput{Role: &viewer})
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected rejection of self-demotion, got %v", err)
	}

	marketer := enums.RoleMarketer
	dto, err := svc.Update(context.Background(), admin.ID, other.ID, UpdateUserInput{Role: &marketer, Status: &inactive})
	if err != nil {
		t.Fatalf("update other user: %v", err)
	}
	if dto.Role != enums.RoleMarketer || dto.Status != enums.UserStatusInactive {
		t.Fatalf("unexpected updated user %+v", dto)
	}
}

func TestDeactivateUser(t *testing.T) {
	admin := activeUser("admin@test.com", enums.RoleAdmin)
	other := activeUser("viewer@test.com", enums.RoleViewer)
	repo := newStubRepo(admin, other)
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Deactivate(context.Background(), admin.ID, admin.ID); err == nil {
		t.Fatal("expected self-deactivation to fail")
	}

	if err := svc.Deactivate(context.Background(), admin.ID, other.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.byID[other.ID].Status != enums.UserStatusInactive {
		t.Fatal("expected target user inactive")
	}

	// Second call is a no-op.
	repo.updated = nil
	if err := svc.Deactivate(context.Background(), admin.ID, other.ID); err != nil {
		t.Fatalf("repeat deactivate: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("expected no write for already-inactive user")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, err := NewService(newStubRepo(), config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.GetByID(context.Background(), uuid.New())
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
