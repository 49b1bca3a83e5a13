// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"

	"ladle/internal/models"
	"ladle/internal/repository"
	"ladle/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements the identity store: registration, credential checks
// and profile updates.
type UserService struct {
	repo repository.UserRepository
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// UpdateProfileInput carries a profile mutation for the calling user. Nil
// fields are left untouched on partial updates; full updates require both.
type UpdateProfileInput struct {
	UserID   uint
	Name     *string
	Password *string
	Partial  bool
}

// NewUserService returns a new UserService.
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, staff, superuser bool) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	// Only the domain part is case-insensitive; the local part is stored
	// verbatim.
	email = models.NormalizeEmail(email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hashed),
		Name:        in.Name,
		IsActive:    true,
		IsStaff:     staff,
		IsSuperuser: superuser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a regular active user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, false, false)
}

// CreateSuperuser creates a staff superuser account.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, RegisterInput{Email: email, Password: password}, true, true)
}

// Authenticate checks the credentials and returns the matching user. The
// error never reveals which part of the credentials was wrong; a blank
// password always fails.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if password == "" {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	user, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile updates the caller's own name and/or password.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if !in.Partial && (in.Name == nil || in.Password == nil) {
		return nil, models.NewValidationError("Name and password are required")
	}

	user, err := s.repo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
