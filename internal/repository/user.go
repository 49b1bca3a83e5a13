package repository

import (
	"context"
	"errors"
	"time"

	"ladle/internal/cache"
	"ladle/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// userCacheEntry mirrors models.User for the cache. The model's JSON tags
// hide the password hash and staff flags from API responses, which would also
// strip them on a cache round trip; this struct keeps the trip lossless.
type userCacheEntry struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *userCacheEntry) fromModel(u *models.User) {
	*e = userCacheEntry{
		ID:          u.ID,
		Email:       u.Email,
		Password:    u.Password,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (e *userCacheEntry) toModel() *models.User {
	return &models.User{
		ID:          e.ID,
		Email:       e.Email,
		Password:    e.Password,
		Name:        e.Name,
		IsActive:    e.IsActive,
		IsStaff:     e.IsStaff,
		IsSuperuser: e.IsSuperuser,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var entry userCacheEntry
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &entry, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		entry.fromModel(&user)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return entry.toModel(), nil
}

// GetByEmail returns (nil, nil) when no user matches, so callers can
// distinguish "absent" from storage failures.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}
