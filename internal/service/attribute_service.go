package service

import (
	"context"
	"strings"

	"ladle/internal/models"
	"ladle/internal/repository"
)

// AttributeService exposes the attribute registry for one entity kind. Tags
// and ingredients get separate instances of the same generic implementation.
type AttributeService[T repository.Attribute] struct {
	repo *repository.AttributeRepository[T]
}

// NewAttributeService returns a new AttributeService bound to the given repository.
func NewAttributeService[T repository.Attribute](repo *repository.AttributeRepository[T]) *AttributeService[T] {
	return &AttributeService[T]{repo: repo}
}

// List returns the owner's attributes ordered by name descending. With
// assignedOnly, only attributes referenced by at least one of the owner's
// recipes are included.
func (s *AttributeService[T]) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error) {
	return s.repo.List(ctx, ownerID, assignedOnly)
}

// GetOrCreate resolves the name to an owner-scoped entity, creating it when
// absent. The boolean reports whether the entity was created.
func (s *AttributeService[T]) GetOrCreate(ctx context.Context, ownerID uint, name string) (T, bool, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, false, models.NewValidationError("Name must not be empty")
	}
	return s.repo.GetOrCreate(ctx, ownerID, name)
}

// Rename changes the entity's name in place under the ownership check.
func (s *AttributeService[T]) Rename(ctx context.Context, id, ownerID uint, name string) (T, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, models.NewValidationError("Name must not be empty")
	}
	return s.repo.Rename(ctx, id, ownerID, name)
}

// Delete removes the entity and detaches it from all recipes.
func (s *AttributeService[T]) Delete(ctx context.Context, id, ownerID uint) error {
	return s.repo.Delete(ctx, id, ownerID)
}
