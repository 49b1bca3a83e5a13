package repository

import (
	"context"
	"fmt"

	"ladle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attribute constrains the generic attribute repository to the two
// owner-scoped named entities recipes reference. Tags and ingredients share
// one implementation parameterized by kind instead of two copies.
type Attribute interface {
	*models.Tag | *models.Ingredient
	GetID() uint
	GetName() string
	SetName(string)
	GetOwnerID() uint
	Kind() models.AttributeKind
}

// AttributeRepository manages one kind of owner-scoped named entity.
type AttributeRepository[T Attribute] struct {
	db        *gorm.DB
	resource  string
	table     string
	joinTable string
	joinFK    string
	newFn     func(ownerID uint, name string) T
}

// NewTagRepository returns the attribute repository bound to tags.
func NewTagRepository(db *gorm.DB) *AttributeRepository[*models.Tag] {
	return &AttributeRepository[*models.Tag]{
		db:        db,
		resource:  "Tag",
		table:     "tags",
		joinTable: "recipe_tags",
		joinFK:    "tag_id",
		newFn: func(ownerID uint, name string) *models.Tag {
			return &models.Tag{OwnerID: ownerID, Name: name}
		},
	}
}

// NewIngredientRepository returns the attribute repository bound to ingredients.
func NewIngredientRepository(db *gorm.DB) *AttributeRepository[*models.Ingredient] {
	return &AttributeRepository[*models.Ingredient]{
		db:        db,
		resource:  "Ingredient",
		table:     "ingredients",
		joinTable: "recipe_ingredients",
		joinFK:    "ingredient_id",
		newFn: func(ownerID uint, name string) *models.Ingredient {
			return &models.Ingredient{OwnerID: ownerID, Name: name}
		},
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttributeRepository[T]) WithTx(tx *gorm.DB) *AttributeRepository[T] {
	clone := *r
	clone.db = tx
	return &clone
}

func (r *AttributeRepository[T]) findByOwnerAndName(ctx context.Context, ownerID uint, name string) (T, bool, error) {
	var zero T
	matches := make([]T, 0, 1)
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return zero, false, models.NewInternalError(err)
	}
	if len(matches) == 0 {
		return zero, false, nil
	}
	return matches[0], true, nil
}

// GetOrCreate resolves name to an existing entity owned by ownerID, creating
// one if absent. The match is case-sensitive and exact; an existing entity is
// returned unchanged. The boolean reports whether a new row was created.
// Concurrent creates for the same (owner, name) are resolved by the composite
// unique index plus a re-fetch.
func (r *AttributeRepository[T]) GetOrCreate(ctx context.Context, ownerID uint, name string) (T, bool, error) {
	var zero T

	existing, found, err := r.findByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return zero, false, err
	}
	if found {
		return existing, false, nil
	}
	return r.createOrFetch(ctx, ownerID, name)
}

// createOrFetch inserts the entity, yielding to a concurrent creator via
// ON CONFLICT DO NOTHING. A plain INSERT would poison an enclosing
// transaction on Postgres (aborted after the unique violation), so the
// conflict must be absorbed by the statement itself before re-fetching.
func (r *AttributeRepository[T]) createOrFetch(ctx context.Context, ownerID uint, name string) (T, bool, error) {
	var zero T

	entity := r.newFn(ownerID, name)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entity)
	if res.Error != nil {
		return zero, false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race: another request created it first.
		existing, found, err := r.findByOwnerAndName(ctx, ownerID, name)
		if err != nil {
			return zero, false, err
		}
		if !found {
			return zero, false, models.NewInternalError(
				fmt.Errorf("%s (owner %d, name %q) vanished after insert conflict", r.resource, ownerID, name))
		}
		return existing, false, nil
	}
	return entity, true, nil
}

// GetByID fetches an entity by id scoped to ownerID. A missing row and an
// other-owned row produce the same NotFoundError.
func (r *AttributeRepository[T]) GetByID(ctx context.Context, id, ownerID uint) (T, error) {
	var zero T
	matches := make([]T, 0, 1)
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return zero, models.NewInternalError(err)
	}
	if len(matches) == 0 {
		return zero, models.NewNotFoundError(r.resource, id)
	}
	return matches[0], nil
}

// List returns all entities owned by ownerID ordered by name descending.
// When assignedOnly is set, only entities referenced by at least one of the
// owner's recipes are returned.
func (r *AttributeRepository[T]) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]T, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if assignedOnly {
		sub := r.db.Table(r.joinTable).
			Select(r.joinTable+"."+r.joinFK).
			Joins(fmt.Sprintf("JOIN recipes ON recipes.id = %s.recipe_id", r.joinTable)).
			Where("recipes.owner_id = ?", ownerID)
		q = q.Where("id IN (?)", sub)
	}

	// Non-nil so an empty result serializes as [] rather than null.
	items := make([]T, 0)
	if err := q.Order("name DESC").Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// Rename changes the entity's name in place under the same ownership check as
// GetByID.
func (r *AttributeRepository[T]) Rename(ctx context.Context, id, ownerID uint, newName string) (T, error) {
	var zero T
	entity, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return zero, err
	}

	entity.SetName(newName)
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return zero, models.NewValidationError(fmt.Sprintf("%s with this name already exists", r.resource))
		}
		return zero, models.NewInternalError(err)
	}
	return entity, nil
}

// Delete removes the entity and detaches it from every recipe referencing it.
func (r *AttributeRepository[T]) Delete(ctx context.Context, id, ownerID uint) error {
	entity, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.joinTable, r.joinFK), id).Error; err != nil {
			return err
		}
		return tx.Delete(entity).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
