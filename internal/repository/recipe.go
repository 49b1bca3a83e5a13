package repository

import (
	"context"
	"errors"

	"ladle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository defines persistence operations for the recipe aggregate.
// Every read and mutation is scoped to the owning user; a missing recipe and
// an other-owned recipe are indistinguishable to callers.
type RecipeRepository interface {
	WithTx(tx *gorm.DB) RecipeRepository
	List(ctx context.Context, ownerID uint) ([]models.Recipe, error)
	GetByID(ctx context.Context, id, ownerID uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Save(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id, ownerID uint) error
	ReplaceTags(ctx context.Context, recipe *models.Recipe, tags []models.Tag) error
	ReplaceIngredients(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient) error
	UpdateImage(ctx context.Context, recipe *models.Recipe, path string) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepository{db: tx}
}

// normalizeAssociations replaces nil association slices with empty ones so a
// recipe without tags or ingredients serializes as [] rather than null.
func normalizeAssociations(recipe *models.Recipe) {
	if recipe.Tags == nil {
		recipe.Tags = []models.Tag{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []models.Ingredient{}
	}
}

func (r *recipeRepository) List(ctx context.Context, ownerID uint) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0)
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range recipes {
		normalizeAssociations(&recipes[i])
	}
	return recipes, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id, ownerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	normalizeAssociations(&recipe)
	return &recipe, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) Save(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(recipe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, id, ownerID uint) error {
	recipe, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	// Select(Associations) removes the join rows; tags and ingredients
	// themselves persist.
	if err := r.db.WithContext(ctx).Select(clause.Associations).Delete(recipe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) ReplaceTags(ctx context.Context, recipe *models.Recipe, tags []models.Tag) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Tags")
	var err error
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(&tags)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	recipe.Tags = tags
	return nil
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Ingredients")
	var err error
	if len(ingredients) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(&ingredients)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	recipe.Ingredients = ingredients
	return nil
}

func (r *recipeRepository) UpdateImage(ctx context.Context, recipe *models.Recipe, path string) error {
	if err := r.db.WithContext(ctx).Model(recipe).Update("image", path).Error; err != nil {
		return models.NewInternalError(err)
	}
	recipe.Image = path
	return nil
}
