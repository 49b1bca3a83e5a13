package service

import (
	"context"
	"fmt"
	"strings"

	"ladle/internal/models"
	"ladle/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributeNameInput is one nested tag or ingredient reference in a recipe
// mutation payload.
type AttributeNameInput struct {
	Name string `json:"name"`
}

// CreateRecipeInput carries a recipe creation request. Any owner field in the
// original payload is discarded by the handler; OwnerID always comes from the
// authenticated caller.
type CreateRecipeInput struct {
	OwnerID     uint
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Description string
	Link        string
	Tags        []AttributeNameInput
	Ingredients []AttributeNameInput
}

// UpdateRecipeInput carries a recipe update. Nil scalar fields are left
// untouched on partial updates. Nil Tags/Ingredients means "leave the
// association set alone"; a pointer to an empty slice clears it.
type UpdateRecipeInput struct {
	OwnerID     uint
	RecipeID    uint
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
	Tags        *[]AttributeNameInput
	Ingredients *[]AttributeNameInput
}

// SetRecipeImageInput carries an image upload for a recipe.
type SetRecipeImageInput struct {
	OwnerID  uint
	RecipeID uint
	Filename string
	Content  []byte
}

// RecipeService manages the recipe aggregate and reconciles nested
// tag/ingredient name lists against the per-owner attribute registry. Each
// mutation runs inside a single transaction so attribute creation side
// effects roll back together with a failed recipe write.
type RecipeService struct {
	db             *gorm.DB
	recipeRepo     repository.RecipeRepository
	tagRepo        *repository.AttributeRepository[*models.Tag]
	ingredientRepo *repository.AttributeRepository[*models.Ingredient]
	images         *ImageStore
}

// NewRecipeService returns a new RecipeService.
func NewRecipeService(
	db *gorm.DB,
	recipeRepo repository.RecipeRepository,
	tagRepo *repository.AttributeRepository[*models.Tag],
	ingredientRepo *repository.AttributeRepository[*models.Ingredient],
	images *ImageStore,
) *RecipeService {
	return &RecipeService{
		db:             db,
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		images:         images,
	}
}

// List returns all of the owner's recipes, newest id first.
func (s *RecipeService) List(ctx context.Context, ownerID uint) ([]models.Recipe, error) {
	return s.recipeRepo.List(ctx, ownerID)
}

// Get returns one recipe with its associations. A recipe owned by someone
// else yields the same NotFoundError as a missing one.
func (s *RecipeService) Get(ctx context.Context, id, ownerID uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, id, ownerID)
}

// Delete hard-deletes the recipe and its association rows. The referenced
// tags and ingredients persist.
func (s *RecipeService) Delete(ctx context.Context, id, ownerID uint) error {
	return s.recipeRepo.Delete(ctx, id, ownerID)
}

func validateRecipeScalars(title string, timeMinutes int, price decimal.Decimal) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if timeMinutes < 0 {
		return models.NewValidationError("time_minutes must not be negative")
	}
	if price.IsNegative() {
		return models.NewValidationError("price must not be negative")
	}
	return nil
}

// validateAttributeNames trims each entry in place and reports the offending
// list index so the caller can fix the exact entry. A name that is blank
// after trimming never reaches the registry.
func validateAttributeNames(field string, names []AttributeNameInput) error {
	for i := range names {
		names[i].Name = strings.TrimSpace(names[i].Name)
		if names[i].Name == "" {
			return models.NewValidationError(fmt.Sprintf("%s[%d].name must not be empty", field, i))
		}
	}
	return nil
}

func resolveTags(ctx context.Context, repo *repository.AttributeRepository[*models.Tag], ownerID uint, names []AttributeNameInput) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tag, _, err := repo.GetOrCreate(ctx, ownerID, n.Name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func resolveIngredients(ctx context.Context, repo *repository.AttributeRepository[*models.Ingredient], ownerID uint, names []AttributeNameInput) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(names))
	for _, n := range names {
		ingredient, _, err := repo.GetOrCreate(ctx, ownerID, n.Name)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, *ingredient)
	}
	return ingredients, nil
}

// Create builds a recipe owned by in.OwnerID and resolves its nested
// tag/ingredient names. Scalar validation happens before any registry write.
func (s *RecipeService) Create(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error) {
	if err := validateRecipeScalars(in.Title, in.TimeMinutes, in.Price); err != nil {
		return nil, err
	}
	if err := validateAttributeNames("tags", in.Tags); err != nil {
		return nil, err
	}
	if err := validateAttributeNames("ingredients", in.Ingredients); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		TimeMinutes: in.TimeMinutes,
		Price:       in.Price,
		Description: in.Description,
		Link:        in.Link,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := s.recipeRepo.WithTx(tx)
		if err := recipes.Create(ctx, recipe); err != nil {
			return err
		}

		tags, err := resolveTags(ctx, s.tagRepo.WithTx(tx), in.OwnerID, in.Tags)
		if err != nil {
			return err
		}
		if err := recipes.ReplaceTags(ctx, recipe, tags); err != nil {
			return err
		}

		ingredients, err := resolveIngredients(ctx, s.ingredientRepo.WithTx(tx), in.OwnerID, in.Ingredients)
		if err != nil {
			return err
		}
		return recipes.ReplaceIngredients(ctx, recipe, ingredients)
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// Update applies a partial or full update to the owner's recipe. Full updates
// require all scalar fields and reset omitted description/link to the empty
// string. Supplied tag/ingredient lists replace the association set
// wholesale; absent lists leave it untouched.
func (s *RecipeService) Update(ctx context.Context, in UpdateRecipeInput, partial bool) (*models.Recipe, error) {
	if !partial {
		if in.Title == nil || in.TimeMinutes == nil || in.Price == nil {
			return nil, models.NewValidationError("title, time_minutes and price are required")
		}
		if in.Description == nil {
			empty := ""
			in.Description = &empty
		}
		if in.Link == nil {
			empty := ""
			in.Link = &empty
		}
	}

	// Fail fast on scalar problems before any attribute rows are created.
	if in.Title != nil && *in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.TimeMinutes != nil && *in.TimeMinutes < 0 {
		return nil, models.NewValidationError("time_minutes must not be negative")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, models.NewValidationError("price must not be negative")
	}
	if in.Tags != nil {
		if err := validateAttributeNames("tags", *in.Tags); err != nil {
			return nil, err
		}
	}
	if in.Ingredients != nil {
		if err := validateAttributeNames("ingredients", *in.Ingredients); err != nil {
			return nil, err
		}
	}

	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := s.recipeRepo.WithTx(tx)

		var err error
		recipe, err = recipes.GetByID(ctx, in.RecipeID, in.OwnerID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			recipe.Title = *in.Title
		}
		if in.TimeMinutes != nil {
			recipe.TimeMinutes = *in.TimeMinutes
		}
		if in.Price != nil {
			recipe.Price = *in.Price
		}
		if in.Description != nil {
			recipe.Description = *in.Description
		}
		if in.Link != nil {
			recipe.Link = *in.Link
		}
		if err := recipes.Save(ctx, recipe); err != nil {
			return err
		}

		if in.Tags != nil {
			tags, err := resolveTags(ctx, s.tagRepo.WithTx(tx), in.OwnerID, *in.Tags)
			if err != nil {
				return err
			}
			if err := recipes.ReplaceTags(ctx, recipe, tags); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			ingredients, err := resolveIngredients(ctx, s.ingredientRepo.WithTx(tx), in.OwnerID, *in.Ingredients)
			if err != nil {
				return err
			}
			if err := recipes.ReplaceIngredients(ctx, recipe, ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// SetImage stores the uploaded file under a fresh unique key and points the
// recipe at it, replacing any previous image.
func (s *RecipeService) SetImage(ctx context.Context, in SetRecipeImageInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, in.RecipeID, in.OwnerID)
	if err != nil {
		return nil, err
	}

	path, err := s.images.SaveRecipeImage(in.Filename, in.Content)
	if err != nil {
		return nil, err
	}

	previous := recipe.Image
	if err := s.recipeRepo.UpdateImage(ctx, recipe, path); err != nil {
		s.images.Remove(path)
		return nil, err
	}
	if previous != "" {
		s.images.Remove(previous)
	}
	return recipe, nil
}
