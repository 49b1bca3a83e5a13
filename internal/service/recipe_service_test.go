package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ladle/internal/config"
	"ladle/internal/database"
	"ladle/internal/models"
	"ladle/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newRecipeFixture wires a RecipeService against an in-memory database so the
// transactional reconciliation paths run for real.
func newRecipeFixture(t *testing.T) (*RecipeService, *gorm.DB, string) {
	t.Helper()

	db, err := database.ConnectSQLite("")
	require.NoError(t, err)

	mediaDir := t.TempDir()
	cfg := &config.Config{MediaDir: mediaDir, MaxUploadSizeMB: 10}

	svc := NewRecipeService(
		db,
		repository.NewRecipeRepository(db),
		repository.NewTagRepository(db),
		repository.NewIngredientRepository(db),
		NewImageStore(cfg),
	)
	return svc, db, mediaDir
}

func createOwner(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecipeService_Create(t *testing.T) {
	t.Parallel()

	t.Run("resolves nested names through the registry", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Thai Prawn Curry",
			TimeMinutes: 30,
			Price:       price("12.50"),
			Tags:        []AttributeNameInput{{Name: "Thai"}, {Name: "Dinner"}},
			Ingredients: []AttributeNameInput{{Name: "Prawns"}, {Name: "Coconut Milk"}},
		})
		require.NoError(t, err)
		assert.Len(t, recipe.Tags, 2)
		assert.Len(t, recipe.Ingredients, 2)

		var tagCount int64
		require.NoError(t, db.Model(&models.Tag{}).Where("owner_id = ?", owner).Count(&tagCount).Error)
		assert.Equal(t, int64(2), tagCount)
	})

	t.Run("reuses an existing attribute instead of duplicating it", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		existing := &models.Tag{Name: "Vegan", OwnerID: owner}
		require.NoError(t, db.Create(existing).Error)

		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Chickpea Stew",
			TimeMinutes: 25,
			Price:       price("6.00"),
			Tags:        []AttributeNameInput{{Name: "Vegan"}},
		})
		require.NoError(t, err)
		require.Len(t, recipe.Tags, 1)
		assert.Equal(t, existing.ID, recipe.Tags[0].ID)

		var count int64
		require.NoError(t, db.Model(&models.Tag{}).Where("owner_id = ? AND name = ?", owner, "Vegan").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("same name under another owner creates a separate row", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner1 := createOwner(t, db, "one@example.com")
		owner2 := createOwner(t, db, "two@example.com")

		for _, owner := range []uint{owner1, owner2} {
			_, err := svc.Create(context.Background(), CreateRecipeInput{
				OwnerID:     owner,
				Title:       "Dal",
				TimeMinutes: 40,
				Price:       price("4.25"),
				Tags:        []AttributeNameInput{{Name: "Indian"}},
			})
			require.NoError(t, err)
		}

		var count int64
		require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", "Indian").Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("scalar validation fails before any attribute is created", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		_, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "",
			TimeMinutes: 10,
			Price:       price("3.00"),
			Tags:        []AttributeNameInput{{Name: "Breakfast"}},
		})
		assertValidationError(t, err)

		var tagCount int64
		require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
		assert.Zero(t, tagCount, "no registry writes on a rejected payload")
	})

	t.Run("empty nested name names the offending entry", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		_, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Soup",
			TimeMinutes: 10,
			Price:       price("3.00"),
			Tags:        []AttributeNameInput{{Name: "Dinner"}, {Name: ""}},
		})
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "tags[1]")

		var tagCount int64
		require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
		assert.Zero(t, tagCount)
	})

	t.Run("nested names are stored trimmed", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Curry",
			TimeMinutes: 30,
			Price:       price("8.00"),
			Tags:        []AttributeNameInput{{Name: "  Thai  "}},
		})
		require.NoError(t, err)
		require.Len(t, recipe.Tags, 1)
		assert.Equal(t, "Thai", recipe.Tags[0].Name)

		var count int64
		require.NoError(t, db.Model(&models.Tag{}).Where("owner_id = ? AND name = ?", owner, "Thai").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("whitespace-only nested name is rejected", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		_, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Soup",
			TimeMinutes: 10,
			Price:       price("3.00"),
			Ingredients: []AttributeNameInput{{Name: "Leek"}, {Name: "   "}},
		})
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "ingredients[1]")

		var count int64
		require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
		assert.Zero(t, count, "no registry writes on a rejected payload")
	})

	t.Run("negative values rejected", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		_, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: "X", TimeMinutes: -1, Price: price("1.00"),
		})
		assertValidationError(t, err)

		_, err = svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: "X", TimeMinutes: 1, Price: price("-0.01"),
		})
		assertValidationError(t, err)
	})
}

func TestRecipeService_Update(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *RecipeService, db *gorm.DB) (uint, *models.Recipe) {
		owner := createOwner(t, db, "chef@example.com")
		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID:     owner,
			Title:       "Pancakes",
			TimeMinutes: 15,
			Price:       price("5.00"),
			Description: "Fluffy",
			Link:        "https://example.com/pancakes",
			Tags:        []AttributeNameInput{{Name: "Breakfast"}},
			Ingredients: []AttributeNameInput{{Name: "Flour"}},
		})
		require.NoError(t, err)
		return owner, recipe
	}

	t.Run("absent lists leave associations untouched", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner, recipe := seed(t, svc, db)

		title := "Banana Pancakes"
		updated, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Title:    &title,
		}, true)
		require.NoError(t, err)
		assert.Equal(t, "Banana Pancakes", updated.Title)
		assert.Len(t, updated.Tags, 1)
		assert.Len(t, updated.Ingredients, 1)
	})

	t.Run("empty list clears the association set", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner, recipe := seed(t, svc, db)

		empty := []AttributeNameInput{}
		updated, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Tags:     &empty,
		}, true)
		require.NoError(t, err)
		assert.Empty(t, updated.Tags)
		assert.Len(t, updated.Ingredients, 1, "other association untouched")

		// The tag itself survives in the registry.
		var tagCount int64
		require.NoError(t, db.Model(&models.Tag{}).Where("owner_id = ?", owner).Count(&tagCount).Error)
		assert.Equal(t, int64(1), tagCount)
	})

	t.Run("supplied list replaces the set wholesale", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner, recipe := seed(t, svc, db)

		tags := []AttributeNameInput{{Name: "Brunch"}, {Name: "Sweet"}}
		updated, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Tags:     &tags,
		}, true)
		require.NoError(t, err)
		require.Len(t, updated.Tags, 2)
		names := []string{updated.Tags[0].Name, updated.Tags[1].Name}
		assert.ElementsMatch(t, []string{"Brunch", "Sweet"}, names)
	})

	t.Run("full update requires all scalars and resets omitted text fields", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner, recipe := seed(t, svc, db)

		title := "Crepes"
		_, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Title:    &title,
		}, false)
		assertValidationError(t, err)

		timeMinutes := 20
		p := price("6.50")
		updated, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:     owner,
			RecipeID:    recipe.ID,
			Title:       &title,
			TimeMinutes: &timeMinutes,
			Price:       &p,
		}, false)
		require.NoError(t, err)
		assert.Equal(t, "Crepes", updated.Title)
		assert.Empty(t, updated.Description, "full update resets omitted description")
		assert.Empty(t, updated.Link, "full update resets omitted link")
	})

	t.Run("another owner's recipe is not found", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		_, recipe := seed(t, svc, db)
		intruder := createOwner(t, db, "intruder@example.com")

		title := "Hijacked"
		_, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  intruder,
			RecipeID: recipe.ID,
			Title:    &title,
		}, true)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("invalid nested name rolls the whole update back", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner, recipe := seed(t, svc, db)

		title := "Should Not Stick"
		tags := []AttributeNameInput{{Name: ""}}
		_, err := svc.Update(context.Background(), UpdateRecipeInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Title:    &title,
			Tags:     &tags,
		}, true)
		assertValidationError(t, err)

		var reloaded models.Recipe
		require.NoError(t, db.First(&reloaded, recipe.ID).Error)
		assert.Equal(t, "Pancakes", reloaded.Title)
	})
}

// pngBytes is a minimal payload http.DetectContentType sniffs as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestRecipeService_SetImage(t *testing.T) {
	t.Parallel()

	t.Run("stores the file under a fresh unique key", func(t *testing.T) {
		t.Parallel()
		svc, db, mediaDir := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")
		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: "Toast", TimeMinutes: 5, Price: price("1.00"),
		})
		require.NoError(t, err)

		updated, err := svc.SetImage(context.Background(), SetRecipeImageInput{
			OwnerID:  owner,
			RecipeID: recipe.ID,
			Filename: "photo.png",
			Content:  pngBytes,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(updated.Image, "uploads/recipe/"), "got %q", updated.Image)
		assert.True(t, strings.HasSuffix(updated.Image, ".png"), "got %q", updated.Image)
		assert.NotContains(t, updated.Image, "photo", "original filename must not leak into the key")

		_, err = os.Stat(filepath.Join(mediaDir, filepath.FromSlash(updated.Image)))
		require.NoError(t, err)
	})

	t.Run("two uploads of the same filename get distinct keys", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")

		keys := map[string]bool{}
		for i := 0; i < 2; i++ {
			recipe, err := svc.Create(context.Background(), CreateRecipeInput{
				OwnerID: owner, Title: fmt.Sprintf("Dish %d", i), TimeMinutes: 5, Price: price("1.00"),
			})
			require.NoError(t, err)
			updated, err := svc.SetImage(context.Background(), SetRecipeImageInput{
				OwnerID: owner, RecipeID: recipe.ID, Filename: "same.png", Content: pngBytes,
			})
			require.NoError(t, err)
			keys[updated.Image] = true
		}
		assert.Len(t, keys, 2)
	})

	t.Run("replacing an image removes the previous file", func(t *testing.T) {
		t.Parallel()
		svc, db, mediaDir := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")
		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: "Toast", TimeMinutes: 5, Price: price("1.00"),
		})
		require.NoError(t, err)

		first, err := svc.SetImage(context.Background(), SetRecipeImageInput{
			OwnerID: owner, RecipeID: recipe.ID, Filename: "a.png", Content: pngBytes,
		})
		require.NoError(t, err)
		firstPath := filepath.Join(mediaDir, filepath.FromSlash(first.Image))

		_, err = svc.SetImage(context.Background(), SetRecipeImageInput{
			OwnerID: owner, RecipeID: recipe.ID, Filename: "b.png", Content: pngBytes,
		})
		require.NoError(t, err)

		_, err = os.Stat(firstPath)
		assert.True(t, os.IsNotExist(err), "previous image should be removed")
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newRecipeFixture(t)
		owner := createOwner(t, db, "chef@example.com")
		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: "Toast", TimeMinutes: 5, Price: price("1.00"),
		})
		require.NoError(t, err)

		_, err = svc.SetImage(context.Background(), SetRecipeImageInput{
			OwnerID: owner, RecipeID: recipe.ID, Filename: "empty.png", Content: nil,
		})
		assertValidationError(t, err)

		_, err = svc.SetImage(context.Background(), SetRecipeImageInput{
			OwnerID: owner, RecipeID: recipe.ID, Filename: "notes.txt", Content: []byte("just text content here"),
		})
		assertValidationError(t, err)
	})
}

func TestRecipeService_ListAndDelete(t *testing.T) {
	t.Parallel()

	svc, db, _ := newRecipeFixture(t)
	owner := createOwner(t, db, "chef@example.com")
	other := createOwner(t, db, "other@example.com")

	var ids []uint
	for _, title := range []string{"First", "Second", "Third"} {
		recipe, err := svc.Create(context.Background(), CreateRecipeInput{
			OwnerID: owner, Title: title, TimeMinutes: 5, Price: price("2.00"),
			Tags: []AttributeNameInput{{Name: "Quick"}},
		})
		require.NoError(t, err)
		ids = append(ids, recipe.ID)
	}

	recipes, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, ids[2], recipes[0].ID, "newest id first")

	othersView, err := svc.List(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, othersView)

	require.NoError(t, svc.Delete(context.Background(), ids[0], owner))

	recipes, err = svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	// Deleting a recipe keeps its tags in the registry.
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Where("owner_id = ?", owner).Count(&tagCount).Error)
	assert.Equal(t, int64(1), tagCount)

	err = svc.Delete(context.Background(), ids[1], other)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
