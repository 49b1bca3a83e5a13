// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ladle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder populates the database with realistic demo users and recipes.
type Seeder struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes every seeded row. Join tables first, then entities.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	statements := []string{
		"DELETE FROM recipe_tags",
		"DELETE FROM recipe_ingredients",
		"DELETE FROM recipes",
		"DELETE FROM tags",
		"DELETE FROM ingredients",
		"DELETE FROM users",
	}
	for _, stmt := range statements {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("cleanup failed on %q: %w", stmt, err)
		}
	}
	return nil
}

var tagPool = []string{
	"Vegan", "Vegetarian", "Dessert", "Breakfast", "Dinner",
	"Quick", "Comfort Food", "Spicy", "Gluten Free", "Thai",
	"Indian", "Italian", "Mexican", "Soup", "Salad",
}

// SeedKitchen creates users, each with a personal set of tags, ingredients
// and recipes wired together the way the API would.
func (s *Seeder) SeedKitchen(numUsers, recipesPerUser int) error {
	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for u := 0; u < numUsers; u++ {
		user := &models.User{
			Email:    fmt.Sprintf("chef%d@%s", u+1, gofakeit.DomainName()),
			Password: string(password),
			Name:     gofakeit.Name(),
			IsActive: true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return fmt.Errorf("user create failed: %w", err)
		}

		tags, err := s.seedTags(user.ID)
		if err != nil {
			return err
		}
		ingredients, err := s.seedIngredients(user.ID)
		if err != nil {
			return err
		}

		for i := 0; i < recipesPerUser; i++ {
			if err := s.seedRecipe(user.ID, tags, ingredients); err != nil {
				return err
			}
		}
		log.Printf("Seeded %s with %d recipes", user.Email, recipesPerUser)
	}
	return nil
}

func (s *Seeder) seedTags(ownerID uint) ([]models.Tag, error) {
	count := 4 + s.rnd.Intn(5)
	picks := s.rnd.Perm(len(tagPool))[:count]

	tags := make([]models.Tag, 0, count)
	for _, p := range picks {
		tag := models.Tag{Name: tagPool[p], OwnerID: ownerID}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("tag create failed: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *Seeder) seedIngredients(ownerID uint) ([]models.Ingredient, error) {
	count := 8 + s.rnd.Intn(8)

	ingredients := make([]models.Ingredient, 0, count)
	seen := map[string]bool{}
	for len(ingredients) < count {
		name := gofakeit.Dinner()
		if seen[name] {
			continue
		}
		seen[name] = true

		ingredient := models.Ingredient{Name: name, OwnerID: ownerID}
		if err := s.db.Create(&ingredient).Error; err != nil {
			return nil, fmt.Errorf("ingredient create failed: %w", err)
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}

func (s *Seeder) seedRecipe(ownerID uint, tags []models.Tag, ingredients []models.Ingredient) error {
	price := decimal.NewFromFloat(float64(s.rnd.Intn(4000)+100) / 100)

	recipe := &models.Recipe{
		OwnerID:     ownerID,
		Title:       gofakeit.Dinner(),
		TimeMinutes: 5 + s.rnd.Intn(115),
		Price:       price,
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Link:        gofakeit.URL(),
		CreatedAt:   time.Now().Add(-time.Duration(s.rnd.Intn(90*24)) * time.Hour),
	}
	if err := s.db.Create(recipe).Error; err != nil {
		return fmt.Errorf("recipe create failed: %w", err)
	}

	pickedTags := pick(s.rnd, tags, 1+s.rnd.Intn(3))
	if err := s.db.Model(recipe).Association("Tags").Replace(&pickedTags); err != nil {
		return fmt.Errorf("tag association failed: %w", err)
	}

	pickedIngredients := pick(s.rnd, ingredients, 2+s.rnd.Intn(5))
	if err := s.db.Model(recipe).Association("Ingredients").Replace(&pickedIngredients); err != nil {
		return fmt.Errorf("ingredient association failed: %w", err)
	}
	return nil
}

func pick[T any](rnd *rand.Rand, pool []T, n int) []T {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]T, 0, n)
	for _, i := range rnd.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
