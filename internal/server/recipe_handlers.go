package server

import (
	"io"

	"ladle/internal/models"
	"ladle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createRecipeRequest struct {
	Title       string                       `json:"title"`
	TimeMinutes int                          `json:"time_minutes"`
	Price       decimal.Decimal              `json:"price"`
	Description string                       `json:"description"`
	Link        string                       `json:"link"`
	Tags        []service.AttributeNameInput `json:"tags"`
	Ingredients []service.AttributeNameInput `json:"ingredients"`
}

// updateRecipeRequest distinguishes absent fields from zero values; only
// fields present in the payload are applied on PATCH.
type updateRecipeRequest struct {
	Title       *string                       `json:"title"`
	TimeMinutes *int                          `json:"time_minutes"`
	Price       *decimal.Decimal              `json:"price"`
	Description *string                       `json:"description"`
	Link        *string                       `json:"link"`
	Tags        *[]service.AttributeNameInput `json:"tags"`
	Ingredients *[]service.AttributeNameInput `json:"ingredients"`
}

// recipeSummary is the list representation: no description, no image.
type recipeSummary struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       decimal.Decimal     `json:"price"`
	Link        string              `json:"link"`
	Tags        []models.Tag        `json:"tags"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

func summarize(r *models.Recipe) recipeSummary {
	s := recipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
	if s.Tags == nil {
		s.Tags = []models.Tag{}
	}
	if s.Ingredients == nil {
		s.Ingredients = []models.Ingredient{}
	}
	return s
}

// GetRecipes lists the caller's recipes, newest first
func (s *Server) GetRecipes(c *fiber.Ctx) error {
	recipes, err := s.recipeService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	summaries := make([]recipeSummary, 0, len(recipes))
	for i := range recipes {
		summaries = append(summaries, summarize(&recipes[i]))
	}
	return c.JSON(summaries)
}

// GetRecipe returns one recipe with full detail
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recipe)
}

// CreateRecipe creates a recipe for the caller. Any owner field in the
// payload is ignored; ownership always comes from the token.
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req createRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	recipe, err := s.recipeService.Create(c.UserContext(), service.CreateRecipeInput{
		OwnerID:     currentUserID(c),
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Description: req.Description,
		Link:        req.Link,
		Tags:        req.Tags,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// PutRecipe fully replaces the recipe's mutable fields.
func (s *Server) PutRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, false)
}

// PatchRecipe applies only the fields present in the payload.
func (s *Server) PatchRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, true)
}

func (s *Server) updateRecipe(c *fiber.Ctx, partial bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	recipe, err := s.recipeService.Update(c.UserContext(), service.UpdateRecipeInput{
		OwnerID:     currentUserID(c),
		RecipeID:    id,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Description: req.Description,
		Link:        req.Link,
		Tags:        req.Tags,
		Ingredients: req.Ingredients,
	}, partial)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recipe)
}

// DeleteRecipe deletes the recipe; its tags and ingredients persist.
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.recipeService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadRecipeImage accepts a multipart form with an "image" field and
// replaces the recipe's image.
func (s *Server) UploadRecipeImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	recipe, err := s.recipeService.SetImage(c.UserContext(), service.SetRecipeImageInput{
		OwnerID:  currentUserID(c),
		RecipeID: id,
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recipe)
}
