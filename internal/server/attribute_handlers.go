package server

import (
	"ladle/internal/models"
	"ladle/internal/repository"
	"ladle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// attributeHandlers serves both /tags and /ingredients; the two resources
// share every behavior except the entity type.
type attributeHandlers[T repository.Attribute] struct {
	server *Server
	svc    *service.AttributeService[T]
}

func registerAttributeRoutes[T repository.Attribute](router fiber.Router, server *Server, svc *service.AttributeService[T]) {
	h := &attributeHandlers[T]{server: server, svc: svc}
	router.Get("/", h.List)
	router.Patch("/:id", h.Rename)
	router.Delete("/:id", h.Delete)
}

// List returns the caller's attributes, name-descending. ?assigned_only=1
// restricts to attributes referenced by at least one recipe.
func (h *attributeHandlers[T]) List(c *fiber.Ctx) error {
	assignedOnly := c.QueryBool("assigned_only")

	items, err := h.svc.List(c.UserContext(), currentUserID(c), assignedOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

func (h *attributeHandlers[T]) Rename(c *fiber.Ctx) error {
	id, err := h.server.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := h.svc.Rename(c.UserContext(), id, currentUserID(c), req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

func (h *attributeHandlers[T]) Delete(c *fiber.Ctx) error {
	id, err := h.server.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := h.svc.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
