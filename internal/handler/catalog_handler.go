package handler

import (
	"errors"

	"go-price-pilot/internal/model"
	"go-price-pilot/internal/repository"
	"go-price-pilot/internal/service"
	"go-price-pilot/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// Helper untuk parse UUID dari string
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// writeError maps service and repository failures onto HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	var verr *validator.ValidationError
	var repoErr *repository.RepositoryError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error(), "details": verr.Errors})
	case errors.Is(err, service.ErrWriteInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotLoaded), errors.Is(err, repository.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.As(err, &repoErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to " + repoErr.Op + " product"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

// GetProducts returns the visible products
// Query params: q (name search), category (exact match)
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	return c.JSON(h.service.Visible(c.Query("q"), c.Query("category")))
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.FindProduct(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), &in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, &in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GetPrice returns the price breakdown for the stored values.
// POST with a JSON body applies calculator overrides first.
func (h *CatalogHandler) GetPrice(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var overrides *service.PriceOverrides
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		overrides = &service.PriceOverrides{}
		if err := c.BodyParser(overrides); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	quote, err := h.service.Quote(id, overrides)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(quote)
}

func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.Categories())
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	name, err := h.service.AddCategory(req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": name})
}

func (h *CatalogHandler) Reload(c *fiber.Ctx) error {
	h.service.Load(c.UserContext())
	return h.Status(c)
}

func (h *CatalogHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"loading":  h.service.Loading(),
		"products": len(h.service.Products()),
		"strategy": h.service.Strategy(),
	})
}

func (h *CatalogHandler) BeginEdit(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.BeginEdit(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Edit started", "data": product})
}

func (h *CatalogHandler) GetEditing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Editing()})
}

func (h *CatalogHandler) CancelEdit(c *fiber.Ctx) error {
	h.service.CancelEdit()
	return c.SendStatus(fiber.StatusNoContent)
}
