package handler

import (
	"bytes"
	"strconv"

	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *zap.Logger
}

func NewInventoryHandler(s service.InventoryService, log *zap.Logger) *InventoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryHandler{service: s, log: log}
}

// productID reads :id. A malformed id cannot name a product, so it is a 404.
func productID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrProductNotFound
	}
	return uint(id), nil
}

// GetProducts lists products.
// Query params: search, category, sort, order, page (default 1), limit (default 10)
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", repository.DefaultPageLimit)
	if limit == 0 {
		limit = repository.DefaultPageLimit
	}

	page, err := h.service.ListProducts(c.UserContext(), model.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort", "name"),
		Order:    c.Query("order", "asc"),
		Page:     c.QueryInt("page", 1),
		Limit:    limit,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(page)
}

func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req model.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, middleware.Actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(updated)
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id, middleware.Actor(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	history, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(history)
}

// ImportProducts accepts a multipart upload in the csvFile field.
func (h *InventoryHandler) ImportProducts(c *fiber.Ctx) error {
	fh, err := c.FormFile("csvFile")
	if err != nil {
		return respondError(c, h.log, service.ErrMissingFile)
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	result, err := h.service.ImportUpload(c.UserContext(), f, middleware.Actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(result)
}

func (h *InventoryHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportProducts(c.UserContext(), &buf); err != nil {
		return respondError(c, h.log, err)
	}

	c.Attachment("products.csv")
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(buf.Bytes())
}
