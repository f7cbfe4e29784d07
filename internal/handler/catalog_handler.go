package handler

import (
	"strconv"
	"strings"

	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// ============ COMPANIES ============

// GET /api/v1/companies
func (h *CatalogHandler) GetCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch companies"})
	}
	return c.JSON(companies)
}

// POST /api/v1/companies
func (h *CatalogHandler) CreateCompany(c *fiber.Ctx) error {
	var req service.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	company, err := h.service.CreateCompany(&req, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to create company")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Company created", "data": company})
}

// PUT /api/v1/companies/:id
func (h *CatalogHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}
	var req service.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	company, err := h.service.UpdateCompany(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to update company")
	}
	return c.JSON(fiber.Map{"message": "Company updated", "data": company})
}

// DELETE /api/v1/companies/:id
func (h *CatalogHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}
	if err := h.service.DeleteCompany(id, getUserID(c)); err != nil {
		return respondError(c, err, "Failed to delete company")
	}
	return c.JSON(fiber.Map{"message": "Company deleted"})
}

// ============ SHOPS ============

// GET /api/v1/shops
func (h *CatalogHandler) GetShops(c *fiber.Ctx) error {
	shops, err := h.service.ListShops()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch shops"})
	}
	return c.JSON(shops)
}

// POST /api/v1/shops
func (h *CatalogHandler) CreateShop(c *fiber.Ctx) error {
	var req service.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shop, err := h.service.CreateShop(&req, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to create shop")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Shop created", "data": shop})
}

// PUT /api/v1/shops/:id
func (h *CatalogHandler) UpdateShop(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shop ID"})
	}
	var req service.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shop, err := h.service.UpdateShop(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to update shop")
	}
	return c.JSON(fiber.Map{"message": "Shop updated", "data": shop})
}

// DELETE /api/v1/shops/:id
func (h *CatalogHandler) DeleteShop(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shop ID"})
	}
	if err := h.service.DeleteShop(id, getUserID(c)); err != nil {
		return respondError(c, err, "Failed to delete shop")
	}
	return c.JSON(fiber.Map{"message": "Shop deleted"})
}

// ============ PRODUCTS ============

// parseProductForm reads a product from JSON or from a multipart form with an optional photo
func parseProductForm(c *fiber.Ctx) (*service.ProductRequest, *service.PhotoUpload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		var req service.ProductRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, nil, noop, fiber.NewError(400, "Invalid JSON")
		}
		return &req, nil, noop, nil
	}

	req := &service.ProductRequest{Title: c.FormValue("title")}
	fields := map[string]string{}
	if v := strings.TrimSpace(c.FormValue("company_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			fields["company_id"] = "Select a valid choice. That choice is not one of the available choices."
		}
		req.CompanyID = &id
	}
	if v := strings.TrimSpace(c.FormValue("ref_weight")); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fields["ref_weight"] = "Enter a number."
		}
		req.RefWeight = &w
	}
	if len(fields) > 0 {
		return nil, nil, noop, &service.ValidationError{Fields: fields}
	}

	photo, closePhoto, err := formPhoto(c)
	if err != nil {
		return nil, nil, noop, fiber.NewError(400, "Invalid multipart form")
	}
	return req, photo, closePhoto, nil
}

func productFormError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err, "Invalid product form")
}

// GET /api/v1/products?q=&page=&page_size=
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	page, err := h.service.ListProducts(c.Query("q"), c.QueryInt("page", 1), c.QueryInt("page_size", service.DefaultPageSize))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(page)
}

// GET /api/v1/products/:slug
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Failed to fetch product")
	}
	return c.JSON(product)
}

// POST /api/v1/products (JSON or multipart)
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	req, photo, closePhoto, err := parseProductForm(c)
	if err != nil {
		return productFormError(c, err)
	}
	defer closePhoto()

	product, err := h.service.CreateProduct(c.UserContext(), req, photo, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:slug (JSON or multipart)
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	req, photo, closePhoto, err := parseProductForm(c)
	if err != nil {
		return productFormError(c, err)
	}
	defer closePhoto()

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("slug"), req, photo, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// POST /api/v1/products/:slug/photo (multipart, field "photo")
func (h *CatalogHandler) UploadPhoto(c *fiber.Ctx) error {
	if !isMultipart(c) {
		return c.Status(400).JSON(fiber.Map{"error": "Expected multipart form with a photo"})
	}
	photo, closePhoto, err := formPhoto(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid multipart form"})
	}
	defer closePhoto()

	product, err := h.service.SetProductPhoto(c.UserContext(), c.Params("slug"), photo, getUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to store photo")
	}
	return c.JSON(fiber.Map{"message": "Photo uploaded", "data": product})
}

// DELETE /api/v1/products/:slug
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("slug"), getUserID(c)); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// CatalogOptions feeds the product select that depends on the chosen manufacturer.
// GET /api/v1/catalog/options?manufacturer=<id>
func (h *CatalogHandler) CatalogOptions(c *fiber.Ctx) error {
	options, err := h.service.ManufacturerCatalog(c.Query("manufacturer"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(fiber.Map{"options": options})
}
