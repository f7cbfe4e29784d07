package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/slug"
	"go-stock-ledger/pkg/storage"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Notifier pushes live events. A nil Notifier disables them.
type Notifier interface {
	Publish(ownerID string, payload interface{})
}

type CatalogService interface {
	CreateCompany(req *NameRequest, actorID string) (*model.Company, error)
	UpdateCompany(id uuid.UUID, req *NameRequest, actorID string) (*model.Company, error)
	DeleteCompany(id uuid.UUID, actorID string) error
	ListCompanies() ([]model.Company, error)

	CreateShop(req *NameRequest, actorID string) (*model.Shop, error)
	UpdateShop(id uuid.UUID, req *NameRequest, actorID string) (*model.Shop, error)
	DeleteShop(id uuid.UUID, actorID string) error
	ListShops() ([]model.Shop, error)

	CreateProduct(ctx context.Context, req *ProductRequest, photo *PhotoUpload, actorID string) (*model.Product, error)
	UpdateProduct(ctx context.Context, slug string, req *ProductRequest, photo *PhotoUpload, actorID string) (*model.Product, error)
	SetProductPhoto(ctx context.Context, slug string, photo *PhotoUpload, actorID string) (*model.Product, error)
	DeleteProduct(slug string, actorID string) error
	GetProduct(slug string) (*model.Product, error)
	ListProducts(filter string, page, pageSize int) (*ProductPage, error)

	ManufacturerCatalog(ref string) ([]CatalogOption, error)
}

// NameRequest is the payload for companies and shops
type NameRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=150"`
}

type ProductRequest struct {
	Title     string     `json:"title" form:"title" validate:"required,max=150"`
	CompanyID *uuid.UUID `json:"company_id" form:"company_id"`
	RefWeight *float64   `json:"ref_weight" form:"ref_weight" validate:"required"`
}

// PhotoUpload is an image received with a product form
type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// CatalogOption is one entry of the manufacturer-dependent product select
type CatalogOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PlaceholderOption is the only option offered before a manufacturer is chosen
var PlaceholderOption = CatalogOption{Value: "", Label: "Select a manufacturer first"}

type catalogService struct {
	companyRepo repository.CompanyRepository
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	blobs       storage.BlobStore
	notifier    Notifier
}

func NewCatalogService(
	companyRepo repository.CompanyRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	blobs storage.BlobStore,
	notifier Notifier,
) CatalogService {
	return &catalogService{
		companyRepo: companyRepo,
		shopRepo:    shopRepo,
		productRepo: productRepo,
		blobs:       blobs,
		notifier:    notifier,
	}
}

// deriveSlug runs before every save, whether or not the name changed
func deriveSlug(field, name string) (string, error) {
	s, err := slug.Make(name)
	if err != nil {
		return "", newValidationError(field, "Value cannot be turned into a URL slug.")
	}
	return s, nil
}

type existsFunc func(value string, excludeID *uuid.UUID) (bool, error)

// checkUnique reports the first of name/slug that is already taken
func checkUnique(resource, field, name, slugValue string, byName, bySlug existsFunc, excludeID *uuid.UUID) error {
	taken, err := byName(name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &DuplicateKeyError{Field: field, Message: fmt.Sprintf("%s with this %s already exists.", resource, field)}
	}

	taken, err = bySlug(slugValue, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &DuplicateKeyError{Field: field, Message: fmt.Sprintf("%s with this slug already exists.", resource)}
	}
	return nil
}

func (s *catalogService) notify(action string, data interface{}, actorID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish("", map[string]interface{}{
		"type":   "catalog_update",
		"action": action,
		"data":   data,
		"user":   map[string]string{"id": actorID},
	})
}

func (s *catalogService) CreateCompany(req *NameRequest, actorID string) (*model.Company, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := checkUnique("Company", "name", req.Name, sl, s.companyRepo.ExistsByName, s.companyRepo.ExistsBySlug, nil); err != nil {
		return nil, err
	}

	company := &model.Company{Name: req.Name, Slug: sl}
	company.CreatedBy = actorID
	company.UpdatedBy = actorID
	if err := s.companyRepo.Create(company); err != nil {
		return nil, translateStoreError(err, "Company", "name")
	}

	s.notify("company_created", company, actorID)
	return company, nil
}

func (s *catalogService) UpdateCompany(id uuid.UUID, req *NameRequest, actorID string) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		return nil, translateStoreError(err, "Company", "name")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := checkUnique("Company", "name", req.Name, sl, s.companyRepo.ExistsByName, s.companyRepo.ExistsBySlug, &id); err != nil {
		return nil, err
	}

	company.Name = req.Name
	company.Slug = sl
	company.UpdatedBy = actorID
	if err := s.companyRepo.Update(company); err != nil {
		return nil, translateStoreError(err, "Company", "name")
	}

	s.notify("company_updated", company, actorID)
	return company, nil
}

func (s *catalogService) DeleteCompany(id uuid.UUID, actorID string) error {
	if err := s.companyRepo.Delete(id); err != nil {
		return translateStoreError(err, "Company", "name")
	}
	s.notify("company_deleted", map[string]string{"id": id.String()}, actorID)
	return nil
}

func (s *catalogService) ListCompanies() ([]model.Company, error) {
	return s.companyRepo.FindAll()
}

func (s *catalogService) CreateShop(req *NameRequest, actorID string) (*model.Shop, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := checkUnique("Shop", "name", req.Name, sl, s.shopRepo.ExistsByName, s.shopRepo.ExistsBySlug, nil); err != nil {
		return nil, err
	}

	shop := &model.Shop{Name: req.Name, Slug: sl}
	shop.CreatedBy = actorID
	shop.UpdatedBy = actorID
	if err := s.shopRepo.Create(shop); err != nil {
		return nil, translateStoreError(err, "Shop", "name")
	}

	s.notify("shop_created", shop, actorID)
	return shop, nil
}

func (s *catalogService) UpdateShop(id uuid.UUID, req *NameRequest, actorID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(id)
	if err != nil {
		return nil, translateStoreError(err, "Shop", "name")
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("name", req.Name)
	if err != nil {
		return nil, err
	}
	if err := checkUnique("Shop", "name", req.Name, sl, s.shopRepo.ExistsByName, s.shopRepo.ExistsBySlug, &id); err != nil {
		return nil, err
	}

	shop.Name = req.Name
	shop.Slug = sl
	shop.UpdatedBy = actorID
	if err := s.shopRepo.Update(shop); err != nil {
		return nil, translateStoreError(err, "Shop", "name")
	}

	s.notify("shop_updated", shop, actorID)
	return shop, nil
}

func (s *catalogService) DeleteShop(id uuid.UUID, actorID string) error {
	if err := s.shopRepo.Delete(id); err != nil {
		return translateStoreError(err, "Shop", "name")
	}
	s.notify("shop_deleted", map[string]string{"id": id.String()}, actorID)
	return nil
}

func (s *catalogService) ListShops() ([]model.Shop, error) {
	return s.shopRepo.FindAll()
}

// resolveCompany loads an optional manufacturer reference from a form
func (s *catalogService) resolveCompany(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	if _, err := s.companyRepo.FindByID(*id); err != nil {
		if errors.Is(translateStoreError(err, "Company", ""), ErrNotFound) {
			return nil, newValidationError("company_id", "Select a valid choice. That choice is not one of the available choices.")
		}
		return nil, err
	}
	return id, nil
}

// storePhoto writes the image under its fixed key, replacing any earlier upload
func (s *catalogService) storePhoto(ctx context.Context, productSlug string, photo *PhotoUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(photo.Filename))
	if !allowedImageExt[ext] {
		return "", newValidationError("photo", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if s.blobs == nil {
		return "", &ExternalServiceError{Service: "storage", Message: "Photo storage is not configured."}
	}

	url, err := s.blobs.Put(ctx, storage.ImageKey(productSlug, photo.Filename), photo.Body, photo.ContentType)
	if err != nil {
		return "", &ExternalServiceError{Service: "storage", Message: "The photo could not be stored.", Err: err}
	}
	return url, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req *ProductRequest, photo *PhotoUpload, actorID string) (*model.Product, error) {
	// 1. Validate request and derive slug
	req.Title = strings.TrimSpace(req.Title)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("title", req.Title)
	if err != nil {
		return nil, err
	}

	// 2. Uniqueness and references
	if err := checkUnique("Product", "title", req.Title, sl, s.productRepo.ExistsByTitle, s.productRepo.ExistsBySlug, nil); err != nil {
		return nil, err
	}
	companyID, err := s.resolveCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Title:     req.Title,
		Slug:      sl,
		CompanyID: companyID,
		RefWeight: *req.RefWeight,
	}
	product.CreatedBy = actorID
	product.UpdatedBy = actorID

	// 3. Store photo before the row so a failed upload saves nothing
	if photo != nil {
		if product.Photo, err = s.storePhoto(ctx, sl, photo); err != nil {
			return nil, err
		}
	}

	// 4. Save to database
	if err := s.productRepo.Create(product); err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}

	created, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}
	s.notify("product_created", created, actorID)
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productSlug string, req *ProductRequest, photo *PhotoUpload, actorID string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(productSlug)
	if err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := validate(req); err != nil {
		return nil, err
	}
	sl, err := deriveSlug("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := checkUnique("Product", "title", req.Title, sl, s.productRepo.ExistsByTitle, s.productRepo.ExistsBySlug, &product.ID); err != nil {
		return nil, err
	}
	companyID, err := s.resolveCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}

	product.Title = req.Title
	product.Slug = sl
	product.CompanyID = companyID
	product.Company = nil
	product.RefWeight = *req.RefWeight
	product.UpdatedBy = actorID

	if photo != nil {
		if product.Photo, err = s.storePhoto(ctx, sl, photo); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}

	updated, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}
	s.notify("product_updated", updated, actorID)
	return updated, nil
}

func (s *catalogService) SetProductPhoto(ctx context.Context, productSlug string, photo *PhotoUpload, actorID string) (*model.Product, error) {
	if photo == nil {
		return nil, newValidationError("photo", "No file was submitted.")
	}
	product, err := s.productRepo.FindBySlug(productSlug)
	if err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}

	if product.Photo, err = s.storePhoto(ctx, product.Slug, photo); err != nil {
		return nil, err
	}
	product.Company = nil
	product.UpdatedBy = actorID
	if err := s.productRepo.Update(product); err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}

	updated, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}
	s.notify("product_updated", updated, actorID)
	return updated, nil
}

func (s *catalogService) DeleteProduct(productSlug string, actorID string) error {
	product, err := s.productRepo.FindBySlug(productSlug)
	if err != nil {
		return translateStoreError(err, "Product", "title")
	}
	if err := s.productRepo.Delete(product.ID); err != nil {
		return translateStoreError(err, "Product", "title")
	}
	s.notify("product_deleted", map[string]string{"id": product.ID.String(), "slug": product.Slug}, actorID)
	return nil
}

func (s *catalogService) GetProduct(productSlug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(productSlug)
	if err != nil {
		return nil, translateStoreError(err, "Product", "title")
	}
	return product, nil
}

// NormalizePage clamps page numbers from query strings
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func (s *catalogService) ListProducts(filter string, page, pageSize int) (*ProductPage, error) {
	page, pageSize = NormalizePage(page, pageSize)
	products, total, err := s.productRepo.Search(strings.TrimSpace(filter), (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Page: page, PageSize: pageSize}, nil
}

// ManufacturerCatalog lists the products of one manufacturer ordered by title.
// A missing or malformed reference yields only the placeholder option.
func (s *catalogService) ManufacturerCatalog(ref string) ([]CatalogOption, error) {
	placeholder := []CatalogOption{PlaceholderOption}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return placeholder, nil
	}
	companyID, err := uuid.Parse(ref)
	if err != nil {
		return placeholder, nil
	}

	products, err := s.productRepo.FindByCompany(companyID)
	if err != nil {
		return nil, err
	}
	options := make([]CatalogOption, len(products))
	for i, p := range products {
		options[i] = CatalogOption{Value: p.ID.String(), Label: p.Title}
	}
	return options, nil
}
