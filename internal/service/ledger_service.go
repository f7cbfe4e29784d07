package service

import (
	"errors"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
)

type LedgerService interface {
	CreateEntry(owner uuid.UUID, req *CreateEntryRequest) (*model.StockEntry, error)
	UpdateEntry(id, owner uuid.UUID, req *UpdateEntryRequest) (*model.StockEntry, error)
	DeleteEntry(id, owner uuid.UUID) error
	ProductEntries(owner uuid.UUID, productSlug string) (*ProductDetail, error)
}

type CreateEntryRequest struct {
	ProductID uuid.UUID  `json:"product_id" form:"product_id" validate:"uuid_required"`
	CompanyID *uuid.UUID `json:"company_id" form:"company_id"`
	ShopID    *uuid.UUID `json:"shop_id" form:"shop_id"`
	Cost      *float64   `json:"cost" form:"cost"`
	Weight    *float64   `json:"weight" form:"weight" validate:"required"`
}

type UpdateEntryRequest struct {
	ShopID *uuid.UUID `json:"shop_id" form:"shop_id"`
	Cost   *float64   `json:"cost" form:"cost"`
	Weight *float64   `json:"weight" form:"weight" validate:"required"`
}

// EntryView is one row of the product detail table
type EntryView struct {
	ID        uuid.UUID `json:"id"`
	ShopName  string    `json:"shop_name"`
	Cost      float64   `json:"cost"`
	Weight    float64   `json:"weight"`
	Mismatch  bool      `json:"mismatch"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductDetail struct {
	Product *model.Product `json:"product"`
	Entries []EntryView    `json:"entries"`
}

type ledgerService struct {
	entryRepo   repository.StockEntryRepository
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	shopRepo    repository.ShopRepository
	notifier    Notifier
}

func NewLedgerService(
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	shopRepo repository.ShopRepository,
	notifier Notifier,
) LedgerService {
	return &ledgerService{
		entryRepo:   entryRepo,
		productRepo: productRepo,
		companyRepo: companyRepo,
		shopRepo:    shopRepo,
		notifier:    notifier,
	}
}

func (s *ledgerService) notify(owner uuid.UUID, action string, data interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(owner.String(), map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"data":   data,
	})
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

func (s *ledgerService) checkCompany(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	if _, err := s.companyRepo.FindByID(*id); err != nil {
		if errors.Is(translateStoreError(err, "Company", ""), ErrNotFound) {
			return nil, newValidationError("company_id", invalidChoice)
		}
		return nil, err
	}
	return id, nil
}

func (s *ledgerService) checkShop(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	if _, err := s.shopRepo.FindByID(*id); err != nil {
		if errors.Is(translateStoreError(err, "Shop", ""), ErrNotFound) {
			return nil, newValidationError("shop_id", invalidChoice)
		}
		return nil, err
	}
	return id, nil
}

// CreateEntry records one unit for owner. Without an explicit manufacturer
// the entry takes the product's one.
func (s *ledgerService) CreateEntry(owner uuid.UUID, req *CreateEntryRequest) (*model.StockEntry, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Resolve references
	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		return nil, translateStoreError(err, "Product", "")
	}
	companyID, err := s.checkCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if companyID == nil {
		companyID = product.CompanyID
	}
	shopID, err := s.checkShop(req.ShopID)
	if err != nil {
		return nil, err
	}

	entry := &model.StockEntry{
		ProductID: product.ID,
		OwnerID:   owner,
		CompanyID: companyID,
		ShopID:    shopID,
		Weight:    *req.Weight,
	}
	if req.Cost != nil {
		entry.Cost = *req.Cost
	}
	entry.CreatedBy = owner.String()
	entry.UpdatedBy = owner.String()

	// 3. Save to database
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, err
	}

	created, err := s.entryRepo.FindByID(entry.ID)
	if err != nil {
		return nil, err
	}
	s.notify(owner, "entry_created", created)
	return created, nil
}

// findOwned loads an entry and refuses access to anyone but its owner
func (s *ledgerService) findOwned(id, owner uuid.UUID) (*model.StockEntry, error) {
	entry, err := s.entryRepo.FindByID(id)
	if err != nil {
		return nil, translateStoreError(err, "Stock entry", "")
	}
	if !entry.IsOwnedBy(owner) {
		return nil, ErrForbidden
	}
	return entry, nil
}

func (s *ledgerService) UpdateEntry(id, owner uuid.UUID, req *UpdateEntryRequest) (*model.StockEntry, error) {
	entry, err := s.findOwned(id, owner)
	if err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	shopID, err := s.checkShop(req.ShopID)
	if err != nil {
		return nil, err
	}

	entry.ShopID = shopID
	entry.Weight = *req.Weight
	entry.Cost = 0
	if req.Cost != nil {
		entry.Cost = *req.Cost
	}
	entry.UpdatedBy = owner.String()
	entry.Product, entry.Company, entry.Shop = nil, nil, nil

	if err := s.entryRepo.Update(entry); err != nil {
		return nil, err
	}

	updated, err := s.entryRepo.FindByID(entry.ID)
	if err != nil {
		return nil, err
	}
	s.notify(owner, "entry_updated", updated)
	return updated, nil
}

func (s *ledgerService) DeleteEntry(id, owner uuid.UUID) error {
	entry, err := s.findOwned(id, owner)
	if err != nil {
		return err
	}
	if err := s.entryRepo.Delete(entry.ID); err != nil {
		return translateStoreError(err, "Stock entry", "")
	}
	s.notify(owner, "entry_deleted", map[string]string{"id": entry.ID.String(), "product_id": entry.ProductID.String()})
	return nil
}

// ProductEntries returns a product with the units owner holds of it
func (s *ledgerService) ProductEntries(owner uuid.UUID, productSlug string) (*ProductDetail, error) {
	product, err := s.productRepo.FindBySlug(productSlug)
	if err != nil {
		return nil, translateStoreError(err, "Product", "")
	}

	entries, err := s.entryRepo.FindByOwnerAndProduct(owner, product.ID)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = EntryView{
			ID:        e.ID,
			Cost:      e.Cost,
			Weight:    e.Weight,
			Mismatch:  e.Weight != product.RefWeight,
			CreatedAt: e.CreatedAt,
		}
		if e.Shop != nil {
			views[i].ShopName = e.Shop.Name
		}
	}
	return &ProductDetail{Product: product, Entries: views}, nil
}
