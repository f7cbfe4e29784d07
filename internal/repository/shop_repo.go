package repository

import (
	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(shop *model.Shop) error
	Update(shop *model.Shop) error
	Delete(id uuid.UUID) error
	FindAll() ([]model.Shop, error)
	FindByID(id uuid.UUID) (*model.Shop, error)
	ExistsByName(name string, excludeID *uuid.UUID) (bool, error)
	ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error)
}

type shopRepo struct {
	db *gorm.DB
}

func NewShopRepo(db *gorm.DB) ShopRepository {
	return &shopRepo{db}
}

func (r *shopRepo) Create(shop *model.Shop) error {
	return r.db.Create(shop).Error
}

func (r *shopRepo) Update(shop *model.Shop) error {
	return r.db.Save(shop).Error
}

// Delete removes the shop; stock entries bought there survive with no shop
func (r *shopRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.StockEntry{}).Where("shop_id = ?", id).
			Update("shop_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &model.Shop{}, id)
	})
}

func (r *shopRepo) FindAll() ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.Order("name ASC").Find(&shops).Error
	return shops, err
}

func (r *shopRepo) FindByID(id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) ExistsByName(name string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Shop{}, "name", name, excludeID)
}

func (r *shopRepo) ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Shop{}, "slug", slug, excludeID)
}
