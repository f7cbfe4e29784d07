package repository

import (
	"strings"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindByIDs(ids []uuid.UUID) ([]model.Product, error)
	FindByCompany(companyID uuid.UUID) ([]model.Product, error)
	Search(filter string, offset, limit int) ([]model.Product, int64, error)
	ExistsByTitle(title string, excludeID *uuid.UUID) (bool, error)
	ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Omit(clause.Associations).Save(product).Error
}

// Delete removes the product together with every stock entry of it
func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.StockEntry{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &model.Product{}, id)
	})
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Company").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Company").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Preload("Company").Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCompany(companyID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("company_id = ?", companyID).Order("title ASC").Find(&products).Error
	return products, err
}

// Search lists products ordered by title. A non-empty filter keeps products whose
// title or manufacturer name contains it, case-insensitively. limit <= 0 means no limit.
func (r *productRepo) Search(filter string, offset, limit int) ([]model.Product, int64, error) {
	base := func() *gorm.DB {
		q := r.db.Model(&model.Product{})
		if filter = strings.TrimSpace(filter); filter != "" {
			like := "%" + escapeLike(strings.ToLower(filter)) + "%"
			q = q.Joins("LEFT JOIN companies ON companies.id = products.company_id").
				Where("LOWER(products.title) LIKE ? ESCAPE '!' OR LOWER(companies.name) LIKE ? ESCAPE '!'", like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = -1
	}
	var products []model.Product
	err := base().Select("products.*").Preload("Company").
		Order("products.title ASC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) ExistsByTitle(title string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Product{}, "title", title, excludeID)
}

func (r *productRepo) ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Product{}, "slug", slug, excludeID)
}
