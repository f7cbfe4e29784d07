package repository

import (
	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(company *model.Company) error
	Update(company *model.Company) error
	Delete(id uuid.UUID) error
	FindAll() ([]model.Company, error)
	FindByID(id uuid.UUID) (*model.Company, error)
	FindByIDs(ids []uuid.UUID) ([]model.Company, error)
	ExistsByName(name string, excludeID *uuid.UUID) (bool, error)
	ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *companyRepo) Update(company *model.Company) error {
	return r.db.Save(company).Error
}

// Delete removes the company and nulls every product and stock entry pointing at it
func (r *companyRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("company_id = ?", id).
			Update("company_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.StockEntry{}).Where("company_id = ?", id).
			Update("company_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &model.Company{}, id)
	})
}

func (r *companyRepo) FindAll() ([]model.Company, error) {
	var companies []model.Company
	err := r.db.Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *companyRepo) FindByID(id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) FindByIDs(ids []uuid.UUID) ([]model.Company, error) {
	var companies []model.Company
	if len(ids) == 0 {
		return companies, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&companies).Error
	return companies, err
}

func (r *companyRepo) ExistsByName(name string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Company{}, "name", name, excludeID)
}

func (r *companyRepo) ExistsBySlug(slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBy(r.db, &model.Company{}, "slug", slug, excludeID)
}
