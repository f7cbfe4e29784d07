package repository

import (
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockEntryRepository interface {
	Create(entry *model.StockEntry) error
	Update(entry *model.StockEntry) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.StockEntry, error)
	FindByOwnerAndProduct(ownerID, productID uuid.UUID) ([]model.StockEntry, error)
	FindWeightsByOwner(ownerID uuid.UUID) ([]model.StockEntry, error)
	CountByOwner(ownerID uuid.UUID) (int64, error)
	GetLedgerStats(ownerID uuid.UUID) (*LedgerStats, error)
	GetDailyIntake(ownerID uuid.UUID, startDate, endDate time.Time) ([]DailyIntake, error)
}

// LedgerStats untuk overview stats
type LedgerStats struct {
	TotalProducts     int64   `json:"total_products"`
	TotalEntries      int64   `json:"total_entries"`
	TotalCost         float64 `json:"total_cost"`
	TotalWeight       float64 `json:"total_weight"`
	MismatchedEntries int64   `json:"mismatched_entries"`
}

// DailyIntake untuk chart data
type DailyIntake struct {
	Date   string  `json:"date"`
	Units  int64   `json:"units"`
	Weight float64 `json:"weight"`
	Cost   float64 `json:"cost"`
}

type stockEntryRepo struct {
	db *gorm.DB
}

func NewStockEntryRepo(db *gorm.DB) StockEntryRepository {
	return &stockEntryRepo{db}
}

func (r *stockEntryRepo) Create(entry *model.StockEntry) error {
	return r.db.Omit(clause.Associations).Create(entry).Error
}

func (r *stockEntryRepo) Update(entry *model.StockEntry) error {
	return r.db.Omit(clause.Associations).Save(entry).Error
}

func (r *stockEntryRepo) Delete(id uuid.UUID) error {
	return deleteByID(r.db, &model.StockEntry{}, id)
}

func (r *stockEntryRepo) FindByID(id uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := r.db.Preload("Product").Preload("Company").Preload("Shop").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockEntryRepo) FindByOwnerAndProduct(ownerID, productID uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.Preload("Shop").Preload("Company").
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// FindWeightsByOwner loads only the columns the aggregation needs
func (r *stockEntryRepo) FindWeightsByOwner(ownerID uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.Select("id", "product_id", "company_id", "weight").
		Where("owner_id = ?", ownerID).
		Find(&entries).Error
	return entries, err
}

func (r *stockEntryRepo) CountByOwner(ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StockEntry{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

func (r *stockEntryRepo) GetLedgerStats(ownerID uuid.UUID) (*LedgerStats, error) {
	var stats LedgerStats

	err := r.db.Model(&model.StockEntry{}).
		Select(`
			COUNT(DISTINCT product_id) AS total_products,
			COUNT(*) AS total_entries,
			COALESCE(SUM(cost), 0) AS total_cost,
			COALESCE(SUM(weight), 0) AS total_weight
		`).
		Where("owner_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	// Strict inequality against the product's current reference weight
	err = r.db.Model(&model.StockEntry{}).
		Joins("JOIN products ON products.id = stock_entries.product_id").
		Where("stock_entries.owner_id = ? AND stock_entries.weight <> products.ref_weight", ownerID).
		Count(&stats.MismatchedEntries).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *stockEntryRepo) GetDailyIntake(ownerID uuid.UUID, startDate, endDate time.Time) ([]DailyIntake, error) {
	var results []DailyIntake

	// Query untuk aggregate entries per hari
	rows, err := r.db.Model(&model.StockEntry{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as units,
			COALESCE(SUM(weight), 0) as weight,
			COALESCE(SUM(cost), 0) as cost
		`).
		Where("owner_id = ? AND created_at BETWEEN ? AND ?", ownerID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyIntake
		if err := rows.Scan(&data.Date, &data.Units, &data.Weight, &data.Cost); err != nil {
			return nil, err
		}
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
