package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Title     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"title"`
	Slug      string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company   `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
	RefWeight float64    `gorm:"type:double precision;not null" json:"ref_weight"`
	Photo     string     `gorm:"type:varchar(255)" json:"photo,omitempty"`
}

// ManufacturerName returns the company name or "" when the product has none
func (p *Product) ManufacturerName() string {
	if p.Company == nil {
		return ""
	}
	return p.Company.Name
}
