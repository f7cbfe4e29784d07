package model

import "github.com/google/uuid"

// StockEntry is one purchased unit of a product owned by exactly one user.
type StockEntry struct {
	BaseModel
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company   `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
	ShopID    *uuid.UUID `gorm:"type:uuid;index" json:"shop_id"`
	Shop      *Shop      `gorm:"foreignKey:ShopID;constraint:OnDelete:SET NULL" json:"shop,omitempty"`
	Cost      float64    `gorm:"type:double precision;default:0" json:"cost"`
	Weight    float64    `gorm:"type:double precision;not null" json:"weight"`
}

// IsOwnedBy reports whether owner is the user that registered the entry
func (e *StockEntry) IsOwnedBy(owner uuid.UUID) bool {
	return e.OwnerID == owner
}
