package model

// Shop is a retailer where stock units were bought.
type Shop struct {
	BaseModel
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
}
