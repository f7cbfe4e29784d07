package model

// Company is a manufacturer. Name and Slug are both unique.
type Company struct {
	BaseModel
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
}

func (Company) TableName() string {
	return "companies"
}
