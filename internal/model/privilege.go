package model

// Privilege represents a permission granted through a role
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "catalog:delete"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Delete Catalog Records"
}

const (
	PrivCatalogDelete = "catalog:delete"
	PrivUserView      = "user:view"
	PrivUserUpdate    = "user:update"
	PrivUserDelete    = "user:delete"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Catalog maintenance (companies, shops, products)
	{Code: PrivCatalogDelete, Name: "Delete Catalog Records"},
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserUpdate, Name: "Update User Role"},
	{Code: PrivUserDelete, Name: "Delete User"},
}
