package db

import (
	"gorm.io/gorm"
)

// ByOrganization is a GORM scope restricting a query to one organization.
//
// Example usage:
//
//	db.Model(&models.TechniqueModel{}).Scopes(db.ByOrganization(orgID)).Where("slug IN ?", slugs)
func ByOrganization(organizationID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", organizationID)
	}
}

// ActiveOnly filters rows flagged inactive.
func ActiveOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	}
}
