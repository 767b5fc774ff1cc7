package models

import (
	"time"

	"curriculum/internal/shared/constants"
)

// TechniqueModel represents the database persistence model for techniques.
type TechniqueModel struct {
	ID             uint   `gorm:"primarykey"`
	SID            string `gorm:"column:sid;not null;size:64;uniqueIndex:idx_technique_sid"`
	OrganizationID string `gorm:"not null;size:64;uniqueIndex:idx_technique_org_slug,priority:1"`
	Name           string `gorm:"not null;size:255"`
	Slug           string `gorm:"not null;size:255;uniqueIndex:idx_technique_org_slug,priority:2"`
	Category       string `gorm:"not null;size:50"`
	Difficulty     string `gorm:"not null;size:20"`
	Description    string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM.
func (TechniqueModel) TableName() string {
	return constants.TableTechniques
}
