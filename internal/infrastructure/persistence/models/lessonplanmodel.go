package models

import (
	"time"

	"gorm.io/datatypes"

	"curriculum/internal/shared/constants"
)

// LessonPlanModel represents the database persistence model for lesson plans.
type LessonPlanModel struct {
	ID              uint           `gorm:"primarykey"`
	CourseID        uint           `gorm:"not null;uniqueIndex:idx_lesson_plan_course_number,priority:1"`
	LessonNumber    int            `gorm:"not null;uniqueIndex:idx_lesson_plan_course_number,priority:2"`
	WeekNumber      int            `gorm:"not null"`
	Title           string         `gorm:"not null;size:255"`
	Description     string         `gorm:"type:text"`
	DurationMinutes int            `gorm:"not null"`
	Level           string         `gorm:"not null;size:20"`
	Sections        datatypes.JSON `gorm:"type:json"`
	Equipment       datatypes.JSON `gorm:"type:json"`
	Objectives      datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Techniques []LessonPlanTechniqueModel `gorm:"foreignKey:LessonPlanID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM.
func (LessonPlanModel) TableName() string {
	return constants.TableLessonPlans
}

// LessonPlanTechniqueModel links a lesson plan to a technique.
type LessonPlanTechniqueModel struct {
	ID                uint            `gorm:"primarykey"`
	LessonPlanID      uint            `gorm:"not null;uniqueIndex:idx_lesson_plan_technique,priority:1"`
	TechniqueID       uint            `gorm:"not null;uniqueIndex:idx_lesson_plan_technique,priority:2;index:idx_lesson_plan_technique_technique"`
	Technique         *TechniqueModel `gorm:"foreignKey:TechniqueID;constraint:OnDelete:RESTRICT"`
	OrderIndex        int             `gorm:"not null"`
	AllocationMinutes int             `gorm:"not null"`
	Objective         string          `gorm:"size:500"`
}

// TableName specifies the table name for GORM.
func (LessonPlanTechniqueModel) TableName() string {
	return constants.TableLessonPlanTechniques
}

// CourseTechniqueModel links a course to a technique in its roster.
type CourseTechniqueModel struct {
	ID          uint            `gorm:"primarykey"`
	CourseID    uint            `gorm:"not null;uniqueIndex:idx_course_technique,priority:1"`
	TechniqueID uint            `gorm:"not null;uniqueIndex:idx_course_technique,priority:2;index:idx_course_technique_technique"`
	Technique   *TechniqueModel `gorm:"foreignKey:TechniqueID;constraint:OnDelete:RESTRICT"`
	OrderIndex  int             `gorm:"not null"`
	WeekNumber  int             `gorm:"not null"`
	IsRequired  bool            `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (CourseTechniqueModel) TableName() string {
	return constants.TableCourseTechniques
}

// All returns every model in dependency order for schema migration.
func All() []any {
	return []any{
		&CourseModel{},
		&TechniqueModel{},
		&LessonPlanModel{},
		&LessonPlanTechniqueModel{},
		&CourseTechniqueModel{},
	}
}
