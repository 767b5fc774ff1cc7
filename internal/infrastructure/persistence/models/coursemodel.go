package models

import (
	"time"

	"gorm.io/datatypes"

	"curriculum/internal/shared/constants"
)

// CourseModel represents the database persistence model for courses.
// ActiveKey mirrors NaturalKey while the course is active and is NULL
// otherwise, so the unique index only constrains active courses.
type CourseModel struct {
	ID                    uint           `gorm:"primarykey"`
	SID                   string         `gorm:"column:sid;not null;size:64;uniqueIndex:idx_course_sid"`
	OrganizationID        string         `gorm:"not null;size:64;index:idx_course_organization;uniqueIndex:idx_course_org_active_key,priority:1"`
	Name                  string         `gorm:"not null;size:255"`
	NaturalKey            string         `gorm:"not null;size:255"`
	ActiveKey             *string        `gorm:"size:255;uniqueIndex:idx_course_org_active_key,priority:2"`
	Description           string         `gorm:"type:text"`
	Level                 string         `gorm:"not null;size:20"`
	SkillDomain           string         `gorm:"size:100"`
	IsActive              bool           `gorm:"not null"`
	IsBaseCourse          bool           `gorm:"not null"`
	DurationWeeks         int            `gorm:"not null"`
	LessonDurationMinutes int            `gorm:"not null"`
	ExpectedLessons       int            `gorm:"not null"`
	Objectives            datatypes.JSON `gorm:"type:json"`
	Equipment             datatypes.JSON `gorm:"type:json"`
	Metadata              datatypes.JSON `gorm:"type:json"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	LessonPlans []LessonPlanModel      `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Roster      []CourseTechniqueModel `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM.
func (CourseModel) TableName() string {
	return constants.TableCourses
}
