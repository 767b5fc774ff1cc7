package mappers

import (
	"fmt"

	"curriculum/internal/domain/course"
	"curriculum/internal/infrastructure/persistence/models"
)

// LessonPlanMapper converts lesson plans and their associations to persistence models.
// Lesson plans are write-only from the import path, so only the model
// direction is needed.
type LessonPlanMapper interface {
	ToModel(courseID uint, plan *course.LessonPlan) (*models.LessonPlanModel, error)
	ToTechniqueModels(lessonPlanID uint, links []course.LessonPlanTechnique) []*models.LessonPlanTechniqueModel
	ToRosterModels(courseID uint, roster []course.CourseTechnique) []*models.CourseTechniqueModel
}

// LessonPlanMapperImpl is the concrete implementation of LessonPlanMapper.
type LessonPlanMapperImpl struct{}

// NewLessonPlanMapper creates a new lesson plan mapper.
func NewLessonPlanMapper() LessonPlanMapper {
	return &LessonPlanMapperImpl{}
}

func (m *LessonPlanMapperImpl) ToModel(courseID uint, plan *course.LessonPlan) (*models.LessonPlanModel, error) {
	sections, err := encodeJSON(plan.Sections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lesson %d sections: %w", plan.LessonNumber, err)
	}
	equipment, err := encodeJSON(plan.Equipment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lesson %d equipment: %w", plan.LessonNumber, err)
	}
	objectives, err := encodeJSON(plan.Objectives)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lesson %d objectives: %w", plan.LessonNumber, err)
	}

	return &models.LessonPlanModel{
		CourseID:        courseID,
		LessonNumber:    plan.LessonNumber,
		WeekNumber:      plan.WeekNumber,
		Title:           plan.Title,
		Description:     plan.Description,
		DurationMinutes: plan.DurationMinutes,
		Level:           plan.Level.String(),
		Sections:        sections,
		Equipment:       equipment,
		Objectives:      objectives,
	}, nil
}

func (m *LessonPlanMapperImpl) ToTechniqueModels(lessonPlanID uint, links []course.LessonPlanTechnique) []*models.LessonPlanTechniqueModel {
	out := make([]*models.LessonPlanTechniqueModel, 0, len(links))
	for _, link := range links {
		out = append(out, &models.LessonPlanTechniqueModel{
			LessonPlanID:      lessonPlanID,
			TechniqueID:       link.TechniqueID,
			OrderIndex:        link.OrderIndex,
			AllocationMinutes: link.AllocationMinutes,
			Objective:         link.Objective,
		})
	}
	return out
}

func (m *LessonPlanMapperImpl) ToRosterModels(courseID uint, roster []course.CourseTechnique) []*models.CourseTechniqueModel {
	out := make([]*models.CourseTechniqueModel, 0, len(roster))
	for _, entry := range roster {
		out = append(out, &models.CourseTechniqueModel{
			CourseID:    courseID,
			TechniqueID: entry.TechniqueID,
			OrderIndex:  entry.OrderIndex,
			WeekNumber:  entry.WeekNumber,
			IsRequired:  entry.IsRequired,
		})
	}
	return out
}
