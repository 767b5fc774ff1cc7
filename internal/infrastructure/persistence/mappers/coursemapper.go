package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/shared"
	"curriculum/internal/infrastructure/persistence/models"
	"curriculum/internal/shared/mapper"
)

// CourseMapper handles the conversion between course entities and persistence models.
type CourseMapper interface {
	// ToEntity converts a persistence model to a domain entity.
	ToEntity(model *models.CourseModel) (*course.Course, error)

	// ToModel converts a domain entity to a persistence model.
	ToModel(entity *course.Course) (*models.CourseModel, error)

	// ToEntities converts multiple persistence models to domain entities.
	ToEntities(models []*models.CourseModel) ([]*course.Course, error)
}

// CourseMapperImpl is the concrete implementation of CourseMapper.
type CourseMapperImpl struct{}

// NewCourseMapper creates a new course mapper.
func NewCourseMapper() CourseMapper {
	return &CourseMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity.
func (m *CourseMapperImpl) ToEntity(model *models.CourseModel) (*course.Course, error) {
	if model == nil {
		return nil, nil
	}

	details := course.Details{
		Name:                  model.Name,
		Description:           model.Description,
		Level:                 shared.Level(model.Level),
		SkillDomain:           model.SkillDomain,
		IsActive:              model.IsActive,
		IsBaseCourse:          model.IsBaseCourse,
		DurationWeeks:         model.DurationWeeks,
		LessonDurationMinutes: model.LessonDurationMinutes,
		ExpectedLessons:       model.ExpectedLessons,
	}
	if err := decodeJSON(model.Objectives, &details.Objectives); err != nil {
		return nil, fmt.Errorf("failed to decode course objectives: %w", err)
	}
	if err := decodeJSON(model.Equipment, &details.Equipment); err != nil {
		return nil, fmt.Errorf("failed to decode course equipment: %w", err)
	}
	if err := decodeJSON(model.Metadata, &details.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode course metadata: %w", err)
	}

	entity, err := course.ReconstructCourse(
		model.ID,
		model.SID,
		model.OrganizationID,
		model.NaturalKey,
		details,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct course entity: %w", err)
	}

	return entity, nil
}

// ToModel converts a domain entity to a persistence model.
func (m *CourseMapperImpl) ToModel(entity *course.Course) (*models.CourseModel, error) {
	if entity == nil {
		return nil, nil
	}

	d := entity.Details()
	objectives, err := encodeJSON(d.Objectives)
	if err != nil {
		return nil, fmt.Errorf("failed to encode course objectives: %w", err)
	}
	equipment, err := encodeJSON(d.Equipment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode course equipment: %w", err)
	}
	metadata, err := encodeJSON(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode course metadata: %w", err)
	}

	return &models.CourseModel{
		ID:                    entity.ID(),
		SID:                   entity.SID(),
		OrganizationID:        entity.OrganizationID(),
		Name:                  d.Name,
		NaturalKey:            entity.NaturalKey(),
		ActiveKey:             entity.ActiveKey(),
		Description:           d.Description,
		Level:                 d.Level.String(),
		SkillDomain:           d.SkillDomain,
		IsActive:              d.IsActive,
		IsBaseCourse:          d.IsBaseCourse,
		DurationWeeks:         d.DurationWeeks,
		LessonDurationMinutes: d.LessonDurationMinutes,
		ExpectedLessons:       d.ExpectedLessons,
		Objectives:            objectives,
		Equipment:             equipment,
		Metadata:              metadata,
		CreatedAt:             entity.CreatedAt(),
		UpdatedAt:             entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities.
func (m *CourseMapperImpl) ToEntities(modelList []*models.CourseModel) ([]*course.Course, error) {
	return mapper.Rows(modelList, m.ToEntity, func(model *models.CourseModel) uint { return model.ID })
}

// encodeJSON stores nil values as SQL NULL.
func encodeJSON(v any) (datatypes.JSON, error) {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return nil, nil
		}
	case map[string]any:
		if t == nil {
			return nil, nil
		}
	case []course.Section:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeJSON(raw datatypes.JSON, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
