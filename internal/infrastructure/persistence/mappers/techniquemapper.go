package mappers

import (
	"fmt"

	"curriculum/internal/domain/technique"
	"curriculum/internal/infrastructure/persistence/models"
	"curriculum/internal/shared/mapper"
)

// TechniqueMapper handles the conversion between technique entities and persistence models.
type TechniqueMapper interface {
	ToEntity(model *models.TechniqueModel) (*technique.Technique, error)
	ToModel(entity *technique.Technique) *models.TechniqueModel
	ToEntities(models []*models.TechniqueModel) ([]*technique.Technique, error)
}

// TechniqueMapperImpl is the concrete implementation of TechniqueMapper.
type TechniqueMapperImpl struct{}

// NewTechniqueMapper creates a new technique mapper.
func NewTechniqueMapper() TechniqueMapper {
	return &TechniqueMapperImpl{}
}

func (m *TechniqueMapperImpl) ToEntity(model *models.TechniqueModel) (*technique.Technique, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := technique.ReconstructTechnique(
		model.ID,
		model.SID,
		model.OrganizationID,
		model.Name,
		model.Slug,
		model.Category,
		model.Difficulty,
		model.Description,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct technique entity: %w", err)
	}
	return entity, nil
}

func (m *TechniqueMapperImpl) ToModel(entity *technique.Technique) *models.TechniqueModel {
	if entity == nil {
		return nil
	}

	return &models.TechniqueModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		OrganizationID: entity.OrganizationID(),
		Name:           entity.Name(),
		Slug:           entity.Slug(),
		Category:       entity.Category().String(),
		Difficulty:     entity.Difficulty().String(),
		Description:    entity.Description(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}
}

func (m *TechniqueMapperImpl) ToEntities(modelList []*models.TechniqueModel) ([]*technique.Technique, error) {
	return mapper.Rows(modelList, m.ToEntity, func(model *models.TechniqueModel) uint { return model.ID })
}
