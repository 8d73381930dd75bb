package repository

import (
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
)

type entityRepository struct {
	db *gorm.DB
}

// NewEntityRepository creates a new entity repository instance
func NewEntityRepository(db *gorm.DB) EntityRepository {
	return &entityRepository{db: db}
}

func (r *entityRepository) Create(kind models.EntityKind) (*models.Entity, error) {
	entity := models.NewEntity(kind)
	if err := r.db.Create(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *entityRepository) GetByID(id uint) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.First(&entity, id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}
