package repository

import (
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
)

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository instance
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(m *models.MediaFile) error {
	return r.db.Create(m).Error
}

func (r *mediaRepository) GetByID(id uint) (*models.MediaFile, error) {
	var media models.MediaFile
	if err := r.db.First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) GetByUUID(uuid string) (*models.MediaFile, error) {
	var media models.MediaFile
	if err := r.db.Where("uuid = ?", uuid).First(&media).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) GetByEntity(entityID uint) ([]models.MediaFile, error) {
	var files []models.MediaFile
	err := r.db.Where("entity_id = ?", entityID).
		Order("is_primary DESC, sort_order, id").Find(&files).Error
	return files, err
}

func (r *mediaRepository) Update(m *models.MediaFile) error {
	return r.db.Save(m).Error
}

func (r *mediaRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.MediaFile{}, id).Error
}

// SetPrimary makes one file primary and clears the flag on its siblings.
func (r *mediaRepository) SetPrimary(entityID, mediaID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MediaFile{}).
			Where("entity_id = ?", entityID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.MediaFile{}).
			Where("id = ? AND entity_id = ?", mediaID, entityID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *mediaRepository) CountByEntity(entityID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MediaFile{}).Where("entity_id = ?", entityID).Count(&count).Error
	return count, err
}
