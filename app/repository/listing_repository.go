package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create stores the listing and its details bag in one transaction.
func (r *listingRepository) Create(listing *models.Listing, details *models.ListingDetails) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(listing).Error; err != nil {
			return err
		}
		details.ListingID = listing.ID
		details.SyncSearchableFields()
		return tx.Create(details).Error
	})
}

func (r *listingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Details").Preload("City").Preload("Features").First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetByEntityID(entityID uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Details").Where("entity_id = ?", entityID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

func (r *listingRepository) UpdateDetails(details *models.ListingDetails) error {
	details.SyncSearchableFields()
	return r.db.Save(details).Error
}

// SoftDelete hides the listing without removing the row.
func (r *listingRepository) SoftDelete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Listing{}).Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, id).Error
	})
}

// detailField addresses a searchable key inside the details JSON column.
func detailField(key string) string {
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(listing_details.searchable_fields, '$.%s'))", key)
}

func detailFieldInt(key string) string {
	return fmt.Sprintf("CAST(%s AS SIGNED)", detailField(key))
}

// Search composes every requested filter onto one query. Filters over JSON
// keys use JSON_EXTRACT; rows missing the key yield NULL and drop out of
// the comparison, which is the wanted behavior for absent attributes.
func (r *listingRepository) Search(filter ListingSearchFilter, p pagination.Params) ([]models.Listing, int64, error) {
	q := r.db.Model(&models.Listing{}).
		Joins("LEFT JOIN listing_details ON listing_details.listing_id = listings.id").
		Where("listings.is_active = ?", true)

	status := filter.Status
	if status == "" {
		status = models.LISTING_STATUS_ACTIVE
	}
	q = q.Where("listings.status = ?", status)

	if filter.UserID != nil {
		q = q.Where("listings.user_id = ?", *filter.UserID)
	}
	if filter.Query != "" {
		q = q.Where("MATCH(listings.title, listings.description) AGAINST (? IN NATURAL LANGUAGE MODE)", filter.Query)
	}
	if filter.CityID != nil {
		q = q.Where("listings.city_id = ?", *filter.CityID)
	}
	if filter.RegionID != nil {
		q = q.Where("listings.city_id IN (SELECT id FROM cities WHERE region_id = ?)", *filter.RegionID)
	}
	if filter.Latitude != nil && filter.Longitude != nil && filter.RadiusKM != nil {
		// haversine over the listing coordinates, radius in kilometers
		q = q.Where(
			"(6371 * ACOS(LEAST(1.0, COS(RADIANS(?)) * COS(RADIANS(listings.latitude)) * "+
				"COS(RADIANS(listings.longitude) - RADIANS(?)) + SIN(RADIANS(?)) * SIN(RADIANS(listings.latitude))))) <= ?",
			*filter.Latitude, *filter.Longitude, *filter.Latitude, *filter.RadiusKM,
		)
	}
	if filter.PriceMin != nil {
		q = q.Where("listings.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("listings.price <= ?", *filter.PriceMax)
	}
	if filter.YearMin != nil {
		q = q.Where(detailFieldInt(models.FieldYear)+" >= ?", *filter.YearMin)
	}
	if filter.YearMax != nil {
		q = q.Where(detailFieldInt(models.FieldYear)+" <= ?", *filter.YearMax)
	}
	if filter.MileageMax != nil {
		q = q.Where(detailFieldInt(models.FieldMileage)+" <= ?", *filter.MileageMax)
	}
	if filter.Condition != "" {
		q = q.Where(detailField(models.FieldCondition)+" = ?", filter.Condition)
	}
	if filter.BrandID != nil {
		q = q.Where(detailFieldInt(models.FieldBrandID)+" = ?", *filter.BrandID)
	}
	if filter.ModelID != nil {
		q = q.Where(detailFieldInt(models.FieldModelID)+" = ?", *filter.ModelID)
	}
	if filter.BodyType != "" {
		q = q.Where(detailField(models.FieldBodyType)+" = ?", filter.BodyType)
	}
	if filter.EngineType != "" {
		q = q.Where(detailField(models.FieldEngineType)+" = ?", filter.EngineType)
	}
	if filter.Transmission != "" {
		q = q.Where(detailField(models.FieldTransmission)+" = ?", filter.Transmission)
	}
	if filter.DriveType != "" {
		q = q.Where(detailField(models.FieldDriveType)+" = ?", filter.DriveType)
	}
	if filter.Color != "" {
		q = q.Where(detailField(models.FieldColor)+" = ?", filter.Color)
	}
	if filter.OnlyFeatured {
		q = q.Where("listings.is_featured = ?", true)
	}
	if filter.OnlyUrgent {
		q = q.Where("listings.is_urgent = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := q.Order(searchOrder(filter.Sort)).
		Offset(p.Offset()).Limit(p.PerPage).
		Preload("Details").Preload("City").
		Find(&listings).Error
	return listings, total, err
}

// searchOrder maps the sort enum to SQL. Unknown values get the default
// relevance ordering.
func searchOrder(sort string) string {
	switch sort {
	case "date_desc":
		return "listings.published_date DESC, listings.created_at DESC"
	case "date_asc":
		return "listings.published_date ASC, listings.created_at ASC"
	case "price_asc":
		return "listings.price ASC"
	case "price_desc":
		return "listings.price DESC"
	case "year_asc":
		return detailFieldInt(models.FieldYear) + " ASC"
	case "year_desc":
		return detailFieldInt(models.FieldYear) + " DESC"
	case "mileage_asc":
		return detailFieldInt(models.FieldMileage) + " ASC"
	case "mileage_desc":
		return detailFieldInt(models.FieldMileage) + " DESC"
	default:
		return "listings.is_featured DESC, listings.is_urgent DESC, listings.published_date DESC"
	}
}

func (r *listingRepository) CountActiveByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).
		Where("user_id = ? AND status IN ? AND is_active = ?",
			userID,
			[]string{models.LISTING_STATUS_ACTIVE, models.LISTING_STATUS_MODERATION},
			true).
		Count(&count).Error
	return count, err
}

func (r *listingRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *listingRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *listingRepository) SetFavoriteCountDelta(id uint, delta int) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count + ?, 0)", delta)).Error
}

// ExpireOverdue flips active listings whose window has passed and
// returns them so the caller can notify the owners.
func (r *listingRepository) ExpireOverdue(now time.Time) ([]models.Listing, error) {
	var overdue []models.Listing
	err := r.db.
		Where("status = ? AND expires_date IS NOT NULL AND expires_date < ?", models.LISTING_STATUS_ACTIVE, now).
		Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(overdue))
	for _, l := range overdue {
		ids = append(ids, l.ID)
	}
	err = r.db.Model(&models.Listing{}).Where("id IN ?", ids).
		Update("status", models.LISTING_STATUS_EXPIRED).Error
	return overdue, err
}

// ToggleFavorite adds or removes a favorite. A previously soft-deleted row
// is restored instead of inserting a duplicate, so the unique index holds.
func (r *listingRepository) ToggleFavorite(userID, entityID uint, folder string) (bool, error) {
	var added bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var fav models.Favorite
		err := tx.Unscoped().
			Where("user_id = ? AND entity_id = ?", userID, entityID).
			First(&fav).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fav = models.Favorite{UserID: userID, EntityID: entityID, Folder: folder}
			if err := tx.Create(&fav).Error; err != nil {
				return err
			}
			added = true
		case err != nil:
			return err
		case fav.DeletedAt.Valid:
			if err := tx.Unscoped().Model(&fav).
				Updates(map[string]interface{}{"deleted_at": nil, "folder": folder}).Error; err != nil {
				return err
			}
			added = true
		default:
			if err := tx.Delete(&fav).Error; err != nil {
				return err
			}
			added = false
		}
		return nil
	})
	return added, err
}

func (r *listingRepository) GetFavorites(userID uint, folder string, p pagination.Params) ([]models.Favorite, int64, error) {
	q := r.db.Model(&models.Favorite{}).Where("user_id = ?", userID)
	if folder != "" {
		q = q.Where("folder = ?", folder)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []models.Favorite
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&favorites).Error
	return favorites, total, err
}

func (r *listingRepository) IsFavorite(userID, entityID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND entity_id = ?", userID, entityID).
		Count(&count).Error
	return count > 0, err
}
