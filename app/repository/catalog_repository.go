package repository

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/cache"
)

const catalogCacheTTL = 15 * time.Minute

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// cachedList serves a reference-data query through the Redis cache.
func cachedList[T any](key string, load func() ([]T, error)) ([]T, error) {
	if raw, err := cache.Get(key); err == nil && raw != "" {
		var items []T
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(items); err == nil {
		_ = cache.Set(key, data, catalogCacheTTL)
	}
	return items, nil
}

func (r *catalogRepository) GetCountries() ([]models.Country, error) {
	return cachedList("catalog:countries", func() ([]models.Country, error) {
		var countries []models.Country
		err := r.db.Order("name").Find(&countries).Error
		return countries, err
	})
}

func (r *catalogRepository) GetRegions(countryID uint) ([]models.Region, error) {
	var regions []models.Region
	err := r.db.Where("country_id = ?", countryID).Order("name").Find(&regions).Error
	return regions, err
}

func (r *catalogRepository) GetCities(regionID uint) ([]models.City, error) {
	var cities []models.City
	err := r.db.Where("region_id = ?", regionID).Order("is_major DESC, name").Find(&cities).Error
	return cities, err
}

func (r *catalogRepository) GetCityByID(id uint) (*models.City, error) {
	var city models.City
	if err := r.db.First(&city, id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *catalogRepository) GetCurrencies() ([]models.Currency, error) {
	var currencies []models.Currency
	err := r.db.Order("code").Find(&currencies).Error
	return currencies, err
}

func (r *catalogRepository) GetCurrencyByCode(code string) (*models.Currency, error) {
	var currency models.Currency
	if err := r.db.Where("code = ?", code).First(&currency).Error; err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *catalogRepository) GetBrands() ([]models.CarBrand, error) {
	return cachedList("catalog:brands", func() ([]models.CarBrand, error) {
		var brands []models.CarBrand
		err := r.db.Order("is_popular DESC, name").Find(&brands).Error
		return brands, err
	})
}

func (r *catalogRepository) GetModels(brandID uint) ([]models.CarModel, error) {
	var carModels []models.CarModel
	err := r.db.Where("brand_id = ?", brandID).Order("name").Find(&carModels).Error
	return carModels, err
}

func (r *catalogRepository) GetGenerations(modelID uint) ([]models.CarGeneration, error) {
	var generations []models.CarGeneration
	err := r.db.Where("model_id = ?", modelID).Order("year_from").Find(&generations).Error
	return generations, err
}

func (r *catalogRepository) GetBodyTypes() ([]models.BodyType, error) {
	var items []models.BodyType
	err := r.db.Order("sort_order").Find(&items).Error
	return items, err
}

func (r *catalogRepository) GetEngineTypes() ([]models.EngineType, error) {
	var items []models.EngineType
	err := r.db.Order("sort_order").Find(&items).Error
	return items, err
}

func (r *catalogRepository) GetTransmissions() ([]models.Transmission, error) {
	var items []models.Transmission
	err := r.db.Order("sort_order").Find(&items).Error
	return items, err
}

func (r *catalogRepository) GetDriveTypes() ([]models.DriveType, error) {
	var items []models.DriveType
	err := r.db.Order("sort_order").Find(&items).Error
	return items, err
}

func (r *catalogRepository) GetColors() ([]models.Color, error) {
	var items []models.Color
	err := r.db.Order("sort_order").Find(&items).Error
	return items, err
}

func (r *catalogRepository) GetFeatures() ([]models.CarFeature, error) {
	return cachedList("catalog:features", func() ([]models.CarFeature, error) {
		var features []models.CarFeature
		err := r.db.Order("category, name").Find(&features).Error
		return features, err
	})
}

func (r *catalogRepository) GetFeaturesByIDs(ids []uint) ([]models.CarFeature, error) {
	var features []models.CarFeature
	err := r.db.Where("id IN ?", ids).Find(&features).Error
	return features, err
}
