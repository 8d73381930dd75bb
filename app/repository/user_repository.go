package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Profile").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhone retrieves a user by their phone number
func (r *userRepository) GetByPhone(phone string) (*models.User, error) {
	var user models.User
	err := r.db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves users with pagination
func (r *userRepository) List(p pagination.Params) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&users).Error
	return users, total, err
}

// Search finds users by phone, email or name
func (r *userRepository) Search(query string, p pagination.Params) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	like := "%" + query + "%"
	q := r.db.Model(&models.User{}).
		Where("phone LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like, like)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&users).Error
	return users, total, err
}

// CountSince counts users registered after the given time
func (r *userRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// GetProfile loads the profile row, creating an empty one when missing.
func (r *userRepository) GetProfile(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{UserID: userID}
		if err := r.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) SaveProfile(profile *models.UserProfile) error {
	return r.db.Save(profile).Error
}

// GetSettings loads the settings row, lazily creating defaults.
func (r *userRepository) GetSettings(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := models.DefaultUserSettings(userID)
		if err := r.db.Create(defaults).Error; err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *userRepository) SaveSettings(settings *models.UserSettings) error {
	return r.db.Save(settings).Error
}

// RegisterDevice upserts a push token. The same token re-registered by a
// different user moves to that user.
func (r *userRepository) RegisterDevice(device *models.DeviceRegistration) error {
	var existing models.DeviceRegistration
	err := r.db.Where("push_token = ?", device.PushToken).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		device.LastSeenAt = time.Now()
		return r.db.Create(device).Error
	}
	if err != nil {
		return err
	}
	existing.UserID = device.UserID
	existing.Platform = device.Platform
	existing.DeviceName = device.DeviceName
	existing.IsActive = true
	existing.LastSeenAt = time.Now()
	*device = existing
	return r.db.Save(&existing).Error
}

func (r *userRepository) GetActiveDevices(userID uint) ([]models.DeviceRegistration, error) {
	var devices []models.DeviceRegistration
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&devices).Error
	return devices, err
}

func (r *userRepository) DeactivateDevice(userID uint, pushToken string) error {
	return r.db.Model(&models.DeviceRegistration{}).
		Where("user_id = ? AND push_token = ?", userID, pushToken).
		Update("is_active", false).Error
}
