package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
)

type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository creates a new auth repository instance
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreatePhoneVerification stores a fresh code after invalidating older
// ones for the same phone.
func (r *authRepository) CreatePhoneVerification(v *models.PhoneVerification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.PhoneVerification{}).
			Where("phone = ? AND used_at IS NULL AND expires_at > ?", v.Phone, now).
			Update("expires_at", now).Error; err != nil {
			return err
		}
		return tx.Create(v).Error
	})
}

func (r *authRepository) GetActivePhoneVerification(userID uint) (*models.PhoneVerification, error) {
	var v models.PhoneVerification
	err := r.db.Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *authRepository) UpdatePhoneVerification(v *models.PhoneVerification) error {
	return r.db.Save(v).Error
}

func (r *authRepository) InvalidatePhoneVerifications(phone string) error {
	now := time.Now()
	return r.db.Model(&models.PhoneVerification{}).
		Where("phone = ? AND used_at IS NULL AND expires_at > ?", phone, now).
		Update("expires_at", now).Error
}

func (r *authRepository) CreateEmailVerification(v *models.EmailVerification) error {
	return r.db.Create(v).Error
}

func (r *authRepository) GetEmailVerificationByToken(tokenStr string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	err := r.db.Where("token = ?", tokenStr).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *authRepository) UpdateEmailVerification(v *models.EmailVerification) error {
	return r.db.Save(v).Error
}

func (r *authRepository) CreateRefreshSession(s *models.RefreshSession) error {
	return r.db.Create(s).Error
}

func (r *authRepository) GetRefreshSessionByHash(hash string) (*models.RefreshSession, error) {
	var s models.RefreshSession
	err := r.db.Where("token_hash = ?", hash).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *authRepository) RevokeRefreshSession(id uint) error {
	return r.db.Model(&models.RefreshSession{}).Where("id = ?", id).
		Update("revoked_at", time.Now()).Error
}

func (r *authRepository) RevokeUserSessions(userID uint) error {
	return r.db.Model(&models.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}

func (r *authRepository) RevokeToken(jti string, userID uint, expiresAt time.Time) error {
	return r.db.Create(&models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}).Error
}

func (r *authRepository) IsTokenRevoked(jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

func (r *authRepository) RecordLoginAttempt(identity, ip string) error {
	return r.db.Create(&models.LoginAttempt{Identity: identity, IP: ip}).Error
}

func (r *authRepository) CountRecentLoginAttempts(ip string, window time.Duration) (int64, error) {
	var count int64
	err := r.db.Model(&models.LoginAttempt{}).
		Where("ip = ? AND created_at > ?", ip, time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// CleanupExpired purges stale verifications, sessions and revocations.
// Runs from the maintenance job.
func (r *authRepository) CleanupExpired(before time.Time) (int64, error) {
	var total int64

	res := r.db.Unscoped().Where("expires_at < ?", before).Delete(&models.PhoneVerification{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.db.Unscoped().Where("expires_at < ?", before).Delete(&models.EmailVerification{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.db.Unscoped().Where("expires_at < ?", before).Delete(&models.RefreshSession{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.db.Unscoped().Where("expires_at < ?", before).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}

// CleanupLoginAttempts drops attempt rows older than the throttle window.
func (r *authRepository) CleanupLoginAttempts(before time.Time) (int64, error) {
	res := r.db.Unscoped().Where("created_at < ?", before).Delete(&models.LoginAttempt{})
	return res.RowsAffected, res.Error
}
