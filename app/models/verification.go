package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	PhoneCodeLength      = 6
	PhoneCodeTTL         = 5 * time.Minute
	PhoneCodeMaxAttempts = 3
	EmailTokenTTL        = 24 * time.Hour
)

// PhoneVerification is a one-time SMS code. Older codes for the same phone
// are invalidated whenever a new one is issued.
type PhoneVerification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Phone     string     `gorm:"type:varchar(20);index;not null" json:"phone"`
	Code      string     `gorm:"type:varchar(10);not null" json:"-"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	UsedAt    *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NewPhoneVerification issues a fresh 6-digit code with a 5-minute expiry.
func NewPhoneVerification(userID uint, phone string) (*PhoneVerification, error) {
	code, err := randomDigits(PhoneCodeLength)
	if err != nil {
		return nil, err
	}
	return &PhoneVerification{
		UserID:    userID,
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(PhoneCodeTTL),
	}, nil
}

// IsExpired reports whether the code can no longer be used.
func (v *PhoneVerification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// CanAttempt reports whether another code check is allowed.
func (v *PhoneVerification) CanAttempt() bool {
	return v.UsedAt == nil && !v.IsExpired() && v.Attempts < PhoneCodeMaxAttempts
}

// Check validates the supplied code and counts the attempt.
func (v *PhoneVerification) Check(code string) bool {
	v.Attempts++
	if v.Code != code {
		return false
	}
	now := time.Now()
	v.UsedAt = &now
	return true
}

// EmailVerification is a token sent by mail, valid for 24 hours.
type EmailVerification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Email     string     `gorm:"type:varchar(200);not null" json:"email"`
	Token     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	UsedAt    *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NewEmailVerification issues a fresh random token.
func NewEmailVerification(userID uint, email string) (*EmailVerification, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return &EmailVerification{
		UserID:    userID,
		Email:     email,
		Token:     hex.EncodeToString(b),
		ExpiresAt: time.Now().Add(EmailTokenTTL),
	}, nil
}

// IsValid reports whether the token is unused and unexpired.
func (v *EmailVerification) IsValid() bool {
	return v.UsedAt == nil && time.Now().Before(v.ExpiresAt)
}

// LoginAttempt records a failed login for per-IP throttling.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Identity  string    `gorm:"type:varchar(200);index;not null" json:"identity"`
	IP        string    `gorm:"type:varchar(45);index" json:"ip"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// RefreshSession stores the SHA-256 hash of an issued refresh token. The
// raw token never touches the database.
type RefreshSession struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null;index" json:"expires_at"`
	RevokedAt *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// IsUsable reports whether the session may still mint access tokens.
func (s *RefreshSession) IsUsable() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// RevokedToken blacklists a JWT by its jti until the token would have expired.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JTI       string    `gorm:"type:char(36);uniqueIndex;not null" json:"jti"`
	UserID    uint      `gorm:"index" json:"user_id"`
	ExpiresAt time.Time `gorm:"type:timestamp;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func randomDigits(n int) (string, error) {
	code := ""
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", d.Int64())
	}
	return code, nil
}
