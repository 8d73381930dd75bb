package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	USER_TYPE_REGULAR   = "regular"
	USER_TYPE_PRO       = "pro"
	USER_TYPE_DEALER    = "dealer"
	USER_TYPE_MODERATOR = "moderator"
	USER_TYPE_ADMIN     = "admin"

	VERIFICATION_PENDING        = "pending"
	VERIFICATION_PHONE_VERIFIED = "phone_verified"
	VERIFICATION_EMAIL_VERIFIED = "email_verified"
	VERIFICATION_FULLY_VERIFIED = "fully_verified"
)

// MaxActiveListings is the per-user quota of simultaneously active listings.
var MaxActiveListings = map[string]int{
	USER_TYPE_REGULAR:   5,
	USER_TYPE_PRO:       50,
	USER_TYPE_DEALER:    200,
	USER_TYPE_MODERATOR: 200,
	USER_TYPE_ADMIN:     999999,
}

type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Phone              string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone" validate:"required,e164"`
	Email              *string        `gorm:"type:varchar(200);uniqueIndex" json:"email,omitempty" validate:"omitempty,email,max=200"`
	Password           string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	FirstName          string         `gorm:"type:varchar(100)" json:"first_name" validate:"required,min=1,max=100"`
	LastName           string         `gorm:"type:varchar(100)" json:"last_name" validate:"max=100"`
	UserType           string         `gorm:"type:varchar(20);default:'regular'" json:"user_type" validate:"oneof=regular pro dealer moderator admin"`
	VerificationStatus string         `gorm:"type:varchar(30);default:'pending'" json:"verification_status" validate:"oneof=pending phone_verified email_verified fully_verified"`
	IsBlocked          bool           `gorm:"default:false" json:"is_blocked"`
	BlockReason        string         `gorm:"type:varchar(255);default:null" json:"-"`
	LastLoginAt        *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	Profile            *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Settings           *UserSettings  `gorm:"foreignKey:UserID" json:"settings,omitempty"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a new regular user with a hashed password.
func CreateUser(phone string, email *string, password, firstName, lastName string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Phone:              phone,
		Email:              email,
		Password:           pw,
		FirstName:          firstName,
		LastName:           lastName,
		UserType:           USER_TYPE_REGULAR,
		VerificationStatus: VERIFICATION_PENDING,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// IsStaff reports whether the user may access moderation endpoints.
func (u *User) IsStaff() bool {
	return u.UserType == USER_TYPE_ADMIN || u.UserType == USER_TYPE_MODERATOR
}

// IsAdmin reports whether the user has full administrative access.
func (u *User) IsAdmin() bool {
	return u.UserType == USER_TYPE_ADMIN
}

// ListingQuota returns the maximum number of active listings for the user type.
func (u *User) ListingQuota() int {
	if limit, ok := MaxActiveListings[u.UserType]; ok {
		return limit
	}
	return MaxActiveListings[USER_TYPE_REGULAR]
}

// MarkPhoneVerified advances the verification state machine after a
// successful phone code check.
func (u *User) MarkPhoneVerified() {
	switch u.VerificationStatus {
	case VERIFICATION_EMAIL_VERIFIED, VERIFICATION_FULLY_VERIFIED:
		u.VerificationStatus = VERIFICATION_FULLY_VERIFIED
	default:
		u.VerificationStatus = VERIFICATION_PHONE_VERIFIED
	}
}

// MarkEmailVerified advances the verification state machine after a
// successful email token check.
func (u *User) MarkEmailVerified() {
	switch u.VerificationStatus {
	case VERIFICATION_PHONE_VERIFIED, VERIFICATION_FULLY_VERIFIED:
		u.VerificationStatus = VERIFICATION_FULLY_VERIFIED
	default:
		u.VerificationStatus = VERIFICATION_EMAIL_VERIFIED
	}
}

// FullName returns the display name used in notifications and messages.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
