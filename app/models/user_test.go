package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("+77011234567", nil, "secret123", "Aslan", "")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.Equal(t, USER_TYPE_REGULAR, u.UserType)
	assert.Equal(t, VERIFICATION_PENDING, u.VerificationStatus)
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("not-a-phone", nil, "secret123", "Aslan", "")
	assert.Error(t, err)

	_, err = CreateUser("+77011234567", nil, "short", "Aslan", "")
	assert.Error(t, err)
}

func TestListingQuotaPerUserType(t *testing.T) {
	tests := []struct {
		userType string
		quota    int
	}{
		{USER_TYPE_REGULAR, 5},
		{USER_TYPE_PRO, 50},
		{USER_TYPE_DEALER, 200},
		{"unknown", 5},
	}

	for _, tt := range tests {
		u := &User{UserType: tt.userType}
		assert.Equal(t, tt.quota, u.ListingQuota(), tt.userType)
	}
}

func TestVerificationStateMachine(t *testing.T) {
	u := &User{VerificationStatus: VERIFICATION_PENDING}

	u.MarkPhoneVerified()
	assert.Equal(t, VERIFICATION_PHONE_VERIFIED, u.VerificationStatus)

	u.MarkEmailVerified()
	assert.Equal(t, VERIFICATION_FULLY_VERIFIED, u.VerificationStatus)

	// order does not matter
	u2 := &User{VerificationStatus: VERIFICATION_PENDING}
	u2.MarkEmailVerified()
	assert.Equal(t, VERIFICATION_EMAIL_VERIFIED, u2.VerificationStatus)
	u2.MarkPhoneVerified()
	assert.Equal(t, VERIFICATION_FULLY_VERIFIED, u2.VerificationStatus)
}

func TestIsStaff(t *testing.T) {
	assert.True(t, (&User{UserType: USER_TYPE_ADMIN}).IsStaff())
	assert.True(t, (&User{UserType: USER_TYPE_MODERATOR}).IsStaff())
	assert.False(t, (&User{UserType: USER_TYPE_DEALER}).IsStaff())
}

func TestPhoneVerificationLifecycle(t *testing.T) {
	v, err := NewPhoneVerification(1, "+77011234567")
	require.NoError(t, err)

	assert.Len(t, v.Code, PhoneCodeLength)
	assert.True(t, v.CanAttempt())

	// wrong guesses consume attempts
	assert.False(t, v.Check("000000"))
	assert.False(t, v.Check("111111"))
	assert.False(t, v.Check("222222"))
	assert.False(t, v.CanAttempt())
}

func TestPhoneVerificationCorrectCode(t *testing.T) {
	v, err := NewPhoneVerification(1, "+77011234567")
	require.NoError(t, err)

	assert.True(t, v.Check(v.Code))
	assert.NotNil(t, v.UsedAt)
	assert.False(t, v.CanAttempt())
}

func TestPhoneVerificationExpiry(t *testing.T) {
	v, err := NewPhoneVerification(1, "+77011234567")
	require.NoError(t, err)

	v.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, v.IsExpired())
	assert.False(t, v.CanAttempt())
}
