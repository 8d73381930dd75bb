package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AccessToken is a signed HS256 JWT plus its identifiers. The JTI is what
// the revocation list stores on logout.
type AccessToken struct {
	Token string
	JTI   string
	Exp   time.Time
}

// RefreshToken is an opaque random token. Only its SHA-256 hash is stored.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// Claims is what the auth middleware extracts from a verified token.
type Claims struct {
	UserID   uint
	UserType string
	Verified string
	JTI      string
	Exp      time.Time
}

func secret() []byte {
	return []byte(env.GetEnv("JWT_SECRET", ""))
}

// NewAccessToken builds and signs a JWT carrying the user id, type and
// verification status.
func NewAccessToken(userID uint, userType, verificationStatus string, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti := uuid.New().String()

	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"role":     userType,
		"verified": verificationStatus,
		"jti":      jti,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret())
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry and returns the claims.
func ParseAccessToken(raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: uint(userID)}
	claims.UserType, _ = mapClaims["role"].(string)
	claims.Verified, _ = mapClaims["verified"].(string)
	claims.JTI, _ = mapClaims["jti"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.Exp = exp.Time
	}
	return claims, nil
}

// NewRefreshToken returns a cryptographically random opaque token.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(ttl),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hex digest stored server-side.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
