package models

import "time"

type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Code      string    `gorm:"type:char(2);uniqueIndex;not null" json:"code"`
	Regions   []Region  `gorm:"foreignKey:CountryID" json:"regions,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CountryID uint      `gorm:"index;not null" json:"country_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Cities    []City    `gorm:"foreignKey:RegionID" json:"cities,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RegionID  uint      `gorm:"index;not null" json:"region_id"`
	Name      string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Latitude  float64   `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude float64   `gorm:"type:decimal(11,8)" json:"longitude"`
	IsMajor   bool      `gorm:"default:false" json:"is_major"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// Currency carries the exchange rate to KZT used for price normalization.
type Currency struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:char(3);uniqueIndex;not null" json:"code"`
	Symbol    string    `gorm:"type:varchar(5)" json:"symbol"`
	RateToKZT float64   `gorm:"type:decimal(12,4);default:1" json:"rate_to_kzt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
