package models

import "time"

type CarBrand struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug      string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	IsPopular bool       `gorm:"default:false" json:"is_popular"`
	Models    []CarModel `gorm:"foreignKey:BrandID" json:"models,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"-"`
}

type CarModel struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	BrandID     uint            `gorm:"index;not null" json:"brand_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string          `gorm:"type:varchar(100);index;not null" json:"slug"`
	Generations []CarGeneration `gorm:"foreignKey:ModelID" json:"generations,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
}

type CarGeneration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ModelID   uint      `gorm:"index;not null" json:"model_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	YearFrom  int       `gorm:"type:smallint" json:"year_from"`
	YearTo    *int      `gorm:"type:smallint" json:"year_to,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// CatalogItem is a generic lookup row shared by body types, engine types,
// transmissions, drive types and colors.
type CatalogItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Slug      string `gorm:"type:varchar(100);not null" json:"slug"`
	SortOrder int    `gorm:"default:0" json:"-"`
}

type BodyType struct {
	CatalogItem
}

type EngineType struct {
	CatalogItem
}

type Transmission struct {
	CatalogItem
}

type DriveType struct {
	CatalogItem
}

type Color struct {
	CatalogItem
	HexCode string `gorm:"type:char(7)" json:"hex_code"`
}

// CarFeature is an option a listing can carry (ABS, sunroof, heated seats).
type CarFeature struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Slug     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Category string `gorm:"type:varchar(50)" json:"category"`
}
