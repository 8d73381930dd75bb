package models

import "time"

// Searchable field keys. These are the only keys the search layer may
// filter on; everything else in the details bag is display-only.
const (
	FieldBrandID      = "brand_id"
	FieldModelID      = "model_id"
	FieldGenerationID = "generation_id"
	FieldYear         = "year"
	FieldMileage      = "mileage"
	FieldCondition    = "condition"
	FieldBodyType     = "body_type"
	FieldEngineType   = "engine_type"
	FieldEngineVolume = "engine_volume"
	FieldTransmission = "transmission"
	FieldDriveType    = "drive_type"
	FieldColor        = "color"
	FieldCustoms      = "customs_cleared"
	FieldExchange     = "exchange_possible"
	FieldCredit       = "credit_available"
	FieldVIN          = "vin"
)

const (
	CONDITION_NEW     = "new"
	CONDITION_USED    = "used"
	CONDITION_DAMAGED = "damaged"
)

// ListingDetails keeps the car attributes of a listing in two JSON bags:
// Details is the full display payload, SearchableFields is the subset the
// search layer filters on. Both are written together on create/update.
type ListingDetails struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ListingID        uint      `gorm:"uniqueIndex;not null" json:"listing_id"`
	Details          JSONMap   `gorm:"type:json" json:"details"`
	SearchableFields JSONMap   `gorm:"type:json" json:"searchable_fields"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// searchableKeys lists which detail keys get mirrored into SearchableFields.
var searchableKeys = []string{
	FieldBrandID, FieldModelID, FieldGenerationID, FieldYear, FieldMileage,
	FieldCondition, FieldBodyType, FieldEngineType, FieldEngineVolume,
	FieldTransmission, FieldDriveType, FieldColor, FieldCustoms,
	FieldExchange, FieldCredit,
}

// SyncSearchableFields rebuilds the searchable subset from the details bag.
// Absent keys stay absent; they are never written as null.
func (d *ListingDetails) SyncSearchableFields() {
	fields := JSONMap{}
	for _, key := range searchableKeys {
		if v, ok := d.Details[key]; ok && v != nil {
			fields[key] = v
		}
	}
	d.SearchableFields = fields
}
