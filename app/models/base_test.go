package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapValueScanRoundTrip(t *testing.T) {
	original := JSONMap{
		"brand_id":        float64(12),
		"year":            float64(2019),
		"condition":       "used",
		"customs_cleared": true,
	}

	value, err := original.Value()
	require.NoError(t, err)

	var restored JSONMap
	require.NoError(t, restored.Scan(value))

	assert.Equal(t, original, restored)
}

func TestJSONMapScanNil(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestJSONMapScanInvalidSource(t *testing.T) {
	var m JSONMap
	assert.Error(t, m.Scan(42))
}

func TestJSONMapGetInt(t *testing.T) {
	m := JSONMap{"year": float64(2020), "condition": "new"}

	year, ok := m.GetInt("year")
	assert.True(t, ok)
	assert.Equal(t, 2020, year)

	_, ok = m.GetInt("condition")
	assert.False(t, ok)

	_, ok = m.GetInt("missing")
	assert.False(t, ok)
}

func TestEntityKindIsValid(t *testing.T) {
	assert.True(t, EntityKindListing.IsValid())
	assert.True(t, EntityKindTicket.IsValid())
	assert.False(t, EntityKind("gallery").IsValid())
}

func TestListingDetailsSyncSearchableFields(t *testing.T) {
	details := &ListingDetails{
		Details: JSONMap{
			FieldBrandID:   float64(3),
			FieldYear:      float64(2015),
			FieldMileage:   float64(120000),
			FieldCondition: "used",
			FieldVIN:       "WVWZZZ1KZAW000001",
			"comment":      "display only",
		},
	}

	details.SyncSearchableFields()

	assert.Equal(t, float64(3), details.SearchableFields[FieldBrandID])
	assert.Equal(t, float64(2015), details.SearchableFields[FieldYear])
	assert.Equal(t, "used", details.SearchableFields[FieldCondition])
	// VIN and free-form keys never become searchable
	assert.NotContains(t, details.SearchableFields, FieldVIN)
	assert.NotContains(t, details.SearchableFields, "comment")
}

func TestListingDetailsSyncSkipsAbsentKeys(t *testing.T) {
	details := &ListingDetails{Details: JSONMap{FieldYear: float64(2021)}}
	details.SyncSearchableFields()

	assert.Len(t, details.SearchableFields, 1)
	assert.NotContains(t, details.SearchableFields, FieldMileage)
}
