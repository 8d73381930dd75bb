package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhandosm/baraholka/app/repository"
)

func captureFilter(t *testing.T, target string) repository.ListingSearchFilter {
	t.Helper()
	var captured repository.ListingSearchFilter
	app := fiber.New()
	app.Get("/search", func(c *fiber.Ctx) error {
		captured = buildSearchFilter(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	resp.Body.Close()
	return captured
}

func TestBuildSearchFilterAllParams(t *testing.T) {
	filter := captureFilter(t, "/search?q=camry&city_id=1&brand_id=7&model_id=3"+
		"&price_min=1000000&price_max=9000000&year_min=2015&year_max=2022"+
		"&mileage_max=150000&condition=used&body_type=sedan&transmission=automatic"+
		"&featured=true&sort=price_asc&lat=43.23&lng=76.88&radius_km=50")

	assert.Equal(t, "camry", filter.Query)
	require.NotNil(t, filter.CityID)
	assert.Equal(t, uint(1), *filter.CityID)
	require.NotNil(t, filter.BrandID)
	assert.Equal(t, uint(7), *filter.BrandID)
	require.NotNil(t, filter.PriceMin)
	assert.Equal(t, int64(1000000), *filter.PriceMin)
	require.NotNil(t, filter.YearMax)
	assert.Equal(t, 2022, *filter.YearMax)
	require.NotNil(t, filter.MileageMax)
	assert.Equal(t, 150000, *filter.MileageMax)
	assert.Equal(t, "used", filter.Condition)
	assert.Equal(t, "sedan", filter.BodyType)
	assert.Equal(t, "automatic", filter.Transmission)
	assert.True(t, filter.OnlyFeatured)
	assert.False(t, filter.OnlyUrgent)
	assert.Equal(t, "price_asc", filter.Sort)
	require.NotNil(t, filter.RadiusKM)
	assert.InDelta(t, 50.0, *filter.RadiusKM, 0.001)
}

func TestBuildSearchFilterAbsentParamsStayNil(t *testing.T) {
	filter := captureFilter(t, "/search")

	assert.Empty(t, filter.Query)
	assert.Nil(t, filter.CityID)
	assert.Nil(t, filter.BrandID)
	assert.Nil(t, filter.PriceMin)
	assert.Nil(t, filter.PriceMax)
	assert.Nil(t, filter.YearMin)
	assert.Nil(t, filter.Latitude)
	assert.False(t, filter.OnlyFeatured)
}

func TestBuildSearchFilterGarbageNumbersIgnored(t *testing.T) {
	filter := captureFilter(t, "/search?city_id=abc&price_min=1e9&year_min=twenty")

	assert.Nil(t, filter.CityID)
	assert.Nil(t, filter.PriceMin)
	assert.Nil(t, filter.YearMin)
}
