package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/cache"
)

// Reference data barely changes, so list responses are cached whole.
const catalogCacheTTL = time.Hour

// cachedCatalog serves a reference list from Redis, falling back to the
// loader on a miss. Cache failures degrade to a plain DB read.
func cachedCatalog(c *fiber.Ctx, key string, load func() (interface{}, error)) error {
	if raw, err := cache.Get(key); err == nil && raw != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(raw)
	}

	items, err := load()
	if err != nil {
		return respondError(c, err)
	}
	body, err := json.Marshal(fiber.Map{"data": items})
	if err != nil {
		return respondError(c, err)
	}
	if err := cache.Set(key, string(body), catalogCacheTTL); err != nil {
		log.Warnf("catalog cache write failed for %s: %v", key, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func HandleGetCountries(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:countries", func() (interface{}, error) {
		return repos.Catalog.GetCountries()
	})
}

func HandleGetRegions(c *fiber.Ctx) error {
	countryID, err := paramID(c, "countryId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	repos := repository.GetGlobalRepositories()
	regions, err := repos.Catalog.GetRegions(countryID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": regions})
}

func HandleGetCities(c *fiber.Ctx) error {
	regionID, err := paramID(c, "regionId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	repos := repository.GetGlobalRepositories()
	cities, err := repos.Catalog.GetCities(regionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cities})
}

func HandleGetCurrencies(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:currencies", func() (interface{}, error) {
		return repos.Catalog.GetCurrencies()
	})
}

func HandleGetBrands(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:brands", func() (interface{}, error) {
		return repos.Catalog.GetBrands()
	})
}

func HandleGetModels(c *fiber.Ctx) error {
	brandID, err := paramID(c, "brandId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	repos := repository.GetGlobalRepositories()
	carModels, err := repos.Catalog.GetModels(brandID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": carModels})
}

func HandleGetGenerations(c *fiber.Ctx) error {
	modelID, err := paramID(c, "modelId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	repos := repository.GetGlobalRepositories()
	generations, err := repos.Catalog.GetGenerations(modelID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": generations})
}

func HandleGetBodyTypes(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:body_types", func() (interface{}, error) {
		return repos.Catalog.GetBodyTypes()
	})
}

func HandleGetEngineTypes(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:engine_types", func() (interface{}, error) {
		return repos.Catalog.GetEngineTypes()
	})
}

func HandleGetTransmissions(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:transmissions", func() (interface{}, error) {
		return repos.Catalog.GetTransmissions()
	})
}

func HandleGetDriveTypes(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:drive_types", func() (interface{}, error) {
		return repos.Catalog.GetDriveTypes()
	})
}

func HandleGetColors(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:colors", func() (interface{}, error) {
		return repos.Catalog.GetColors()
	})
}

func HandleGetFeatures(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	return cachedCatalog(c, "catalog:features", func() (interface{}, error) {
		return repos.Catalog.GetFeatures()
	})
}
