package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

type createListingRequest struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Price        int64                  `json:"price"`
	CurrencyCode string                 `json:"currency_code"`
	CityID       uint                   `json:"city_id"`
	Latitude     *float64               `json:"latitude"`
	Longitude    *float64               `json:"longitude"`
	ContactName  string                 `json:"contact_name"`
	ContactPhone string                 `json:"contact_phone"`
	IsNegotiable bool                   `json:"is_negotiable"`
	Details      map[string]interface{} `json:"details"`
	FeatureIDs   []uint                 `json:"feature_ids"`
}

// HandleCreateListing creates a listing in moderation status and puts it
// on the review queue. The active-listing quota of the user type is
// enforced here, not at publish time, so a full account cannot stockpile
// drafts that all go live at once.
func HandleCreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if user.IsBlocked {
		return respondForbidden(c, "Account is blocked")
	}

	activeCount, err := repos.Listing.CountActiveByUser(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	if activeCount >= int64(user.ListingQuota()) {
		return respondError(c, apperrors.BusinessLogic(
			fmt.Sprintf("active listing limit reached (%d)", user.ListingQuota())))
	}

	if _, err := repos.Catalog.GetCityByID(req.CityID); err != nil {
		return respondError(c, apperrors.Validation("unknown city"))
	}

	if req.CurrencyCode == "" {
		req.CurrencyCode = "KZT"
	}
	if req.ContactName == "" {
		req.ContactName = user.FirstName
	}
	if req.ContactPhone == "" {
		req.ContactPhone = user.Phone
	}

	entity, err := repos.Entity.Create(models.EntityKindListing)
	if err != nil {
		return respondError(c, err)
	}

	listing := &models.Listing{
		EntityID:     entity.ID,
		UserID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		CurrencyCode: req.CurrencyCode,
		Status:       models.LISTING_STATUS_MODERATION,
		CityID:       req.CityID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		IsNegotiable: req.IsNegotiable,
		IsActiveFlag: true,
	}
	if err := listing.Validate(); err != nil {
		return respondValidation(c, err.Error())
	}

	if len(req.FeatureIDs) > 0 {
		features, err := repos.Catalog.GetFeaturesByIDs(req.FeatureIDs)
		if err != nil {
			return respondError(c, err)
		}
		listing.Features = features
	}

	details := &models.ListingDetails{Details: models.JSONMap(req.Details)}
	if details.Details == nil {
		details.Details = models.JSONMap{}
	}
	details.SyncSearchableFields()

	if err := repos.Listing.Create(listing, details); err != nil {
		return respondError(c, err)
	}

	queueItem := &models.ModerationQueue{
		EntityID:  entity.ID,
		ListingID: listing.ID,
		Status:    models.MODERATION_STATUS_PENDING,
		Priority:  models.MODERATION_PRIORITY_NORMAL,
	}
	if err := repos.Moderation.Enqueue(queueItem); err != nil {
		return respondError(c, err)
	}

	listing.Details = details
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"listing": listing})
}

// HandleGetListing returns a single listing. Non-active listings are only
// visible to their owner and staff. Views by anyone but the owner bump
// the view counter.
func HandleGetListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}

	userCtx := usercontext.Get(c)
	isOwner := userCtx.IsAuthenticated() && userCtx.UserID == listing.UserID
	if listing.Status != models.LISTING_STATUS_ACTIVE && !isOwner && !userCtx.IsStaff() {
		return respondNotFound(c, "listing")
	}

	if !isOwner {
		if err := repos.Listing.IncrementViewCount(listing.ID); err != nil {
			log.Warnf("view count increment failed for listing %d: %v", listing.ID, err)
		} else {
			listing.ViewCount++
		}
	}

	response := fiber.Map{"listing": listing}
	if userCtx.IsAuthenticated() {
		favorited, err := repos.Listing.IsFavorite(userCtx.UserID, listing.EntityID)
		if err == nil {
			response["is_favorite"] = favorited
		}
	}
	return c.JSON(response)
}

type updateListingRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Price        *int64                 `json:"price"`
	CurrencyCode *string                `json:"currency_code"`
	CityID       *uint                  `json:"city_id"`
	Latitude     *float64               `json:"latitude"`
	Longitude    *float64               `json:"longitude"`
	ContactName  *string                `json:"contact_name"`
	ContactPhone *string                `json:"contact_phone"`
	IsNegotiable *bool                  `json:"is_negotiable"`
	Details      map[string]interface{} `json:"details"`
}

// HandleUpdateListing edits a listing. Content changes to an active
// listing send it back through moderation.
func HandleUpdateListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req updateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your listing")
	}
	if !listing.IsEditable() {
		return respondError(c, apperrors.BusinessLogic("listing can no longer be edited"))
	}

	contentChanged := false
	if req.Title != nil && *req.Title != listing.Title {
		listing.Title = *req.Title
		contentChanged = true
	}
	if req.Description != nil && *req.Description != listing.Description {
		listing.Description = *req.Description
		contentChanged = true
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.CurrencyCode != nil {
		listing.CurrencyCode = *req.CurrencyCode
	}
	if req.CityID != nil {
		if _, err := repos.Catalog.GetCityByID(*req.CityID); err != nil {
			return respondError(c, apperrors.Validation("unknown city"))
		}
		listing.CityID = *req.CityID
	}
	if req.Latitude != nil {
		listing.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		listing.Longitude = req.Longitude
	}
	if req.ContactName != nil {
		listing.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		listing.ContactPhone = *req.ContactPhone
	}
	if req.IsNegotiable != nil {
		listing.IsNegotiable = *req.IsNegotiable
	}

	if contentChanged && listing.Status == models.LISTING_STATUS_ACTIVE {
		listing.Status = models.LISTING_STATUS_MODERATION
	}

	if err := listing.Validate(); err != nil {
		return respondValidation(c, err.Error())
	}
	if err := repos.Listing.Update(listing); err != nil {
		return respondError(c, err)
	}

	if req.Details != nil {
		details := &models.ListingDetails{
			ListingID: listing.ID,
			Details:   models.JSONMap(req.Details),
		}
		details.SyncSearchableFields()
		if err := repos.Listing.UpdateDetails(details); err != nil {
			return respondError(c, err)
		}
		listing.Details = details
	}

	if contentChanged && listing.Status == models.LISTING_STATUS_MODERATION {
		if existing, err := repos.Moderation.GetPendingByListing(listing.ID); err != nil || existing == nil {
			item := &models.ModerationQueue{
				EntityID:  listing.EntityID,
				ListingID: listing.ID,
				Status:    models.MODERATION_STATUS_PENDING,
				Priority:  models.MODERATION_PRIORITY_NORMAL,
			}
			if err := repos.Moderation.Enqueue(item); err != nil {
				return respondError(c, err)
			}
		}
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// HandleDeleteListing soft-deletes a listing. Owner or admin only.
func HandleDeleteListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your listing")
	}
	if err := repos.Listing.SoftDelete(listing.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "listing deleted"})
}

type listingActionRequest struct {
	Action string `json:"action"`
}

// HandleListingAction applies an owner lifecycle action. Renew only works
// on an expired listing; the other transitions each check the state they
// leave from.
func HandleListingAction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req listingActionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your listing")
	}

	now := time.Now()
	switch req.Action {
	case "activate":
		if listing.Status != models.LISTING_STATUS_DRAFT {
			return respondError(c, apperrors.BusinessLogic("only a draft listing can be activated"))
		}
		listing.Publish(now)
	case "deactivate":
		if listing.Status != models.LISTING_STATUS_ACTIVE {
			return respondError(c, apperrors.BusinessLogic("only an active listing can be deactivated"))
		}
		listing.Status = models.LISTING_STATUS_DRAFT
	case "archive":
		switch listing.Status {
		case models.LISTING_STATUS_SOLD, models.LISTING_STATUS_ARCHIVED:
			return respondError(c, apperrors.BusinessLogic("listing is already closed"))
		}
		listing.Status = models.LISTING_STATUS_ARCHIVED
	case "mark_sold":
		if listing.Status != models.LISTING_STATUS_ACTIVE {
			return respondError(c, apperrors.BusinessLogic("only an active listing can be marked sold"))
		}
		listing.Status = models.LISTING_STATUS_SOLD
	case "renew":
		if listing.Status != models.LISTING_STATUS_EXPIRED {
			return respondError(c, apperrors.BusinessLogic("only an expired listing can be renewed"))
		}
		listing.Publish(now)
	default:
		return respondValidation(c, "action must be one of activate, deactivate, archive, mark_sold, renew")
	}

	if err := repos.Listing.Update(listing); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"listing": listing})
}

// HandleSearchListings is the public search over active listings.
func HandleSearchListings(c *fiber.Ctx) error {
	filter := buildSearchFilter(c)
	filter.Status = models.LISTING_STATUS_ACTIVE
	p := pagination.FromRequest(c)

	repos := repository.GetGlobalRepositories()
	listings, total, err := repos.Listing.Search(filter, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, listings, pagination.NewMeta(p, total))
}

// HandleMyListings lists the caller's own listings, any status.
func HandleMyListings(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)

	userID := userCtx.UserID
	filter := repository.ListingSearchFilter{
		UserID: &userID,
		Status: c.Query("status"),
		Sort:   c.Query("sort", "date_desc"),
	}

	repos := repository.GetGlobalRepositories()
	listings, total, err := repos.Listing.Search(filter, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, listings, pagination.NewMeta(p, total))
}

type favoriteRequest struct {
	Folder string `json:"folder"`
}

// HandleToggleFavorite adds or removes the listing from the caller's
// favorites and keeps the denormalized counter in step.
func HandleToggleFavorite(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req favoriteRequest
	_ = c.BodyParser(&req)

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}

	added, err := repos.Listing.ToggleFavorite(userCtx.UserID, listing.EntityID, req.Folder)
	if err != nil {
		return respondError(c, err)
	}
	delta := -1
	if added {
		delta = 1
	}
	if err := repos.Listing.SetFavoriteCountDelta(listing.ID, delta); err != nil {
		log.Warnf("favorite count update failed for listing %d: %v", listing.ID, err)
	}
	return c.JSON(fiber.Map{"is_favorite": added})
}

// HandleListFavorites returns the caller's favorites with the listings
// they point to. Listings that are gone or expired are skipped when
// exclude_expired is set.
func HandleListFavorites(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)
	excludeExpired := c.QueryBool("exclude_expired", false)

	repos := repository.GetGlobalRepositories()
	favorites, total, err := repos.Listing.GetFavorites(userCtx.UserID, c.Query("folder"), p)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]fiber.Map, 0, len(favorites))
	for _, fav := range favorites {
		listing, err := repos.Listing.GetByEntityID(fav.EntityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return respondError(c, err)
		}
		if excludeExpired && listing.Status == models.LISTING_STATUS_EXPIRED {
			continue
		}
		items = append(items, fiber.Map{"favorite": fav, "listing": listing})
	}
	return respondList(c, items, pagination.NewMeta(p, total))
}

type reportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// HandleReportListing files a complaint about a listing. One open report
// per reporter and listing; reporting your own listing is rejected.
func HandleReportListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID == userCtx.UserID {
		return respondError(c, apperrors.BusinessLogic("cannot report your own listing"))
	}

	if existing, err := repos.Moderation.GetOpenReport(userCtx.UserID, listing.EntityID); err == nil && existing != nil {
		return respondError(c, apperrors.Conflict("you already reported this listing"))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	switch req.Reason {
	case models.REPORT_REASON_SPAM, models.REPORT_REASON_FRAUD,
		models.REPORT_REASON_INAPPROPRIATE, models.REPORT_REASON_DUPLICATE,
		models.REPORT_REASON_OTHER:
	default:
		return respondValidation(c, "reason must be one of spam, fraud, inappropriate, duplicate, other")
	}

	report := &models.ReportedContent{
		EntityID:    listing.EntityID,
		ReporterID:  userCtx.UserID,
		Reason:      req.Reason,
		Description: req.Description,
		Status:      models.REPORT_STATUS_PENDING,
	}
	if err := repos.Moderation.CreateReport(report); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}

// buildSearchFilter reads the public search query parameters. Absent
// parameters leave their filter nil so the repository skips them.
func buildSearchFilter(c *fiber.Ctx) repository.ListingSearchFilter {
	filter := repository.ListingSearchFilter{
		Query:        c.Query("q"),
		Condition:    c.Query("condition"),
		BodyType:     c.Query("body_type"),
		EngineType:   c.Query("engine_type"),
		Transmission: c.Query("transmission"),
		DriveType:    c.Query("drive_type"),
		Color:        c.Query("color"),
		OnlyFeatured: c.QueryBool("featured", false),
		OnlyUrgent:   c.QueryBool("urgent", false),
		Sort:         c.Query("sort"),
	}
	filter.CityID = queryUint(c, "city_id")
	filter.RegionID = queryUint(c, "region_id")
	filter.BrandID = queryUint(c, "brand_id")
	filter.ModelID = queryUint(c, "model_id")
	filter.PriceMin = queryInt64(c, "price_min")
	filter.PriceMax = queryInt64(c, "price_max")
	filter.YearMin = queryInt(c, "year_min")
	filter.YearMax = queryInt(c, "year_max")
	filter.MileageMax = queryInt(c, "mileage_max")
	filter.Latitude = queryFloat(c, "lat")
	filter.Longitude = queryFloat(c, "lng")
	filter.RadiusKM = queryFloat(c, "radius_km")
	return filter
}

func queryUint(c *fiber.Ctx, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func queryInt(c *fiber.Ctx, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt64(c *fiber.Ctx, key string) *int64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
