package repository

import (
	"time"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
)

// EntityRepository manages the shared entity registry.
type EntityRepository interface {
	Create(kind models.EntityKind) (*models.Entity, error)
	GetByID(id uint) (*models.Entity, error)
}

// UserRepository defines user-related database operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(p pagination.Params) ([]models.User, int64, error)
	Search(query string, p pagination.Params) ([]models.User, int64, error)
	CountSince(since time.Time) (int64, error)

	GetProfile(userID uint) (*models.UserProfile, error)
	SaveProfile(profile *models.UserProfile) error
	GetSettings(userID uint) (*models.UserSettings, error)
	SaveSettings(settings *models.UserSettings) error

	RegisterDevice(device *models.DeviceRegistration) error
	GetActiveDevices(userID uint) ([]models.DeviceRegistration, error)
	DeactivateDevice(userID uint, pushToken string) error
}

// AuthRepository covers verifications, refresh sessions, token revocation
// and login throttling.
type AuthRepository interface {
	CreatePhoneVerification(v *models.PhoneVerification) error
	GetActivePhoneVerification(userID uint) (*models.PhoneVerification, error)
	UpdatePhoneVerification(v *models.PhoneVerification) error
	InvalidatePhoneVerifications(phone string) error

	CreateEmailVerification(v *models.EmailVerification) error
	GetEmailVerificationByToken(tokenStr string) (*models.EmailVerification, error)
	UpdateEmailVerification(v *models.EmailVerification) error

	CreateRefreshSession(s *models.RefreshSession) error
	GetRefreshSessionByHash(hash string) (*models.RefreshSession, error)
	RevokeRefreshSession(id uint) error
	RevokeUserSessions(userID uint) error

	RevokeToken(jti string, userID uint, expiresAt time.Time) error
	IsTokenRevoked(jti string) (bool, error)

	RecordLoginAttempt(identity, ip string) error
	CountRecentLoginAttempts(ip string, window time.Duration) (int64, error)
	CleanupExpired(before time.Time) (int64, error)
	CleanupLoginAttempts(before time.Time) (int64, error)
}

// CatalogRepository serves the read-mostly reference data.
type CatalogRepository interface {
	GetCountries() ([]models.Country, error)
	GetRegions(countryID uint) ([]models.Region, error)
	GetCities(regionID uint) ([]models.City, error)
	GetCityByID(id uint) (*models.City, error)
	GetCurrencies() ([]models.Currency, error)
	GetCurrencyByCode(code string) (*models.Currency, error)

	GetBrands() ([]models.CarBrand, error)
	GetModels(brandID uint) ([]models.CarModel, error)
	GetGenerations(modelID uint) ([]models.CarGeneration, error)
	GetBodyTypes() ([]models.BodyType, error)
	GetEngineTypes() ([]models.EngineType, error)
	GetTransmissions() ([]models.Transmission, error)
	GetDriveTypes() ([]models.DriveType, error)
	GetColors() ([]models.Color, error)
	GetFeatures() ([]models.CarFeature, error)
	GetFeaturesByIDs(ids []uint) ([]models.CarFeature, error)
}

// ListingSearchFilter is the composable search criteria. Nil fields are
// not applied.
type ListingSearchFilter struct {
	Query        string
	CityID       *uint
	RegionID     *uint
	Latitude     *float64
	Longitude    *float64
	RadiusKM     *float64
	PriceMin     *int64
	PriceMax     *int64
	YearMin      *int
	YearMax      *int
	MileageMax   *int
	Condition    string
	BrandID      *uint
	ModelID      *uint
	BodyType     string
	EngineType   string
	Transmission string
	DriveType    string
	Color        string
	OnlyFeatured bool
	OnlyUrgent   bool
	UserID       *uint
	Status       string
	Sort         string
}

// ListingRepository defines listing persistence and search.
type ListingRepository interface {
	Create(listing *models.Listing, details *models.ListingDetails) error
	GetByID(id uint) (*models.Listing, error)
	GetByEntityID(entityID uint) (*models.Listing, error)
	Update(listing *models.Listing) error
	UpdateDetails(details *models.ListingDetails) error
	SoftDelete(id uint) error
	Search(filter ListingSearchFilter, p pagination.Params) ([]models.Listing, int64, error)
	CountActiveByUser(userID uint) (int64, error)
	CountSince(since time.Time) (int64, error)
	IncrementViewCount(id uint) error
	SetFavoriteCountDelta(id uint, delta int) error
	ExpireOverdue(now time.Time) ([]models.Listing, error)

	ToggleFavorite(userID, entityID uint, folder string) (added bool, err error)
	GetFavorites(userID uint, folder string, p pagination.Params) ([]models.Favorite, int64, error)
	IsFavorite(userID, entityID uint) (bool, error)
}

// ModerationRepository covers the review queue and content reports.
type ModerationRepository interface {
	Enqueue(item *models.ModerationQueue) error
	GetQueueItem(id uint) (*models.ModerationQueue, error)
	GetPendingByListing(listingID uint) (*models.ModerationQueue, error)
	UpdateQueueItem(item *models.ModerationQueue) error
	ListQueue(status, priority string, p pagination.Params) ([]models.ModerationQueue, int64, error)
	CountQueue(status string) (int64, error)

	CreateReport(report *models.ReportedContent) error
	GetReport(id uint) (*models.ReportedContent, error)
	GetOpenReport(reporterID, entityID uint) (*models.ReportedContent, error)
	UpdateReport(report *models.ReportedContent) error
	ListReports(status, reason string, p pagination.Params) ([]models.ReportedContent, int64, error)
	CountReports(status string) (int64, error)
}

// ConversationRepository covers chats, participants and messages.
type ConversationRepository interface {
	Create(conv *models.Conversation, participants []models.ConversationParticipant) error
	GetByID(id uint) (*models.Conversation, error)
	FindUserChat(userA, userB uint, relatedEntityID *uint) (*models.Conversation, error)
	ListForUser(userID uint, p pagination.Params) ([]models.Conversation, int64, error)
	GetParticipant(conversationID, userID uint) (*models.ConversationParticipant, error)
	UpdateParticipant(part *models.ConversationParticipant) error

	CreateMessage(msg *models.Message) error
	GetMessages(conversationID uint, p pagination.Params) ([]models.Message, int64, error)
	SoftDeleteMessage(id uint) error
	CountUnread(conversationID, userID uint, lastRead *time.Time) (int64, error)
	TouchLastMessage(conversationID uint, at time.Time) error
}

// PaymentRepository is the money ledger plus promotions.
type PaymentRepository interface {
	CreateTransaction(tx *models.PaymentTransaction) error
	GetTransaction(id uint) (*models.PaymentTransaction, error)
	GetByExternalID(provider, externalID string) (*models.PaymentTransaction, error)
	UpdateTransaction(tx *models.PaymentTransaction) error
	ListTransactions(userID uint, txType string, p pagination.Params) ([]models.PaymentTransaction, int64, error)
	Balance(userID uint) (int64, error)
	UserStats(userID uint) (map[string]models.PaymentTypeStat, error)
	SumByTypeSince(txType string, since time.Time) (int64, error)

	GetPaymentMethods() ([]models.PaymentMethod, error)
	GetPromotionServices() ([]models.PromotionService, error)
	GetPromotionService(id uint) (*models.PromotionService, error)

	CreatePromotion(promo *models.EntityPromotion) error
	GetPromotion(id uint) (*models.EntityPromotion, error)
	GetPromotionByTransaction(transactionID uint) (*models.EntityPromotion, error)
	UpdatePromotion(promo *models.EntityPromotion) error
	ListPromotions(userID uint, p pagination.Params) ([]models.EntityPromotion, int64, error)
	ExpireOverduePromotions(now time.Time) ([]models.EntityPromotion, error)
}

// NotificationRepository covers channels, templates, settings and the
// notification feed.
type NotificationRepository interface {
	GetChannels() ([]models.NotificationChannel, error)
	GetTemplate(notifyType, channel, language string) (*models.NotificationTemplate, error)

	GetSetting(userID uint, notifyType, channel string) (*models.UserNotificationSetting, error)
	SaveSetting(setting *models.UserNotificationSetting) error
	ListSettings(userID uint) ([]models.UserNotificationSetting, error)

	Create(n *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	Update(n *models.Notification) error
	ListForUser(userID uint, unreadOnly bool, p pagination.Params) ([]models.Notification, int64, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(userID, id uint) error
	MarkAllRead(userID uint) error
}

// SupportRepository covers tickets and the FAQ.
type SupportRepository interface {
	CreateTicket(t *models.SupportTicket) error
	GetTicket(id uint) (*models.SupportTicket, error)
	UpdateTicket(t *models.SupportTicket) error
	ListTicketsForUser(userID uint, p pagination.Params) ([]models.SupportTicket, int64, error)
	ListTickets(status string, p pagination.Params) ([]models.SupportTicket, int64, error)
	CountTickets(status string) (int64, error)
	AvgResolutionHours() (float64, error)

	ListFAQ(category string) ([]models.SupportFAQ, error)
	GetFAQ(id uint) (*models.SupportFAQ, error)
	SearchFAQ(query string) ([]models.SupportFAQ, error)
	IncrementFAQView(id uint) error
}

// MediaRepository covers uploaded files.
type MediaRepository interface {
	Create(m *models.MediaFile) error
	GetByID(id uint) (*models.MediaFile, error)
	GetByUUID(uuid string) (*models.MediaFile, error)
	GetByEntity(entityID uint) ([]models.MediaFile, error)
	Update(m *models.MediaFile) error
	SoftDelete(id uint) error
	SetPrimary(entityID, mediaID uint) error
	CountByEntity(entityID uint) (int64, error)
}
