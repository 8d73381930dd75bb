package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances.
type Repositories struct {
	Entity       EntityRepository
	User         UserRepository
	Auth         AuthRepository
	Catalog      CatalogRepository
	Listing      ListingRepository
	Moderation   ModerationRepository
	Conversation ConversationRepository
	Payment      PaymentRepository
	Notification NotificationRepository
	Support      SupportRepository
	Media        MediaRepository
}

// NewRepositories creates all repository instances sharing one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Entity:       NewEntityRepository(db),
		User:         NewUserRepository(db),
		Auth:         NewAuthRepository(db),
		Catalog:      NewCatalogRepository(db),
		Listing:      NewListingRepository(db),
		Moderation:   NewModerationRepository(db),
		Conversation: NewConversationRepository(db),
		Payment:      NewPaymentRepository(db),
		Notification: NewNotificationRepository(db),
		Support:      NewSupportRepository(db),
		Media:        NewMediaRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

func (f *Factory) GetEntityRepository() EntityRepository { return f.GetRepositories().Entity }
func (f *Factory) GetUserRepository() UserRepository     { return f.GetRepositories().User }
func (f *Factory) GetAuthRepository() AuthRepository     { return f.GetRepositories().Auth }
func (f *Factory) GetCatalogRepository() CatalogRepository {
	return f.GetRepositories().Catalog
}
func (f *Factory) GetListingRepository() ListingRepository {
	return f.GetRepositories().Listing
}
func (f *Factory) GetModerationRepository() ModerationRepository {
	return f.GetRepositories().Moderation
}
func (f *Factory) GetConversationRepository() ConversationRepository {
	return f.GetRepositories().Conversation
}
func (f *Factory) GetPaymentRepository() PaymentRepository {
	return f.GetRepositories().Payment
}
func (f *Factory) GetNotificationRepository() NotificationRepository {
	return f.GetRepositories().Notification
}
func (f *Factory) GetSupportRepository() SupportRepository {
	return f.GetRepositories().Support
}
func (f *Factory) GetMediaRepository() MediaRepository { return f.GetRepositories().Media }

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
