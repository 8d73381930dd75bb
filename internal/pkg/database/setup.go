package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

func SetupDatabase() {
	var err error
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{TranslateError: true})
		if err == nil {
			DB.AutoMigrate(
				&models.Entity{},
				&models.User{},
				&models.UserProfile{},
				&models.UserSettings{},
				&models.DeviceRegistration{},
				&models.PhoneVerification{},
				&models.EmailVerification{},
				&models.LoginAttempt{},
				&models.RefreshSession{},
				&models.RevokedToken{},
				&models.Country{},
				&models.Region{},
				&models.City{},
				&models.Currency{},
				&models.CarBrand{},
				&models.CarModel{},
				&models.CarGeneration{},
				&models.BodyType{},
				&models.EngineType{},
				&models.Transmission{},
				&models.DriveType{},
				&models.Color{},
				&models.CarFeature{},
				&models.Listing{},
				&models.ListingDetails{},
				&models.Favorite{},
				&models.ModerationQueue{},
				&models.ReportedContent{},
				&models.Conversation{},
				&models.ConversationParticipant{},
				&models.Message{},
				&models.MessageAttachment{},
				&models.PaymentTransaction{},
				&models.PaymentMethod{},
				&models.PromotionService{},
				&models.EntityPromotion{},
				&models.NotificationChannel{},
				&models.NotificationTemplate{},
				&models.UserNotificationSetting{},
				&models.Notification{},
				&models.SupportTicket{},
				&models.SupportFAQ{},
				&models.MediaFile{},
			)

			seedDefaults()
			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the global database handle.
func GetDB() *gorm.DB {
	return DB
}

// Ping reports whether the underlying connection is alive.
func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// seedDefaults inserts the notification channels and base currency rows
// the application expects to exist. Safe to run on every boot.
func seedDefaults() {
	channels := []string{
		models.CHANNEL_PUSH,
		models.CHANNEL_EMAIL,
		models.CHANNEL_SMS,
		models.CHANNEL_IN_APP,
	}
	for _, name := range channels {
		DB.Where(models.NotificationChannel{Name: name}).
			FirstOrCreate(&models.NotificationChannel{Name: name, IsActive: true})
	}

	currencies := []models.Currency{
		{Code: "KZT", Symbol: "₸", RateToKZT: 1},
		{Code: "USD", Symbol: "$", RateToKZT: 540},
		{Code: "EUR", Symbol: "€", RateToKZT: 590},
		{Code: "RUB", Symbol: "₽", RateToKZT: 6.2},
	}
	for _, c := range currencies {
		DB.Where(models.Currency{Code: c.Code}).FirstOrCreate(&c)
	}
}
