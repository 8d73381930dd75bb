package controllers

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/jobqueue"
	"github.com/zhandosm/baraholka/internal/pkg/pagination"
	"github.com/zhandosm/baraholka/internal/pkg/payments"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

var (
	registryOnce    sync.Once
	paymentRegistry *payments.Registry
)

// getRegistry builds the provider registry on first use, after env setup.
func getRegistry() *payments.Registry {
	registryOnce.Do(func() {
		paymentRegistry = payments.NewRegistry()
	})
	return paymentRegistry
}

func HandleGetPaymentMethods(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	methods, err := repos.Payment.GetPaymentMethods()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": methods})
}

func HandleGetPromotionServices(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	services, err := repos.Payment.GetPromotionServices()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": services})
}

type promoteListingRequest struct {
	ListingID uint   `json:"listing_id"`
	ServiceID uint   `json:"service_id"`
	Provider  string `json:"provider"`
	ReturnURL string `json:"return_url"`
}

// HandlePromoteListing starts a promotion purchase. A pending transaction
// and a pending promotion are stored first; the provider redirect URL is
// returned and the webhook finishes the job. The provider call happens
// after the rows are committed so a crashed request leaves nothing that
// can activate on its own.
func HandlePromoteListing(c *fiber.Ctx) error {
	var req promoteListingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "Invalid request body")
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	provider, err := getRegistry().Get(req.Provider)
	if err != nil {
		return respondError(c, apperrors.Validation("unknown payment provider"))
	}

	listing, err := repos.Listing.GetByID(req.ListingID)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID != userCtx.UserID {
		return respondForbidden(c, "Not your listing")
	}
	if listing.Status != models.LISTING_STATUS_ACTIVE {
		return respondError(c, apperrors.BusinessLogic("only an active listing can be promoted"))
	}

	service, err := repos.Payment.GetPromotionService(req.ServiceID)
	if err != nil {
		return respondError(c, err)
	}
	if !service.IsActive {
		return respondError(c, apperrors.BusinessLogic("promotion service is not available"))
	}

	tx := &models.PaymentTransaction{
		UserID:       userCtx.UserID,
		Type:         models.TRANSACTION_TYPE_PAYMENT,
		Amount:       service.Price,
		CurrencyCode: "KZT",
		Status:       models.TRANSACTION_STATUS_PENDING,
		Provider:     provider.Name(),
		Description:  service.Name,
		Metadata: models.JSONMap{
			"listing_id": listing.ID,
			"service_id": service.ID,
		},
	}
	if err := repos.Payment.CreateTransaction(tx); err != nil {
		return respondError(c, err)
	}

	promo := &models.EntityPromotion{
		EntityID:      listing.EntityID,
		UserID:        userCtx.UserID,
		ServiceID:     service.ID,
		TransactionID: &tx.ID,
		Status:        models.PROMOTION_STATUS_PENDING,
	}
	if err := repos.Payment.CreatePromotion(promo); err != nil {
		return respondError(c, err)
	}

	resp, err := provider.CreatePayment(payments.CreateRequest{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Currency:      tx.CurrencyCode,
		Description:   tx.Description,
		ReturnURL:     req.ReturnURL,
	})
	if err != nil {
		tx.Status = models.TRANSACTION_STATUS_FAILED
		tx.ErrorMessage = err.Error()
		if updateErr := repos.Payment.UpdateTransaction(tx); updateErr != nil {
			log.Errorf("transaction %d failure mark failed: %v", tx.ID, updateErr)
		}
		return respondError(c, apperrors.Payment("payment could not be started"))
	}

	tx.ExternalTransactionID = resp.ExternalID
	if err := repos.Payment.UpdateTransaction(tx); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction": tx,
		"promotion":   promo,
		"payment_url": resp.PaymentURL,
	})
}

// HandlePaymentWebhook is the provider callback. Signature mismatch
// short-circuits before any state is touched, and an already-final
// transaction is acknowledged without transitioning twice.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	providerName := c.Params("provider")
	if !payments.IsValidProviderName(providerName) {
		return respondNotFound(c, "provider")
	}
	provider, err := getRegistry().Get(providerName)
	if err != nil {
		return respondNotFound(c, "provider")
	}

	values := map[string]string{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = string(value)
	})
	// some gateways deliver callbacks as query parameters
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		if _, ok := values[string(key)]; !ok {
			values[string(key)] = string(value)
		}
	})

	if err := provider.VerifyWebhook(values); err != nil {
		log.Warnf("webhook signature mismatch from %s", providerName)
		return respondBadRequest(c, "Invalid signature")
	}
	event, err := provider.ParseWebhook(values)
	if err != nil {
		return respondBadRequest(c, "Invalid webhook payload")
	}

	repos := repository.GetGlobalRepositories()
	tx, err := repos.Payment.GetByExternalID(providerName, event.ExternalTransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) && event.TransactionID != 0 {
			tx, err = repos.Payment.GetTransaction(event.TransactionID)
		}
		if err != nil {
			return respondError(c, err)
		}
	}

	if tx.IsFinal() {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	now := time.Now()
	if event.Success {
		tx.Status = models.TRANSACTION_STATUS_SUCCESS
		tx.CompletedAt = &now
		if tx.ExternalTransactionID == "" {
			tx.ExternalTransactionID = event.ExternalTransactionID
		}
	} else {
		tx.Status = models.TRANSACTION_STATUS_FAILED
		tx.ErrorMessage = "payment declined by provider"
	}
	if err := repos.Payment.UpdateTransaction(tx); err != nil {
		return respondError(c, err)
	}

	if event.Success {
		activatePromotionForTransaction(repos, tx, now)
		notifyPayment(tx, models.NOTIFY_TYPE_PAYMENT_SUCCESS)
	} else {
		notifyPayment(tx, models.NOTIFY_TYPE_PAYMENT_FAILED)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// activatePromotionForTransaction starts the promotion attached to a paid
// transaction and applies the service flags to the listing.
func activatePromotionForTransaction(repos *repository.Repositories, tx *models.PaymentTransaction, now time.Time) {
	promo, err := repos.Payment.GetPromotionByTransaction(tx.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("promotion lookup failed for transaction %d: %v", tx.ID, err)
		}
		return
	}
	if promo.Status != models.PROMOTION_STATUS_PENDING {
		return
	}

	service := promo.Service
	if service == nil {
		service, err = repos.Payment.GetPromotionService(promo.ServiceID)
		if err != nil {
			log.Errorf("promotion service lookup failed for promotion %d: %v", promo.ID, err)
			return
		}
	}

	promo.Activate(now, service.DurationDays)
	if err := repos.Payment.UpdatePromotion(promo); err != nil {
		log.Errorf("promotion %d activation failed: %v", promo.ID, err)
		return
	}

	if service.MakesFeature || service.MakesUrgent {
		listing, err := repos.Listing.GetByEntityID(promo.EntityID)
		if err != nil {
			log.Errorf("listing lookup failed for promotion %d: %v", promo.ID, err)
			return
		}
		if service.MakesFeature {
			listing.IsFeatured = true
		}
		if service.MakesUrgent {
			listing.IsUrgent = true
		}
		if err := repos.Listing.Update(listing); err != nil {
			log.Errorf("listing flag update failed for promotion %d: %v", promo.ID, err)
		}
	}

	payload := jobqueue.SendNotificationJobPayload{
		UserID:   promo.UserID,
		Type:     models.NOTIFY_TYPE_PROMOTION_STARTED,
		Channels: []string{models.CHANNEL_IN_APP},
		Variables: map[string]string{
			"service_name": service.Name,
		},
		EntityID: promo.EntityID,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendNotification, payload.ToMap()); err != nil {
		log.Warnf("promotion notification enqueue failed: %v", err)
	}
}

func notifyPayment(tx *models.PaymentTransaction, notifyType string) {
	payload := jobqueue.SendNotificationJobPayload{
		UserID: tx.UserID,
		Type:   notifyType,
		Variables: map[string]string{
			"amount":   strconv.FormatInt(tx.Amount, 10),
			"currency": tx.CurrencyCode,
		},
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSendNotification, payload.ToMap()); err != nil {
		log.Warnf("payment notification enqueue failed: %v", err)
	}
}

// HandleListTransactions lists the caller's ledger rows.
func HandleListTransactions(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)

	repos := repository.GetGlobalRepositories()
	transactions, total, err := repos.Payment.ListTransactions(userCtx.UserID, c.Query("type"), p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, transactions, pagination.NewMeta(p, total))
}

// HandleGetBalance returns the caller's ledger balance.
func HandleGetBalance(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	balance, err := repos.Payment.Balance(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := repos.Payment.UserStats(userCtx.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"balance": balance, "currency_code": "KZT", "stats": stats})
}

// HandleListPromotions lists the caller's promotions.
func HandleListPromotions(c *fiber.Ctx) error {
	userCtx := usercontext.Get(c)
	p := pagination.FromRequest(c)

	repos := repository.GetGlobalRepositories()
	promotions, total, err := repos.Payment.ListPromotions(userCtx.UserID, p)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, promotions, pagination.NewMeta(p, total))
}

// HandleRefund refunds a successful payment within the refund window. The
// refund is a new ledger row pointing back at the original; the attached
// promotion is cancelled and the listing flags it granted are cleared.
func HandleRefund(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	original, err := repos.Payment.GetTransaction(id)
	if err != nil {
		return respondError(c, err)
	}
	if original.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your transaction")
	}
	if original.Type != models.TRANSACTION_TYPE_PAYMENT || original.Status != models.TRANSACTION_STATUS_SUCCESS {
		return respondError(c, apperrors.BusinessLogic("only a successful payment can be refunded"))
	}
	if refunded, _ := original.Metadata["refunded"].(bool); refunded {
		return respondError(c, apperrors.Conflict("transaction already refunded"))
	}
	if original.CompletedAt == nil || time.Since(*original.CompletedAt) > models.RefundWindowDays*24*time.Hour {
		return respondError(c, apperrors.BusinessLogic("refund window has passed"))
	}

	now := time.Now()
	refund := &models.PaymentTransaction{
		UserID:       original.UserID,
		Type:         models.TRANSACTION_TYPE_REFUND,
		Amount:       original.Amount,
		CurrencyCode: original.CurrencyCode,
		Status:       models.TRANSACTION_STATUS_SUCCESS,
		Provider:     original.Provider,
		Description:  "refund of " + original.Description,
		RefundOfID:   &original.ID,
		CompletedAt:  &now,
	}
	if err := repos.Payment.CreateTransaction(refund); err != nil {
		return respondError(c, err)
	}

	if original.Metadata == nil {
		original.Metadata = models.JSONMap{}
	}
	original.Metadata["refunded"] = true
	if err := repos.Payment.UpdateTransaction(original); err != nil {
		return respondError(c, err)
	}

	if promo, err := repos.Payment.GetPromotionByTransaction(original.ID); err == nil {
		cancelPromotion(repos, promo)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": refund})
}

// cancelPromotion stops a promotion and clears the listing flags its
// service granted.
func cancelPromotion(repos *repository.Repositories, promo *models.EntityPromotion) {
	if promo.Status != models.PROMOTION_STATUS_ACTIVE && promo.Status != models.PROMOTION_STATUS_PENDING {
		return
	}
	promo.Status = models.PROMOTION_STATUS_CANCELLED
	if err := repos.Payment.UpdatePromotion(promo); err != nil {
		log.Errorf("promotion %d cancel failed: %v", promo.ID, err)
		return
	}

	service := promo.Service
	if service == nil {
		var err error
		service, err = repos.Payment.GetPromotionService(promo.ServiceID)
		if err != nil {
			return
		}
	}
	if !service.MakesFeature && !service.MakesUrgent {
		return
	}
	listing, err := repos.Listing.GetByEntityID(promo.EntityID)
	if err != nil {
		return
	}
	if service.MakesFeature {
		listing.IsFeatured = false
	}
	if service.MakesUrgent {
		listing.IsUrgent = false
	}
	if err := repos.Listing.Update(listing); err != nil {
		log.Errorf("listing flag clear failed for promotion %d: %v", promo.ID, err)
	}
}
