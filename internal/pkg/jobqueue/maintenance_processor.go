package jobqueue

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
)

// processExpireListingsJob flips active listings past their window and
// notifies the owners.
func (q *Queue) processExpireListingsJob(job *Job) error {
	payload, err := MaintenanceJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid maintenance payload: %w", err)
	}
	now := payload.Now
	if now.IsZero() {
		now = time.Now()
	}

	repos := repository.GetGlobalRepositories()
	expired, err := repos.Listing.ExpireOverdue(now)
	if err != nil {
		return fmt.Errorf("failed to expire listings: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}
	log.Infof("[JobQueue] Expired %d listings", len(expired))

	for _, listing := range expired {
		notifyPayload := SendNotificationJobPayload{
			UserID:   listing.UserID,
			Type:     models.NOTIFY_TYPE_LISTING_EXPIRED,
			Channels: []string{models.CHANNEL_IN_APP, models.CHANNEL_PUSH},
			Variables: map[string]string{
				"listing_title": listing.Title,
				"listing_id":    strconv.FormatUint(uint64(listing.ID), 10),
			},
			EntityID: listing.EntityID,
		}
		if _, err := q.EnqueueJob(JobTypeSendNotification, notifyPayload.ToMap()); err != nil {
			log.Errorf("[JobQueue] Failed to enqueue expiry notification for listing %d: %v", listing.ID, err)
		}
	}
	return nil
}

// processExpirePromotionsJob ends overdue promotions, clears the listing
// flags they granted and notifies the buyers.
func (q *Queue) processExpirePromotionsJob(job *Job) error {
	payload, err := MaintenanceJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid maintenance payload: %w", err)
	}
	now := payload.Now
	if now.IsZero() {
		now = time.Now()
	}

	repos := repository.GetGlobalRepositories()
	expired, err := repos.Payment.ExpireOverduePromotions(now)
	if err != nil {
		return fmt.Errorf("failed to expire promotions: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}
	log.Infof("[JobQueue] Expired %d promotions", len(expired))

	for _, promo := range expired {
		if promo.Service != nil && (promo.Service.MakesFeature || promo.Service.MakesUrgent) {
			if err := q.clearPromotionFlags(repos, &promo); err != nil {
				log.Errorf("[JobQueue] Failed to clear flags for promotion %d: %v", promo.ID, err)
			}
		}

		notifyPayload := SendNotificationJobPayload{
			UserID:   promo.UserID,
			Type:     models.NOTIFY_TYPE_PROMOTION_EXPIRED,
			Channels: []string{models.CHANNEL_IN_APP},
			Variables: map[string]string{
				"promotion_id": strconv.FormatUint(uint64(promo.ID), 10),
			},
			EntityID: promo.EntityID,
		}
		if _, err := q.EnqueueJob(JobTypeSendNotification, notifyPayload.ToMap()); err != nil {
			log.Errorf("[JobQueue] Failed to enqueue promotion expiry notification %d: %v", promo.ID, err)
		}
	}
	return nil
}

func (q *Queue) clearPromotionFlags(repos *repository.Repositories, promo *models.EntityPromotion) error {
	listing, err := repos.Listing.GetByEntityID(promo.EntityID)
	if err != nil {
		return err
	}
	if promo.Service.MakesFeature {
		listing.IsFeatured = false
	}
	if promo.Service.MakesUrgent {
		listing.IsUrgent = false
	}
	return repos.Listing.Update(listing)
}

// processCleanupVerificationsJob purges expired verification codes,
// tokens and sessions.
func (q *Queue) processCleanupVerificationsJob(job *Job) error {
	payload, err := MaintenanceJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid maintenance payload: %w", err)
	}
	before := payload.Before
	if before.IsZero() {
		before = time.Now()
	}

	repos := repository.GetGlobalRepositories()
	purged, err := repos.Auth.CleanupExpired(before)
	if err != nil {
		return fmt.Errorf("failed to cleanup verifications: %w", err)
	}
	if purged > 0 {
		log.Infof("[JobQueue] Purged %d expired verification rows", purged)
	}
	return nil
}

// processCleanupLoginAttemptsJob drops login attempt rows older than the
// throttling window.
func (q *Queue) processCleanupLoginAttemptsJob(job *Job) error {
	payload, err := MaintenanceJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid maintenance payload: %w", err)
	}
	before := payload.Before
	if before.IsZero() {
		before = time.Now().Add(-24 * time.Hour)
	}

	repos := repository.GetGlobalRepositories()
	purged, err := repos.Auth.CleanupLoginAttempts(before)
	if err != nil {
		return fmt.Errorf("failed to cleanup login attempts: %w", err)
	}
	if purged > 0 {
		log.Infof("[JobQueue] Purged %d stale login attempts", purged)
	}
	return nil
}
