package jobqueue

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/mail"
	"github.com/zhandosm/baraholka/internal/pkg/push"
	"github.com/zhandosm/baraholka/internal/pkg/sms"
)

// processSendNotificationJob delivers one notification event to the user
// over every requested channel. Each channel gets its own notification
// row; delivery failures are recorded on the row, not retried through
// the job, so a partial failure never duplicates the channels that
// already went out.
func (q *Queue) processSendNotificationJob(job *Job) error {
	payload, err := SendNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}
	if user.IsBlocked {
		log.Infof("[JobQueue] Skipping notification for blocked user %d", user.ID)
		return nil
	}

	settings, err := repos.User.GetSettings(user.ID)
	if err != nil {
		return fmt.Errorf("failed to load settings for user %d: %w", user.ID, err)
	}

	channels := payload.Channels
	if len(channels) == 0 {
		channels = []string{models.CHANNEL_IN_APP, models.CHANNEL_PUSH}
	}

	for _, channel := range channels {
		if !channelAllowed(settings, channel) {
			continue
		}

		setting, err := repos.Notification.GetSetting(user.ID, payload.Type, channel)
		if err != nil {
			return fmt.Errorf("failed to load notification setting: %w", err)
		}
		if !setting.IsEnabled || setting.Frequency == models.FREQUENCY_OFF {
			continue
		}

		template, err := repos.Notification.GetTemplate(payload.Type, channel, settings.Language)
		if err != nil {
			log.Warnf("[JobQueue] No template for type=%s channel=%s, skipping", payload.Type, channel)
			continue
		}
		subject, body := template.Render(payload.Variables)

		notification := &models.Notification{
			UserID:  user.ID,
			Type:    payload.Type,
			Channel: channel,
			Subject: subject,
			Body:    body,
			Status:  models.NOTIFICATION_STATUS_PENDING,
		}
		if payload.EntityID != 0 {
			notification.Data = models.JSONMap{"entity_id": payload.EntityID}
		}
		if err := repos.Notification.Create(notification); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		deliverErr := q.deliver(repos, user, channel, subject, body, notification)
		notification.Attempts++
		if deliverErr != nil {
			log.Errorf("[JobQueue] Notification %d delivery failed over %s: %v", notification.ID, channel, deliverErr)
			notification.Status = models.NOTIFICATION_STATUS_FAILED
			notification.ErrorMsg = deliverErr.Error()
		} else {
			now := time.Now()
			notification.Status = models.NOTIFICATION_STATUS_SENT
			notification.SentAt = &now
		}
		if err := repos.Notification.Update(notification); err != nil {
			return fmt.Errorf("failed to update notification %d: %w", notification.ID, err)
		}
	}

	return nil
}

// channelAllowed applies the coarse per-channel switches from the user
// settings before the per-type preferences are consulted.
func channelAllowed(settings *models.UserSettings, channel string) bool {
	switch channel {
	case models.CHANNEL_PUSH:
		return settings.PushEnabled
	case models.CHANNEL_EMAIL:
		return settings.EmailEnabled
	case models.CHANNEL_SMS:
		return settings.SMSEnabled
	default:
		return true
	}
}

func (q *Queue) deliver(repos *repository.Repositories, user *models.User, channel, subject, body string, notification *models.Notification) error {
	switch channel {
	case models.CHANNEL_IN_APP:
		// Stored row is the delivery.
		return nil
	case models.CHANNEL_EMAIL:
		if user.Email == nil || *user.Email == "" {
			return fmt.Errorf("user %d has no email address", user.ID)
		}
		return mail.SendMail(*user.Email, subject, body)
	case models.CHANNEL_SMS:
		return sms.Send(user.Phone, body)
	case models.CHANNEL_PUSH:
		devices, err := repos.User.GetActiveDevices(user.ID)
		if err != nil {
			return fmt.Errorf("failed to load devices: %w", err)
		}
		if len(devices) == 0 {
			return fmt.Errorf("user %d has no registered devices", user.ID)
		}
		var lastErr error
		delivered := 0
		for _, device := range devices {
			data := map[string]interface{}{"type": notification.Type}
			if notification.Data != nil {
				for k, v := range notification.Data {
					data[k] = v
				}
			}
			if err := push.Send(device.PushToken, subject, body, data); err != nil {
				lastErr = err
				continue
			}
			delivered++
		}
		if delivered == 0 {
			return lastErr
		}
		return nil
	default:
		return fmt.Errorf("unknown channel: %s", channel)
	}
}
