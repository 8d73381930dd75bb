package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Send Notification", JobTypeSendNotification, "send_notification"},
		{"Expire Listings", JobTypeExpireListings, "expire_listings"},
		{"Expire Promotions", JobTypeExpirePromotions, "expire_promotions"},
		{"Cleanup Verifications", JobTypeCleanupVerifications, "cleanup_verifications"},
		{"Cleanup Login Attempts", JobTypeCleanupLoginAttempts, "cleanup_login_attempts"},
		{"S3 Backup", JobTypeS3Backup, "s3_backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with no retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("delivery blew up")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "delivery blew up", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestSendNotificationJobPayloadRoundTrip(t *testing.T) {
	payload := SendNotificationJobPayload{
		UserID:   42,
		Type:     "new_message",
		Channels: []string{"push", "in_app"},
		Variables: map[string]string{
			"sender_name": "Aibek",
		},
		EntityID: 7,
	}

	restored, err := SendNotificationJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestS3BackupJobPayloadRoundTrip(t *testing.T) {
	payload := S3BackupJobPayload{
		MediaID:   11,
		MediaUUID: "9f3c2d1e-0000-0000-0000-000000000000",
		FilePath:  "/uploads/media/9f3c2d1e.jpg",
		FileName:  "9f3c2d1e.jpg",
		FileSize:  123456,
	}

	restored, err := S3BackupJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestMaintenanceJobPayloadRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	payload := MaintenanceJobPayload{Now: now, Before: now.Add(-24 * time.Hour)}

	restored, err := MaintenanceJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.True(t, now.Equal(restored.Now))
	assert.True(t, payload.Before.Equal(restored.Before))
}
