package jobqueue

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/s3backup"
)

// processS3BackupJob copies an uploaded media file to the configured S3
// bucket and marks the row as backed up.
func (q *Queue) processS3BackupJob(job *Job) error {
	payload, err := S3BackupJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid S3 backup payload: %w", err)
	}

	cfg, err := s3backup.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}
	if !cfg.IsEnabled() {
		log.Debugf("[JobQueue] S3 backup disabled, skipping media %d", payload.MediaID)
		return nil
	}

	client, err := s3backup.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	repos := repository.GetGlobalRepositories()
	media, err := repos.Media.GetByID(payload.MediaID)
	if err != nil {
		return fmt.Errorf("failed to load media %d: %w", payload.MediaID, err)
	}
	if media.BackedUp {
		return nil
	}

	now := time.Now()
	objectKey := cfg.GetObjectKey(media.UUID, filepath.Ext(payload.FileName), now.Year(), int(now.Month()))

	if _, err := client.UploadFile(payload.FilePath, objectKey); err != nil {
		return fmt.Errorf("failed to upload media %d: %w", payload.MediaID, err)
	}

	media.BackedUp = true
	if err := repos.Media.Update(media); err != nil {
		return fmt.Errorf("failed to mark media %d as backed up: %w", payload.MediaID, err)
	}
	return nil
}
