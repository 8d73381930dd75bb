package controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/apperrors"
	"github.com/zhandosm/baraholka/internal/pkg/imageprocessor"
	"github.com/zhandosm/baraholka/internal/pkg/jobqueue"
	"github.com/zhandosm/baraholka/internal/pkg/upload"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// HandleUploadMedia accepts a listing photo. The content is sniffed
// before it touches disk, thumbnails are generated in the background and
// the original is queued for off-site backup. The first photo of a
// listing becomes primary.
func HandleUploadMedia(c *fiber.Ctx) error {
	listingID, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	listing, err := repos.Listing.GetByID(listingID)
	if err != nil {
		return respondError(c, err)
	}
	if listing.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your listing")
	}

	count, err := repos.Media.CountByEntity(listing.EntityID)
	if err != nil {
		return respondError(c, err)
	}
	if count >= upload.MaxPhotosPerListing {
		return respondError(c, apperrors.BusinessLogic(
			fmt.Sprintf("photo limit reached (%d)", upload.MaxPhotosPerListing)))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondBadRequest(c, "Missing file")
	}
	if fileHeader.Size > upload.MaxUploadSize {
		return respondError(c, apperrors.Validation("file exceeds the 10 MB limit"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	head := make([]byte, 512)
	n, _ := src.Read(head)
	src.Close()

	fileType, err := upload.ValidateImageBySniff(fileHeader.Filename, head[:n])
	if err != nil {
		return respondError(c, apperrors.Validation(err.Error()))
	}

	mediaUUID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	fileName := mediaUUID + ext
	originalPath := filepath.Join(imageprocessor.OriginalDir, fileName)

	if err := os.MkdirAll(imageprocessor.OriginalDir, 0o755); err != nil {
		return respondError(c, err)
	}
	if err := c.SaveFile(fileHeader, originalPath); err != nil {
		return respondError(c, err)
	}

	media := &models.MediaFile{
		UUID:      mediaUUID,
		EntityID:  listing.EntityID,
		UserID:    userCtx.UserID,
		FilePath:  originalPath,
		FileName:  fileName,
		FileSize:  fileHeader.Size,
		FileType:  fileType,
		IsPrimary: count == 0,
		SortOrder: int(count),
	}
	if err := repos.Media.Create(media); err != nil {
		if removeErr := os.Remove(originalPath); removeErr != nil {
			log.Warnf("orphan upload cleanup failed: %v", removeErr)
		}
		return respondError(c, err)
	}

	imageprocessor.GetProcessor().EnqueueMedia(media, originalPath)

	backupPayload := jobqueue.S3BackupJobPayload{
		MediaID:   media.ID,
		MediaUUID: media.UUID,
		FilePath:  originalPath,
		FileName:  media.FileName,
		FileSize:  media.FileSize,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeS3Backup, backupPayload.ToMap()); err != nil {
		log.Warnf("backup enqueue failed for media %d: %v", media.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"media": media})
}

// HandleListMedia lists a listing's photos in sort order.
func HandleListMedia(c *fiber.Ctx) error {
	listingID, err := paramID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(listingID)
	if err != nil {
		return respondError(c, err)
	}
	files, err := repos.Media.GetByEntity(listing.EntityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": files})
}

// HandleDeleteMedia soft-deletes a photo and removes its renditions from
// disk best effort.
func HandleDeleteMedia(c *fiber.Ctx) error {
	mediaID, err := paramID(c, "mediaId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	media, err := repos.Media.GetByID(mediaID)
	if err != nil {
		return respondError(c, err)
	}
	if media.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your photo")
	}

	if err := repos.Media.SoftDelete(media.ID); err != nil {
		return respondError(c, err)
	}

	for _, path := range []string{
		imageprocessor.OriginalPath(media),
		imageprocessor.OptimizedPath(media),
		imageprocessor.ThumbnailPath(media, "small"),
		imageprocessor.ThumbnailPath(media, "medium"),
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("rendition removal failed for media %d: %v", media.ID, err)
		}
	}
	return c.JSON(fiber.Map{"message": "photo deleted"})
}

// HandleSetPrimaryMedia marks one photo as the listing's cover.
func HandleSetPrimaryMedia(c *fiber.Ctx) error {
	mediaID, err := paramID(c, "mediaId")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}

	userCtx := usercontext.Get(c)
	repos := repository.GetGlobalRepositories()

	media, err := repos.Media.GetByID(mediaID)
	if err != nil {
		return respondError(c, err)
	}
	if media.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return respondForbidden(c, "Not your photo")
	}

	if err := repos.Media.SetPrimary(media.EntityID, media.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "primary photo updated"})
}
