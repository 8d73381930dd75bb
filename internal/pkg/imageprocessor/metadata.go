package imageprocessor

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/zhandosm/baraholka/app/models"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// ExtractMetadata pulls the capture date and GPS position from EXIF data.
// Files without EXIF data are not an error.
func ExtractMetadata(media *models.MediaFile, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening media file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		log.Info(fmt.Sprintf("No EXIF data found for media %s: %v", media.UUID, err))
		return nil
	}

	if dt, err := x.DateTime(); err == nil {
		media.TakenAt = &dt
	}

	if lat, long, err := x.LatLong(); err == nil {
		media.Latitude = &lat
		media.Longitude = &long
	}

	return nil
}
