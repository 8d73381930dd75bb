package imageprocessor

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhandosm/baraholka/app/models"
)

func TestExtractMetadataWithoutExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")

	img := imaging.New(10, 10, color.NRGBA{R: 255})
	require.NoError(t, imaging.Save(img, path))

	media := &models.MediaFile{UUID: "test-uuid"}
	err := ExtractMetadata(media, path)
	require.NoError(t, err)
	assert.Nil(t, media.TakenAt)
	assert.Nil(t, media.Latitude)
}

func TestExtractMetadataMissingFile(t *testing.T) {
	media := &models.MediaFile{UUID: "test-uuid"}
	err := ExtractMetadata(media, "/nonexistent/file.jpg")
	assert.Error(t, err)
}

func TestRenditionPaths(t *testing.T) {
	media := &models.MediaFile{UUID: "abc-123", FileName: "abc-123.jpg"}

	assert.Equal(t, filepath.Join("uploads", "thumbnails", "small", "abc-123.webp"), ThumbnailPath(media, "small"))
	assert.Equal(t, filepath.Join("uploads", "thumbnails", "medium", "abc-123.webp"), ThumbnailPath(media, "medium"))
	assert.Equal(t, filepath.Join("uploads", "thumbnails", "webp", "abc-123.webp"), OptimizedPath(media))
	assert.Equal(t, filepath.Join("uploads", "original", "abc-123.jpg"), OriginalPath(media))
}
