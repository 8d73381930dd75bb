package imageprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/database"
)

// Thumbnail sizes
const (
	SmallThumbnailSize  = 200
	MediumThumbnailSize = 500
)

// Directory paths
const (
	OriginalDir   = "uploads/original"
	ThumbnailsDir = "uploads/thumbnails"
	MaxWorkers    = 3
)

// MediaProcessor handles media processing with a worker pool
type MediaProcessor struct {
	jobs            chan *ProcessJob
	wg              sync.WaitGroup
	started         bool
	mutex           sync.Mutex
	activeProcesses int32
	memoryThrottle  chan struct{}
}

// ProcessJob represents a single media processing job
type ProcessJob struct {
	Media        *models.MediaFile
	OriginalPath string
}

// Global processor instance
var processor *MediaProcessor
var once sync.Once

// GetProcessor returns the singleton media processor instance
func GetProcessor() *MediaProcessor {
	once.Do(func() {
		processor = &MediaProcessor{
			jobs:           make(chan *ProcessJob, 100),
			memoryThrottle: make(chan struct{}, MaxWorkers),
		}
		processor.Start()
	})
	return processor
}

// Start initializes the worker pool
func (p *MediaProcessor) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return
	}

	p.started = true
	for i := 0; i < MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Info("[MediaProcessor] Started worker pool with ", MaxWorkers, " workers")
}

// Stop gracefully shuts down the worker pool
func (p *MediaProcessor) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return
	}

	close(p.jobs)
	p.wg.Wait()
	p.started = false
	log.Info("[MediaProcessor] Worker pool stopped")
}

// worker processes jobs from the queue
func (p *MediaProcessor) worker(id int) {
	defer p.wg.Done()
	log.Info(fmt.Sprintf("[MediaProcessor] Worker %d started", id))

	for job := range p.jobs {
		p.memoryThrottle <- struct{}{}
		atomic.AddInt32(&p.activeProcesses, 1)

		log.Info(fmt.Sprintf("[MediaProcessor] Worker %d processing media %s (Active: %d)",
			id, job.Media.UUID, atomic.LoadInt32(&p.activeProcesses)))

		err := processMedia(job.Media, job.OriginalPath)

		<-p.memoryThrottle
		atomic.AddInt32(&p.activeProcesses, -1)

		if err != nil {
			log.Error(fmt.Sprintf("[MediaProcessor] Worker %d failed to process media %s: %v", id, job.Media.UUID, err))
		} else {
			log.Info(fmt.Sprintf("[MediaProcessor] Worker %d completed processing media %s", id, job.Media.UUID))
		}

		// Give the GC room between heavy decodes
		time.Sleep(100 * time.Millisecond)
	}

	log.Info(fmt.Sprintf("[MediaProcessor] Worker %d stopped", id))
}

// EnqueueMedia adds a media file to the processing queue
func (p *MediaProcessor) EnqueueMedia(media *models.MediaFile, originalPath string) {
	if !p.started {
		p.Start()
	}

	p.jobs <- &ProcessJob{
		Media:        media,
		OriginalPath: originalPath,
	}
	log.Info(fmt.Sprintf("[MediaProcessor] Enqueued media %s for processing", media.UUID))
}

// ProcessMedia queues a media file for processing
func ProcessMedia(media *models.MediaFile, originalPath string) error {
	GetProcessor().EnqueueMedia(media, originalPath)
	return nil
}

// processMedia handles the actual processing: EXIF extraction, thumbnails
// and an optimized WebP rendition.
func processMedia(media *models.MediaFile, originalPath string) error {
	log.Info(fmt.Sprintf("[MediaProcessor] Processing media %s", media.UUID))

	if err := ExtractMetadata(media, originalPath); err != nil {
		log.Error(fmt.Sprintf("[MediaProcessor] Metadata extraction failed for %s: %v", media.UUID, err))
	}

	dirs := []string{
		filepath.Join(ThumbnailsDir, "small"),
		filepath.Join(ThumbnailsDir, "medium"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}

	img, err := imaging.Open(originalPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("error opening original image: %w", err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	log.Info(fmt.Sprintf("[MediaProcessor] Image dimensions: %dx%d", width, height))

	hasSmall := true
	hasMedium := true
	hasWebp := true

	smallThumb := imaging.Resize(img, SmallThumbnailSize, 0, imaging.Lanczos)
	if err := saveWebP(smallThumb, ThumbnailPath(media, "small")); err != nil {
		log.Error(fmt.Sprintf("Error saving small thumbnail: %v", err))
		hasSmall = false
	}
	smallThumb = nil

	mediumThumb := imaging.Resize(img, MediumThumbnailSize, 0, imaging.Lanczos)
	if err := saveWebP(mediumThumb, ThumbnailPath(media, "medium")); err != nil {
		log.Error(fmt.Sprintf("Error saving medium thumbnail: %v", err))
		hasMedium = false
	}
	mediumThumb = nil

	if err := saveWebP(img, OptimizedPath(media)); err != nil {
		log.Error(fmt.Sprintf("Error saving optimized WebP version: %v", err))
		hasWebp = false
	}

	img = nil
	runtime.GC()

	db := database.GetDB()
	updates := map[string]interface{}{
		"has_thumbnail_small":  hasSmall,
		"has_thumbnail_medium": hasMedium,
		"has_webp":             hasWebp,
		"width":                width,
		"height":               height,
	}
	if media.TakenAt != nil {
		updates["taken_at"] = media.TakenAt
	}
	if media.Latitude != nil {
		updates["latitude"] = media.Latitude
		updates["longitude"] = media.Longitude
	}
	if err := db.Model(media).Updates(updates).Error; err != nil {
		return fmt.Errorf("error updating media record: %w", err)
	}

	log.Info(fmt.Sprintf("[MediaProcessor] Media processing completed for %s", media.UUID))
	return nil
}

// saveWebP saves an image in WebP format
func saveWebP(img image.Image, outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}

	return nil
}

// ThumbnailPath returns where the given thumbnail rendition lives.
func ThumbnailPath(media *models.MediaFile, size string) string {
	return filepath.Join(ThumbnailsDir, size, media.UUID+".webp")
}

// OptimizedPath returns where the full-size WebP rendition lives.
func OptimizedPath(media *models.MediaFile) string {
	return filepath.Join(ThumbnailsDir, "webp", media.UUID+".webp")
}

// OriginalPath returns where the untouched upload lives.
func OriginalPath(media *models.MediaFile) string {
	return filepath.Join(OriginalDir, media.FileName)
}
