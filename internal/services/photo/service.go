// Package photo runs AI defect detection over inspection photos and keeps the
// derived findings, recommendations and annotation images in sync with them.
package photo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/symmetrixs/edaago/internal/detection"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/storage"
	"github.com/symmetrixs/edaago/internal/store"
)

var (
	// ErrRunInProgress is returned when a run for the same inspection and category is active
	ErrRunInProgress = errors.New("detection already running for this inspection and category")
	// ErrInvalidImage is returned for missing or undecodable image data
	ErrInvalidImage = errors.New("invalid image data")
	// ErrNoPhotos is returned when a canvas is saved without a photo group
	ErrNoPhotos = errors.New("no photos given")
)

const timestampLayout = "20060102_150405"

// Service orchestrates detection runs
type Service struct {
	store    store.Store
	detector detection.Detector
	blobs    storage.Blob
	now      func() time.Time

	mu      sync.Mutex
	running map[runKey]struct{}
}

type runKey struct {
	inspectionID uint
	category     string
}

// NewService creates a detection orchestrator
func NewService(s store.Store, d detection.Detector, b storage.Blob) *Service {
	return &Service{
		store:    s,
		detector: d,
		blobs:    b,
		now:      time.Now,
		running:  make(map[runKey]struct{}),
	}
}

// WithClock overrides the time source used for timestamps and blob names
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Result is the per-photo report of a detection pass
type Result struct {
	PhotoID              uint     `json:"photo_id"`
	Finding              string   `json:"finding"`
	Recommendation       string   `json:"recommendation"`
	DetectionCount       int      `json:"detection_count"`
	Confidence           *float64 `json:"confidence"`
	AnnotatedPhotoURL    *string  `json:"annotated_photo_url"`
	AnnotatedImageBase64 string   `json:"annotated_image_base64,omitempty"`
	Placeholder          bool     `json:"placeholder"`
	Saved                bool     `json:"saved"`
	Error                string   `json:"error,omitempty"`
}

// RunResult summarises a batch run. Results holds one entry per photo.
type RunResult struct {
	Processed int      `json:"processed"`
	Results   []Result `json:"results"`
}

func (s *Service) acquire(inspectionID uint, category string) (func(), error) {
	key := runKey{inspectionID, category}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[key]; busy {
		return nil, ErrRunInProgress
	}
	s.running[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.running, key)
		s.mu.Unlock()
	}, nil
}

// Run detects defects on every photo of the inspection in the category and
// records the outcome on each photo. Per-photo failures are logged and reported
// in the result; they do not fail the run.
func (s *Service) Run(ctx context.Context, inspectionID uint, category string) (*RunResult, error) {
	release, err := s.acquire(inspectionID, category)
	if err != nil {
		return nil, err
	}
	defer release()

	photos, err := s.store.ListPhotos(ctx, inspectionID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	if len(photos) == 0 {
		return &RunResult{Results: []Result{}}, nil
	}

	refs := make([]detection.PhotoRef, len(photos))
	for i, p := range photos {
		refs[i] = detection.PhotoRef{ID: p.PhotoID, URL: p.PhotoURL}
	}

	log.Printf("📸 Detecting %d photos for inspection %d (%s)", len(photos), inspectionID, category)
	outcomes := s.detector.DetectBatch(ctx, refs, category)

	byPhoto := make(map[uint]detection.Outcome, len(outcomes))
	for _, o := range outcomes {
		byPhoto[o.PhotoID] = o
	}

	run := &RunResult{Results: make([]Result, 0, len(photos))}
	for i := range photos {
		o, ok := byPhoto[photos[i].PhotoID]
		if !ok {
			o = detection.Placeholder(photos[i].PhotoID)
		}
		res := s.record(ctx, &photos[i], o, false)
		if res.Saved {
			run.Processed++
		}
		run.Results = append(run.Results, res)
	}

	log.Printf("✅ Detection complete: %d/%d photos saved", run.Processed, len(photos))
	return run, nil
}

// Redetect runs detection on one photo again, updating its existing Finding and
// Recommendation rows in place
func (s *Service) Redetect(ctx context.Context, photoID uint) (*Result, error) {
	p, err := s.store.GetPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	o := s.detector.Detect(ctx, detection.PhotoRef{ID: p.PhotoID, URL: p.PhotoURL})
	res := s.record(ctx, p, o, true)
	if !res.Saved {
		return nil, fmt.Errorf("failed to save detection for photo %d: %s", photoID, res.Error)
	}
	res.AnnotatedImageBase64 = o.AnnotatedImageBase64
	return &res, nil
}

// record persists one outcome: annotated image first, then Finding, Recommendation
// and the photo update in a single transaction
func (s *Service) record(ctx context.Context, p *models.PhotoReport, o detection.Outcome, reuse bool) Result {
	now := s.now()
	res := Result{
		PhotoID:        p.PhotoID,
		Finding:        o.Finding,
		Recommendation: o.Recommendation,
		DetectionCount: o.DetectionCount,
		Placeholder:    o.Placeholder,
	}
	if c, ok := o.MaxConfidence(); ok {
		res.Confidence = &c
	}

	var annotatedKey string
	img, err := o.AnnotatedImage()
	if err != nil {
		log.Printf("⚠️ Photo %d: annotated image unusable: %v", p.PhotoID, err)
	}
	if len(img) > 0 {
		key := fmt.Sprintf("annotated/annotated_%d_%d_%s.jpg", p.InspectionID, p.PhotoID, now.Format(timestampLayout))
		if err := s.blobs.Upload(ctx, storage.BucketPhotos, key, img, storage.ContentTypeJPEG); err != nil {
			log.Printf("⚠️ Photo %d: annotated image upload failed: %v", p.PhotoID, err)
		} else {
			url := s.blobs.PublicURL(storage.BucketPhotos, key)
			res.AnnotatedPhotoURL = &url
			annotatedKey = key
		}
	}

	detections, err := json.Marshal(o.Detections)
	if err != nil {
		detections = []byte("[]")
	}

	// A placeholder on redetect means the detector was unreachable; the last
	// real annotation stays.
	keepAnnotation := reuse && o.Placeholder
	var previousAnnotated *string
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.GetPhoto(ctx, p.PhotoID)
		if err != nil {
			return err
		}
		previousAnnotated = current.AnnotatedPhotoURL

		findingID, err := saveFinding(ctx, tx, current.FindingID, o.Finding, reuse)
		if err != nil {
			return fmt.Errorf("finding: %w", err)
		}
		recommendID, err := saveRecommendation(ctx, tx, current.RecommendID, o.Recommendation, reuse)
		if err != nil {
			return fmt.Errorf("recommendation: %w", err)
		}

		current.FindingID = &findingID
		current.RecommendID = &recommendID
		current.AIDetectionDate = &now
		if keepAnnotation {
			res.AnnotatedPhotoURL = current.AnnotatedPhotoURL
			res.Confidence = current.DetectionConfidence
		} else {
			current.DetectionConfidence = res.Confidence
			current.AnnotatedPhotoURL = res.AnnotatedPhotoURL
			current.Detections = datatypes.JSON(detections)
		}
		return tx.SavePhoto(ctx, current)
	})
	if err != nil {
		log.Printf("❌ Photo %d: saving detection failed: %v", p.PhotoID, err)
		if annotatedKey != "" {
			if rerr := s.blobs.Remove(ctx, storage.BucketPhotos, annotatedKey); rerr != nil {
				log.Printf("⚠️ Photo %d: orphaned annotated image %s: %v", p.PhotoID, annotatedKey, rerr)
			}
		}
		res.AnnotatedPhotoURL = nil
		res.Error = err.Error()
		return res
	}

	if !keepAnnotation && previousAnnotated != nil && (res.AnnotatedPhotoURL == nil || *previousAnnotated != *res.AnnotatedPhotoURL) {
		s.removeBlob(ctx, "annotated", *previousAnnotated)
	}

	res.Saved = true
	return res
}

func saveFinding(ctx context.Context, tx store.Store, existing *uint, description string, reuse bool) (uint, error) {
	if reuse && existing != nil {
		err := tx.UpdateFinding(ctx, *existing, description)
		if err == nil {
			return *existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
	}
	f := &models.Finding{Description: description}
	if err := tx.CreateFinding(ctx, f); err != nil {
		return 0, err
	}
	return f.FindingID, nil
}

func saveRecommendation(ctx context.Context, tx store.Store, existing *uint, description string, reuse bool) (uint, error) {
	if reuse && existing != nil {
		err := tx.UpdateRecommendation(ctx, *existing, description)
		if err == nil {
			return *existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
	}
	r := &models.Recommendation{Description: description}
	if err := tx.CreateRecommendation(ctx, r); err != nil {
		return 0, err
	}
	return r.RecommendID, nil
}

// removeBlob deletes folder/<last segment of url> from the photos bucket, logging failures
func (s *Service) removeBlob(ctx context.Context, folder, url string) {
	name := storage.LastSegment(url)
	if name == "" {
		return
	}
	key := path.Join(folder, name)
	if err := s.blobs.Remove(ctx, storage.BucketPhotos, key); err != nil {
		log.Printf("⚠️ Could not delete %s: %v", key, err)
		return
	}
	log.Printf("✅ Deleted %s", key)
}

// Clear removes the AI-derived data of a photo: its fields are reset first,
// then the Finding, Recommendation and annotated image are deleted best-effort.
// Clearing a photo without AI data succeeds.
func (s *Service) Clear(ctx context.Context, photoID uint) error {
	p, err := s.store.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if err := s.store.ClearPhotoAI(ctx, photoID); err != nil {
		return fmt.Errorf("failed to clear photo %d: %w", photoID, err)
	}

	if p.FindingID != nil {
		if err := s.store.DeleteFinding(ctx, *p.FindingID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("⚠️ Could not delete Finding %d: %v", *p.FindingID, err)
		}
	}
	if p.RecommendID != nil {
		if err := s.store.DeleteRecommendation(ctx, *p.RecommendID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("⚠️ Could not delete Recommendation %d: %v", *p.RecommendID, err)
		}
	}
	if p.AnnotatedPhotoURL != nil {
		s.removeBlob(ctx, "annotated", *p.AnnotatedPhotoURL)
	}

	log.Printf("✅ Cleared AI data for photo %d", photoID)
	return nil
}

// CanvasResult reports a saved canvas annotation
type CanvasResult struct {
	CanvasURL     string `json:"canvas_url"`
	UpdatedPhotos int    `json:"updated_photos"`
	PhotoIDs      []uint `json:"photo_ids"`
}

// SaveCanvas stores a hand-drawn annotation once and links it to every photo of the group.
// Photos that cannot be updated are skipped.
func (s *Service) SaveCanvas(ctx context.Context, inspectionID uint, photoIDs []uint, imageBase64 string) (*CanvasResult, error) {
	if len(photoIDs) == 0 {
		return nil, ErrNoPhotos
	}
	img, err := detection.DecodeImage(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(img) == 0 {
		return nil, ErrInvalidImage
	}

	key := fmt.Sprintf("canvas/canvas_%d_%s.png", inspectionID, s.now().Format(timestampLayout))
	if err := s.blobs.Upload(ctx, storage.BucketPhotos, key, img, storage.ContentTypePNG); err != nil {
		return nil, fmt.Errorf("failed to upload canvas: %w", err)
	}
	url := s.blobs.PublicURL(storage.BucketPhotos, key)
	log.Printf("🎨 Canvas stored: %s", url)

	res := &CanvasResult{CanvasURL: url, PhotoIDs: photoIDs}
	for _, id := range photoIDs {
		p, err := s.store.GetPhoto(ctx, id)
		if err != nil {
			log.Printf("⚠️ Canvas: photo %d skipped: %v", id, err)
			continue
		}
		if p.InspectionID != inspectionID {
			log.Printf("⚠️ Canvas: photo %d belongs to inspection %d, skipped", id, p.InspectionID)
			continue
		}
		if err := s.store.SetCanvasURL(ctx, id, &url); err != nil {
			log.Printf("⚠️ Canvas: photo %d not updated: %v", id, err)
			continue
		}
		res.UpdatedPhotos++
	}
	return res, nil
}

// RemoveCanvas unlinks the canvas annotation from a photo. The image itself is
// deleted once no other photo of the inspection still shows it.
func (s *Service) RemoveCanvas(ctx context.Context, photoID uint) error {
	p, err := s.store.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if p.CanvasPhotoURL == nil {
		return nil
	}
	canvasURL := *p.CanvasPhotoURL

	if err := s.store.SetCanvasURL(ctx, photoID, nil); err != nil {
		return fmt.Errorf("failed to clear canvas of photo %d: %w", photoID, err)
	}

	siblings, err := s.store.ListPhotos(ctx, p.InspectionID, "")
	if err != nil {
		log.Printf("⚠️ Canvas kept, sibling photos not checked: %v", err)
		return nil
	}
	for _, sib := range siblings {
		if sib.CanvasPhotoURL != nil && *sib.CanvasPhotoURL == canvasURL {
			return nil
		}
	}
	s.removeBlob(ctx, "canvas", canvasURL)
	return nil
}

// UploadImage stores an uploaded inspection image and returns its public URL
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrInvalidImage
	}
	name := storage.LastSegment(strings.ReplaceAll(filename, `\`, "/"))
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("%d_%s", s.now().Unix(), name)
	if err := s.blobs.Upload(ctx, storage.BucketImages, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	return s.blobs.PublicURL(storage.BucketImages, key), nil
}
