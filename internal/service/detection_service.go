package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"camlytics/internal/events"
	"camlytics/internal/model"
	"camlytics/internal/plate"
	"camlytics/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	// ErrPlateNotDetected is the defined "not detected" outcome, not a
	// failure: the image was processed and no acceptable plate was found.
	ErrPlateNotDetected = errors.New("plate not detected")
)

type VisionClient interface {
	DetectTextLines(ctx context.Context, imageBytes []byte) ([]plate.TextLine, error)
	DetectPlateRegion(ctx context.Context, imageBytes []byte) (*plate.BoundingBox, error)
}

type ImageStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

type ComplianceClassifier interface {
	Enabled() bool
	Classify(ctx context.Context, normalizedPlate string) (model.ComplianceStatus, error)
}

type DetectionStore interface {
	Create(ctx context.Context, detection *model.Detection) error
	GetByID(ctx context.Context, id string) (*model.Detection, error)
	List(ctx context.Context, filter repository.DetectionListFilter) ([]model.Detection, error)
	LatestByPlate(ctx context.Context, userID uuid.UUID, normalizedPlate string, window time.Duration) (*model.Detection, error)
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.DetectionEvent) error
}

type RepeatChecker interface {
	Enabled() bool
	MarkSeen(ctx context.Context, userID uuid.UUID, normalizedPlate string) (bool, error)
	Forget(ctx context.Context, userID uuid.UUID, normalizedPlate string) error
}

// Notifier pushes freshly stored detections to live listeners.
type Notifier interface {
	NotifyDetection(userID uuid.UUID, detection *model.Detection)
}

type DetectionService struct {
	detectionRepo DetectionStore
	vision        VisionClient
	images        ImageStore
	compliance    ComplianceClassifier
	publisher     EventPublisher
	repeats       RepeatChecker
	notifier      Notifier
	plateCfg      plate.Config
	dedupeWindow  time.Duration
	log           zerolog.Logger
}

func NewDetectionService(
	detectionRepo DetectionStore,
	vision VisionClient,
	images ImageStore,
	compliance ComplianceClassifier,
	publisher EventPublisher,
	repeats RepeatChecker,
	notifier Notifier,
	dedupeWindow time.Duration,
	log zerolog.Logger,
) *DetectionService {
	return &DetectionService{
		detectionRepo: detectionRepo,
		vision:        vision,
		images:        images,
		compliance:    compliance,
		publisher:     publisher,
		repeats:       repeats,
		notifier:      notifier,
		plateCfg:      plate.DefaultConfig(),
		dedupeWindow:  dedupeWindow,
		log:           log,
	}
}

type DetectInput struct {
	ImageBytes  []byte
	ContentType string
}

type DetectResult struct {
	Detection *model.Detection
	Duplicate bool
	ImageURL  string
}

func (s *DetectionService) Detect(ctx context.Context, principal model.Principal, input DetectInput) (*DetectResult, error) {
	if len(input.ImageBytes) == 0 {
		return nil, ErrInvalidInput
	}
	if input.ContentType == "" {
		input.ContentType = "image/jpeg"
	}

	lines, err := s.vision.DetectTextLines(ctx, input.ImageBytes)
	if err != nil {
		return nil, fmt.Errorf("vision text detection: %w", err)
	}

	// The region lookup is best-effort. Without it we still reconstruct
	// from the full line set.
	region, err := s.vision.DetectPlateRegion(ctx, input.ImageBytes)
	if err != nil {
		s.log.Warn().Err(err).Msg("plate region lookup failed, using full reconstruction")
		region = nil
	}

	text, method, ok := s.selectPlate(lines, region)
	if !ok {
		return nil, ErrPlateNotDetected
	}

	normalized := plate.NormalizeOCR(text)
	confidence := resultConfidence(lines, text, method)

	if existing := s.findRecent(ctx, principal.UserID, normalized); existing != nil {
		url := s.presign(ctx, existing.ImageKey)
		return &DetectResult{Detection: existing, Duplicate: true, ImageURL: url}, nil
	}

	compliance := model.ComplianceUnknown
	if s.compliance != nil && s.compliance.Enabled() {
		status, err := s.compliance.Classify(ctx, normalized)
		if err != nil {
			s.log.Warn().Err(err).Str("plate", normalized).Msg("compliance classification failed")
		} else {
			compliance = status
		}
	}

	imageKey := fmt.Sprintf("%s/%s", principal.UserID, uuid.New())
	if err := s.images.Upload(ctx, imageKey, input.ImageBytes, input.ContentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	detection := &model.Detection{
		UserID:          principal.UserID,
		Plate:           text,
		NormalizedPlate: normalized,
		Confidence:      confidence,
		Method:          method,
		Compliance:      compliance,
		ImageKey:        imageKey,
	}

	if err := s.detectionRepo.Create(ctx, detection); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := events.DetectionEvent{
			DetectionID: detection.ID,
			UserID:      detection.UserID,
			Plate:       detection.Plate,
			Confidence:  detection.Confidence,
			Method:      string(detection.Method),
			Compliance:  string(detection.Compliance),
			DetectedAt:  detection.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error().Err(err).Msg("failed to publish detection event")
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyDetection(detection.UserID, detection)
	}

	return &DetectResult{Detection: detection, ImageURL: s.presign(ctx, imageKey)}, nil
}

// selectPlate prefers the region path when the object detector isolated a
// plate, falling back to full reconstruction when the region yields nothing.
func (s *DetectionService) selectPlate(lines []plate.TextLine, region *plate.BoundingBox) (string, model.DetectionMethod, bool) {
	if region != nil {
		if text, ok := plate.BestInRegion(lines, *region, s.plateCfg); ok {
			return text, model.DetectionMethodRegion, true
		}
	}
	if text, ok := plate.Reconstruct(lines, plate.NormalizeOCR, s.plateCfg); ok {
		return text, model.DetectionMethodTextLines, true
	}
	return "", "", false
}

func (s *DetectionService) findRecent(ctx context.Context, userID uuid.UUID, normalized string) *model.Detection {
	if s.repeats != nil && s.repeats.Enabled() {
		seen, err := s.repeats.MarkSeen(ctx, userID, normalized)
		if err != nil {
			s.log.Warn().Err(err).Msg("dedupe fast path unavailable")
		} else if !seen {
			return nil
		}
		// Redis says seen (or errored): confirm against the database.
	}

	existing, err := s.detectionRepo.LatestByPlate(ctx, userID, normalized, s.dedupeWindow)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Msg("recent plate lookup failed")
		}
		return nil
	}
	return existing
}

// resultConfidence derives caller-side metadata: the highest confidence
// among line detections whose normalized text contributed to the winner.
func resultConfidence(lines []plate.TextLine, text string, method model.DetectionMethod) float64 {
	norm := plate.NormalizeOCR
	if method == model.DetectionMethodRegion {
		norm = plate.NormalizeBasic
	}

	best := 0.0
	for _, line := range lines {
		if line.Type != plate.DetectionTypeLine {
			continue
		}
		normalized := norm(line.Text)
		if normalized == "" || !strings.Contains(text, normalized) {
			continue
		}
		if line.Confidence > best {
			best = line.Confidence
		}
	}
	return best
}

func (s *DetectionService) presign(ctx context.Context, key string) string {
	url, err := s.images.PresignGet(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to presign image")
		return ""
	}
	return url
}

func (s *DetectionService) Get(ctx context.Context, principal model.Principal, id string) (*model.Detection, string, error) {
	detection, err := s.detectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	if detection.UserID != principal.UserID {
		return nil, "", ErrPermissionDenied
	}

	return detection, s.presign(ctx, detection.ImageKey), nil
}

type ListInput struct {
	Plate string
}

func (s *DetectionService) List(ctx context.Context, principal model.Principal, input ListInput) ([]model.Detection, error) {
	filter := repository.DetectionListFilter{UserID: &principal.UserID}
	if input.Plate != "" {
		normalized := plate.NormalizeOCR(input.Plate)
		filter.NormalizedPlate = &normalized
	}

	return s.detectionRepo.List(ctx, filter)
}

func (s *DetectionService) Delete(ctx context.Context, principal model.Principal, id string) error {
	detection, err := s.detectionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if detection.UserID != principal.UserID {
		return ErrPermissionDenied
	}

	if err := s.detectionRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.images.Delete(ctx, detection.ImageKey); err != nil {
		s.log.Warn().Err(err).Str("key", detection.ImageKey).Msg("failed to delete stored image")
	}
	if s.repeats != nil {
		if err := s.repeats.Forget(ctx, detection.UserID, detection.NormalizedPlate); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear dedupe marker")
		}
	}

	return nil
}
