package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"camlytics/internal/model"
)

type DetectionRepository struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

func (r *DetectionRepository) Create(ctx context.Context, detection *model.Detection) error {
	return r.db.WithContext(ctx).Create(detection).Error
}

func (r *DetectionRepository) GetByID(ctx context.Context, id string) (*model.Detection, error) {
	var detection model.Detection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&detection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &detection, nil
}

type DetectionListFilter struct {
	UserID          *uuid.UUID
	NormalizedPlate *string
}

func (r *DetectionRepository) List(ctx context.Context, filter DetectionListFilter) ([]model.Detection, error) {
	var detections []model.Detection
	query := r.db.WithContext(ctx).Model(&model.Detection{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.NormalizedPlate != nil {
		query = query.Where("normalized_plate = ?", *filter.NormalizedPlate)
	}

	if err := query.Order("created_at DESC").Find(&detections).Error; err != nil {
		return nil, err
	}

	return detections, nil
}

// LatestByPlate returns the newest detection of the plate by the user inside
// the window, or ErrRecordNotFound. Backs the repeat-detection dedupe.
func (r *DetectionRepository) LatestByPlate(ctx context.Context, userID uuid.UUID, normalizedPlate string, window time.Duration) (*model.Detection, error) {
	var detection model.Detection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND normalized_plate = ? AND created_at > ?",
			userID, normalizedPlate, time.Now().Add(-window)).
		Order("created_at DESC").
		First(&detection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &detection, nil
}

func (r *DetectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Detection{}).Error
}
