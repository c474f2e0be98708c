package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DetectionMethod string

const (
	// DetectionMethodTextLines means the plate was reconstructed from the
	// full set of OCR lines, including the two-line combination pass.
	DetectionMethodTextLines DetectionMethod = "TEXT_LINES"
	// DetectionMethodRegion means an object detector isolated the plate
	// region first and the best overlapping line was taken.
	DetectionMethodRegion DetectionMethod = "REGION"
)

type ComplianceStatus string

const (
	ComplianceCompliant ComplianceStatus = "COMPLIANT"
	ComplianceViolation ComplianceStatus = "VIOLATION"
	ComplianceUnknown   ComplianceStatus = "UNKNOWN"
)

type Detection struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Plate           string           `gorm:"type:varchar(32);not null" json:"plate"`
	NormalizedPlate string           `gorm:"type:varchar(32);not null;index" json:"normalized_plate"`
	Confidence      float64          `gorm:"not null;default:0" json:"confidence"`
	Method          DetectionMethod  `gorm:"type:detection_method;not null" json:"method"`
	Compliance      ComplianceStatus `gorm:"type:compliance_status;not null;default:UNKNOWN" json:"compliance"`
	ImageKey        string           `gorm:"type:text;not null" json:"-"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Detection) TableName() string {
	return "detections"
}

func (d *Detection) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
