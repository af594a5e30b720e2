package models

import (
	"time"

	"gorm.io/datatypes"
)

// PhotoReport is one inspection photo with its optional AI-derived annotations
type PhotoReport struct {
	PhotoID             uint           `gorm:"column:PhotoID;primaryKey;autoIncrement" json:"PhotoID"`
	InspectionID        uint           `gorm:"column:InspectionID;index;not null" json:"InspectionID"`
	PhotoURL            string         `gorm:"column:PhotoURL;not null" json:"PhotoURL"`
	PhotoNumbering      *float64       `gorm:"column:PhotoNumbering" json:"PhotoNumbering"`
	Category            *string        `gorm:"column:Category;index" json:"Category"`
	Caption             *string        `gorm:"column:Caption;type:text" json:"Caption"`
	FindingID           *uint          `gorm:"column:FindingID" json:"FindingID"`
	RecommendID         *uint          `gorm:"column:RecommendID" json:"RecommendID"`
	AnnotatedPhotoURL   *string        `gorm:"column:AnnotatedPhotoURL" json:"AnnotatedPhotoURL"`
	CanvasPhotoURL      *string        `gorm:"column:CanvasPhotoURL" json:"CanvasPhotoURL"`
	DetectionConfidence *float64       `gorm:"column:DetectionConfidence" json:"DetectionConfidence"`
	AIDetectionDate     *time.Time     `gorm:"column:AIDetectionDate" json:"AIDetectionDate"`
	Detections          datatypes.JSON `gorm:"column:Detections" json:"Detections,omitempty"`

	// Relations
	Finding        *Finding        `gorm:"foreignKey:FindingID;references:FindingID" json:"Finding,omitempty"`
	Recommendation *Recommendation `gorm:"foreignKey:RecommendID;references:RecommendID" json:"Recommendation,omitempty"`
}

// TableName specifies the table name for PhotoReport model
func (PhotoReport) TableName() string {
	return "PhotoReport"
}

// PhotoPatch carries the optional fields of a photo update
type PhotoPatch struct {
	PhotoURL       *string    `json:"PhotoURL"`
	PhotoNumbering *float64   `json:"PhotoNumbering"`
	Category       *string    `json:"Category"`
	Caption        NullString `json:"Caption"`
	FindingID      *uint      `json:"FindingID"`
	RecommendID    *uint      `json:"RecommendID"`
}

// Columns returns the columns the patch writes, keyed by column name
func (patch PhotoPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if patch.PhotoURL != nil {
		cols["PhotoURL"] = *patch.PhotoURL
	}
	if patch.PhotoNumbering != nil {
		cols["PhotoNumbering"] = *patch.PhotoNumbering
	}
	if patch.Category != nil {
		cols["Category"] = *patch.Category
	}
	nullable(cols, "Caption", patch.Caption)
	if patch.FindingID != nil {
		cols["FindingID"] = *patch.FindingID
	}
	if patch.RecommendID != nil {
		cols["RecommendID"] = *patch.RecommendID
	}
	return cols
}

// Finding is a narrative finding, usually produced by detection
type Finding struct {
	FindingID   uint   `gorm:"column:FindingID;primaryKey;autoIncrement" json:"FindingID"`
	Description string `gorm:"column:Description;type:text" json:"Description"`
}

// TableName specifies the table name for Finding model
func (Finding) TableName() string {
	return "Finding"
}

// Recommendation is a narrative recommendation, usually produced by detection
type Recommendation struct {
	RecommendID uint   `gorm:"column:RecommendID;primaryKey;autoIncrement" json:"RecommendID"`
	Description string `gorm:"column:Description;type:text" json:"Description"`
}

// TableName specifies the table name for Recommendation model
func (Recommendation) TableName() string {
	return "Recommendation"
}

// NilRecommendation is returned for "nil" descriptions instead of inserting a row
var NilRecommendation = Recommendation{RecommendID: 1, Description: "Nil"}
