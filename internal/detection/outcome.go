package detection

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Placeholder narrative used when the detector could not process a photo
const (
	PlaceholderFinding        = "Detection failed, manual review required."
	PlaceholderRecommendation = "Manual inspection required."
)

// PhotoRef identifies a photo to analyse
type PhotoRef struct {
	ID  uint
	URL string
}

// Box is a single detected defect region
type Box struct {
	ClassName  string    `json:"class_name"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// Outcome is the detector's result for one photo
type Outcome struct {
	PhotoID              uint   `json:"photo_id"`
	Detections           []Box  `json:"detections"`
	Finding              string `json:"finding"`
	Recommendation       string `json:"recommendation"`
	DetectionCount       int    `json:"detection_count"`
	AnnotatedImageBase64 string `json:"annotated_image_base64,omitempty"`
	// Placeholder is set when the outcome was synthesised after the detector failed
	Placeholder bool `json:"placeholder,omitempty"`
}

// Placeholder returns the outcome recorded for a photo the detector could not process
func Placeholder(photoID uint) Outcome {
	return Outcome{
		PhotoID:        photoID,
		Detections:     []Box{},
		Finding:        PlaceholderFinding,
		Recommendation: PlaceholderRecommendation,
		Placeholder:    true,
	}
}

// MaxConfidence returns the highest detection confidence, false when nothing was detected
func (o Outcome) MaxConfidence() (float64, bool) {
	if len(o.Detections) == 0 {
		return 0, false
	}
	max := o.Detections[0].Confidence
	for _, d := range o.Detections[1:] {
		if d.Confidence > max {
			max = d.Confidence
		}
	}
	return max, true
}

// AnnotatedImage decodes the annotated image. It returns nil when none was sent.
func (o Outcome) AnnotatedImage() ([]byte, error) {
	return DecodeImage(o.AnnotatedImageBase64)
}

// DecodeImage decodes base64 image data, with or without a data URL prefix
func DecodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.IndexByte(encoded, ','); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

// normalize fills defaults the detector may omit
func normalize(o Outcome, photoID uint) Outcome {
	o.PhotoID = photoID
	if o.Detections == nil {
		o.Detections = []Box{}
	}
	if o.DetectionCount == 0 {
		o.DetectionCount = len(o.Detections)
	}
	if strings.TrimSpace(o.Finding) == "" {
		o.Finding = Catalog[DefectNone].Finding
		if len(o.Detections) > 0 {
			if d, ok := Catalog[o.Detections[0].ClassName]; ok {
				o.Finding = d.Finding
			}
		}
	}
	if strings.TrimSpace(o.Recommendation) == "" {
		o.Recommendation = Catalog[DefectNone].Recommendation
		if len(o.Detections) > 0 {
			if d, ok := Catalog[o.Detections[0].ClassName]; ok {
				o.Recommendation = d.Recommendation
			}
		}
	}
	return o
}
