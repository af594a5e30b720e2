package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/utils"
)

// ErrUnavailable is returned when no model is configured
var ErrUnavailable = errors.New("AI summary is not configured")

// Generator produces text for a prompt. GeminiClient implements it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Summary is a draft of an inspection's narrative sections
type Summary struct {
	Findings        string `json:"findings"`
	Recommendations string `json:"recommendations"`
	NDT             string `json:"ndt"`
}

// Summarizer drafts inspection narratives from recorded photo findings
type Summarizer struct {
	gen Generator
}

// NewSummarizer wraps gen. A nil gen yields ErrUnavailable on every call.
func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Available reports whether a model is configured
func (s *Summarizer) Available() bool {
	return s != nil && s.gen != nil
}

// Draft asks the model for findings and recommendations covering the photos
func (s *Summarizer) Draft(ctx context.Context, insp *models.Inspection, photos []models.PhotoReport) (*Summary, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}

	raw, err := s.gen.GenerateContent(ctx, BuildSummaryPrompt(insp, photos))
	if err != nil {
		return nil, err
	}

	var out Summary
	if err := json.Unmarshal([]byte(utils.SanitizeJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("unparseable summary response: %w", err)
	}
	return &out, nil
}

// BuildSummaryPrompt lists the equipment and every photo with its annotations
func BuildSummaryPrompt(insp *models.Inspection, photos []models.PhotoReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report No: %s\nReport Date: %s\n", insp.ReportNo, insp.ReportDate)
	if e := insp.Equipment; e != nil {
		fmt.Fprintf(&b, "Equipment: %s\nType: %s\nTag No: %s\n", e.EquipDescription, e.EquipType, e.TagNo)
	}

	b.WriteString("\nPhotos:\n")
	if len(photos) == 0 {
		b.WriteString("(none)\n")
	}
	for n, p := range photos {
		fmt.Fprintf(&b, "%d. [%s] %s\n", n+1, deref(p.Category, "General"), deref(p.Caption, "no caption"))
		if p.Finding != nil && p.Finding.Description != "" {
			fmt.Fprintf(&b, "   Finding: %s\n", p.Finding.Description)
		}
		if p.Recommendation != nil && p.Recommendation.Description != "" {
			fmt.Fprintf(&b, "   Recommendation: %s\n", p.Recommendation.Description)
		}
	}
	return b.String()
}

func deref(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
