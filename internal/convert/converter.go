// Package convert turns DOCX documents into PDF.
//
// The primary converter is a headless LibreOffice (soffice) subprocess. When the
// binary is missing or fails, a local renderer lays out the document text with gofpdf.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ErrConversion is returned when no converter produced a PDF
var ErrConversion = errors.New("document conversion failed")

// Converter converts a DOCX document to PDF bytes
type Converter interface {
	Convert(ctx context.Context, docx []byte) ([]byte, error)
}

// Config holds converter settings
type Config struct {
	SofficePath     string        // Explicit soffice binary, searched first
	Timeout         time.Duration // Subprocess timeout (default: 30s)
	DisableFallback bool
	TempDir         string // Parent of the scratch directories (default: os.TempDir)
}

// Service runs the soffice converter with a fallback renderer
type Service struct {
	cfg      Config
	fallback Converter
	lookPath func(string) (string, error)
}

var _ Converter = (*Service)(nil)

// New creates a conversion service
func New(cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	s := &Service{cfg: cfg, lookPath: lookPath}
	if !cfg.DisableFallback {
		s.fallback = TextRenderer{}
	}
	return s
}

// Convert writes docx into a scratch directory, converts it and returns the PDF.
// The scratch directory is removed on every path.
func (s *Service) Convert(ctx context.Context, docx []byte) ([]byte, error) {
	if len(docx) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrConversion)
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "docx2pdf-")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch dir: %v", ErrConversion, err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.docx")
	if err := os.WriteFile(input, docx, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write input: %v", ErrConversion, err)
	}

	if bin, ok := s.findSoffice(); ok {
		pdf, err := s.runSoffice(ctx, bin, dir, input)
		if err == nil {
			return pdf, nil
		}
		log.Printf("⚠️ soffice conversion failed: %v", err)
	} else {
		log.Printf("⚠️ soffice not found, using fallback renderer")
	}

	if s.fallback != nil {
		pdf, err := s.fallback.Convert(ctx, docx)
		if err == nil {
			return pdf, nil
		}
		log.Printf("❌ Fallback conversion failed: %v", err)
	}

	return nil, ErrConversion
}
