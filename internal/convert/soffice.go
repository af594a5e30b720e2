package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// well-known soffice locations, tried after the configured path
var sofficeCandidates = []string{
	"soffice",
	"/usr/bin/soffice",
	"/usr/bin/libreoffice",
	"/usr/lib/libreoffice/program/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"libreoffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
	`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
}

func lookPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		info, err := os.Stat(name)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", name)
		}
		return name, nil
	}
	return exec.LookPath(name)
}

func (s *Service) findSoffice() (string, bool) {
	candidates := sofficeCandidates
	if s.cfg.SofficePath != "" {
		candidates = append([]string{s.cfg.SofficePath}, candidates...)
	}
	for _, c := range candidates {
		if p, err := s.lookPath(c); err == nil {
			return p, true
		}
	}
	return "", false
}

// runSoffice converts input into dir and reads back the produced PDF
func (s *Service) runSoffice(ctx context.Context, bin, dir, input string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, bin, "--headless", "--convert-to", "pdf", "--outdir", dir, input)
	// Keep the LibreOffice profile inside the scratch dir so parallel runs do not share it
	cmd.Env = append(os.Environ(), "HOME="+dir)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("soffice timed out after %s", s.cfg.Timeout)
		}
		return nil, fmt.Errorf("soffice failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}

	pdfPath := strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("soffice produced no output: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("soffice produced an empty file")
	}
	return pdf, nil
}
