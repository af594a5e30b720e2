// Package printer renders printable inspection documents.
package printer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/symmetrixs/edaago/internal/models"
)

// SummaryData is everything printed on an inspection summary
type SummaryData struct {
	Inspection *models.Inspection
	Photos     []models.PhotoReport
	// QRTarget is encoded in the corner QR code, usually the approved PDF URL
	QRTarget string
}

const (
	pageMargin = 15.0
	qrSize     = 32.0
	lineHeight = 6.0
)

// GenerateSummaryPDF creates a one-document overview of an inspection:
// equipment, status, narrative sections and a table of photo findings.
func GenerateSummaryPDF(data SummaryData) ([]byte, error) {
	insp := data.Inspection
	if insp == nil {
		return nil, fmt.Errorf("inspection is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentW := pageWidth - 2*pageMargin

	if data.QRTarget != "" {
		qrPng, err := qrcode.Encode(data.QRTarget, qrcode.Medium, 256)
		if err != nil {
			return nil, err
		}
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(qrPng))
		pdf.ImageOptions("qr", pageWidth-pageMargin-qrSize, pageMargin, qrSize, qrSize, false, imgOptions, 0, data.QRTarget)
	}

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentW-qrSize, 9, tr("Inspection Summary"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentW-qrSize, lineHeight, tr("Report No: "+insp.ReportNo), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW-qrSize, lineHeight, tr("Report Date: "+insp.ReportDate), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW-qrSize, lineHeight, tr("Status: "+string(insp.Status)), "", 1, "L", false, 0, "")
	if insp.Inspector != nil {
		pdf.CellFormat(contentW-qrSize, lineHeight, tr("Inspector: "+insp.Inspector.FullName), "", 1, "L", false, 0, "")
	}
	if y := pageMargin + qrSize + 4; data.QRTarget != "" && pdf.GetY() < y {
		pdf.SetY(y)
	}
	pdf.Ln(2)

	if e := insp.Equipment; e != nil {
		section(pdf, tr, "Equipment")
		rows := [][2]string{
			{"Description", e.EquipDescription},
			{"Type", e.EquipType},
			{"Tag No", e.TagNo},
			{"Plant", e.PlantName},
			{"DOSH", e.DOSH},
			{"Next Inspection", deref(e.NextInspectionDate)},
		}
		for _, r := range rows {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, lineHeight, tr(r[0]), "1", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(contentW-45, lineHeight, tr(r[1]), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	for _, s := range []struct {
		title string
		body  *string
	}{
		{"Findings", insp.Findings},
		{"NDTs", insp.NDTs},
		{"Recommendations", insp.Recommendations},
		{"Post Final Inspection", insp.PostFinalInspection},
	} {
		if strings.TrimSpace(deref(s.body)) == "" {
			continue
		}
		section(pdf, tr, s.title)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(contentW, 5, tr(*s.body), "", "L", false)
		pdf.Ln(3)
	}

	if len(data.Photos) > 0 {
		section(pdf, tr, fmt.Sprintf("Photo Findings (%d)", len(data.Photos)))
		widths := []float64{10, 30, 60, 60, contentW - 160}
		pdf.SetFont("Arial", "B", 9)
		for i, h := range []string{"#", "Category", "Finding", "Recommendation", "Conf."} {
			pdf.CellFormat(widths[i], lineHeight, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for n, p := range data.Photos {
			cells := []string{
				fmt.Sprintf("%d", n+1),
				deref(p.Category),
				"",
				"",
				"",
			}
			if p.Finding != nil {
				cells[2] = clip(p.Finding.Description, 48)
			}
			if p.Recommendation != nil {
				cells[3] = clip(p.Recommendation.Description, 48)
			}
			if p.DetectionConfidence != nil {
				cells[4] = fmt.Sprintf("%.0f%%", *p.DetectionConfidence*100)
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], lineHeight, tr(c), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 236, 245)
	w, _ := pdf.GetPageSize()
	pdf.CellFormat(w-2*pageMargin, 7, tr(title), "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// clip shortens s to n runes so a row stays on one line
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
