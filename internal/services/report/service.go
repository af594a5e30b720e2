// Package report manages inspection reports and the admin approval workflow.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/symmetrixs/edaago/internal/convert"
	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/storage"
	"github.com/symmetrixs/edaago/internal/store"
)

// DefaultAdminName signs approvals when no admin name is given
const DefaultAdminName = "Admin"

// RevertComment is written to the report when an approval is reverted
const RevertComment = "Status: Completed"

// ErrEmptyFile is returned for uploads without content
var ErrEmptyFile = errors.New("empty file")

// Notifier delivers best-effort notifications to a user
type Notifier interface {
	NotifyUser(ctx context.Context, userID uint, message string, typ models.NotificationType)
}

// Service implements report CRUD and the approval lifecycle
type Service struct {
	store     store.Store
	blobs     storage.Blob
	converter convert.Converter
	notifier  Notifier
	now       func() time.Time
}

// NewService creates a report service
func NewService(s store.Store, b storage.Blob, c convert.Converter, n Notifier) *Service {
	return &Service{store: s, blobs: b, converter: c, notifier: n, now: time.Now}
}

// WithClock overrides the time source used in file names
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create adds the report of an inspection. Each inspection has at most one report.
func (s *Service) Create(ctx context.Context, r *models.Report) error {
	if _, err := s.store.GetInspection(ctx, r.InspectionID); err != nil {
		return err
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// Get returns the report of an inspection
func (s *Service) Get(ctx context.Context, inspectionID uint) (*models.Report, error) {
	return s.store.GetReport(ctx, inspectionID)
}

// List returns every report with its inspection, equipment and inspector
func (s *Service) List(ctx context.Context) ([]models.Report, error) {
	return s.store.ListReports(ctx, nil, true)
}

// ListByInspector returns the reports of the inspections an inspector owns
func (s *Service) ListByInspector(ctx context.Context, userID uint) ([]models.Report, error) {
	inspections, err := s.store.ListInspections(ctx, store.InspectionFilter{InspectorID: &userID})
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(inspections))
	for _, i := range inspections {
		ids = append(ids, i.InspectionID)
	}
	return s.store.ListReports(ctx, ids, false)
}

// Update writes the set fields. A non-empty comment notifies the inspector.
func (s *Service) Update(ctx context.Context, inspectionID uint, patch models.ReportPatch) (*models.Report, error) {
	if err := s.store.UpdateReport(ctx, inspectionID, patch.Columns()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	r, err := s.store.GetReport(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	if c := patch.Comment.Value; c != nil && strings.TrimSpace(*c) != "" {
		if insp, err := s.store.GetInspection(ctx, inspectionID); err != nil {
			log.Printf("⚠️ Comment notification skipped: %v", err)
		} else {
			s.notifier.NotifyUser(ctx, insp.UserIDInspector,
				fmt.Sprintf("Admin added a comment on Report %s: %s", insp.ReportNo, *c),
				models.NotificationInfo)
		}
	}
	return r, nil
}

// Delete removes the report of an inspection
func (s *Service) Delete(ctx context.Context, inspectionID uint) error {
	return s.store.DeleteReport(ctx, inspectionID)
}

// UploadFile stores a report document and returns its public URL
func (s *Service) UploadFile(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	name := storage.LastSegment(strings.ReplaceAll(filename, `\`, "/"))
	if name == "" || name == "." || name == ".." {
		name = "report"
	}
	key := fmt.Sprintf("%d_%s", s.now().Unix(), name)
	if err := s.blobs.Upload(ctx, storage.BucketReports, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.blobs.PublicURL(storage.BucketReports, key), nil
}

// Convert turns a DOCX into a PDF
func (s *Service) Convert(ctx context.Context, docx []byte) ([]byte, error) {
	return s.converter.Convert(ctx, docx)
}

// ApproveInput describes an approval. Docx is the signed report; without it the
// approval only changes status and comment.
type ApproveInput struct {
	InspectionID uint
	AdminName    string
	AdminUserID  *uint
	Docx         []byte
}

// ApproveResult carries the URLs of the approved artifacts
type ApproveResult struct {
	DocxURL string `json:"docx_url,omitempty"`
	PdfURL  string `json:"pdf_url,omitempty"`
}

// Approve moves a Completed inspection to Approved. With a document it is
// converted to PDF and both files are stored first; a conversion or upload
// failure leaves the inspection untouched. The inspector is notified best-effort.
func (s *Service) Approve(ctx context.Context, in ApproveInput) (*ApproveResult, error) {
	insp, err := s.store.GetInspection(ctx, in.InspectionID)
	if err != nil {
		return nil, err
	}
	if insp.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: inspection %d is %s", inspection.ErrInvalidTransition, insp.InspectionID, insp.Status)
	}
	admin := strings.TrimSpace(in.AdminName)
	if admin == "" {
		admin = DefaultAdminName
	}

	res := &ApproveResult{}
	var uploaded []string
	if len(in.Docx) > 0 {
		pdf, err := s.converter.Convert(ctx, in.Docx)
		if err != nil {
			return nil, fmt.Errorf("failed to convert approved report: %w", err)
		}

		ts := s.now().Unix()
		docxKey := fmt.Sprintf("Approved-Word-%d-%d.docx", insp.InspectionID, ts)
		pdfKey := fmt.Sprintf("Approved-PDF-%d-%d.pdf", insp.InspectionID, ts)

		if err := s.blobs.Upload(ctx, storage.BucketReports, docxKey, in.Docx, storage.ContentTypeDOCX); err != nil {
			return nil, fmt.Errorf("failed to upload approved report: %w", err)
		}
		uploaded = append(uploaded, docxKey)
		if err := s.blobs.Upload(ctx, storage.BucketReports, pdfKey, pdf, storage.ContentTypePDF); err != nil {
			s.discard(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload approved pdf: %w", err)
		}
		uploaded = append(uploaded, pdfKey)

		res.DocxURL = s.blobs.PublicURL(storage.BucketReports, docxKey)
		res.PdfURL = s.blobs.PublicURL(storage.BucketReports, pdfKey)
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		swapped, err := tx.SwapInspectionStatus(ctx, insp.InspectionID, models.StatusCompleted, models.StatusApproved)
		if err != nil {
			return err
		}
		if !swapped {
			return fmt.Errorf("%w: inspection %d is no longer %s", inspection.ErrInvalidTransition, insp.InspectionID, models.StatusCompleted)
		}
		if _, err := tx.FirstOrCreateReport(ctx, insp.InspectionID); err != nil {
			return err
		}
		cols := map[string]interface{}{
			"Comment": fmt.Sprintf("%s approved the report %s.", admin, insp.ReportNo),
		}
		if res.DocxURL != "" {
			cols["ApprovedWordFile"] = res.DocxURL
			cols["ApprovedPdfFile"] = res.PdfURL
		}
		if in.AdminUserID != nil {
			cols["UserID"] = *in.AdminUserID
		}
		return tx.UpdateReport(ctx, insp.InspectionID, cols)
	})
	if err != nil {
		s.discard(ctx, uploaded)
		if errors.Is(err, inspection.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to approve report: %w", err)
	}
	log.Printf("✅ Report %s approved by %s", insp.ReportNo, admin)

	s.notifier.NotifyUser(ctx, insp.UserIDInspector,
		fmt.Sprintf("Your report %s has been approved by %s.", insp.ReportNo, admin),
		models.NotificationSuccess)
	return res, nil
}

// Revert moves an Approved inspection back to Completed and clears the approved artifacts
func (s *Service) Revert(ctx context.Context, inspectionID uint) error {
	insp, err := s.store.GetInspection(ctx, inspectionID)
	if err != nil {
		return err
	}
	if insp.Status != models.StatusApproved {
		return fmt.Errorf("%w: inspection %d is %s", inspection.ErrInvalidTransition, inspectionID, insp.Status)
	}

	return s.store.Transaction(ctx, func(tx store.Store) error {
		swapped, err := tx.SwapInspectionStatus(ctx, inspectionID, models.StatusApproved, models.StatusCompleted)
		if err != nil {
			return err
		}
		if !swapped {
			return fmt.Errorf("%w: inspection %d is no longer %s", inspection.ErrInvalidTransition, inspectionID, models.StatusApproved)
		}
		if _, err := tx.FirstOrCreateReport(ctx, inspectionID); err != nil {
			return err
		}
		return tx.UpdateReport(ctx, inspectionID, map[string]interface{}{
			"ApprovedWordFile": nil,
			"ApprovedPdfFile":  nil,
			"Comment":          RevertComment,
		})
	})
}

// discard removes blobs uploaded by a failed approval
func (s *Service) discard(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.blobs.Remove(ctx, storage.BucketReports, keys...); err != nil {
		log.Printf("⚠️ Orphaned report files %v: %v", keys, err)
	}
}
