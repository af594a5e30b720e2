package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/services/printer"
	"github.com/symmetrixs/edaago/internal/services/report"
	"github.com/symmetrixs/edaago/internal/storage"
	"github.com/symmetrixs/edaago/internal/store"
)

func (r *Router) createReport(w http.ResponseWriter, req *http.Request) {
	var rep models.Report
	if !decodeJSON(w, req, &rep) {
		return
	}
	if rep.InspectionID == 0 {
		respondError(w, http.StatusBadRequest, "InspectionID is required")
		return
	}
	rep.ReportID = 0
	if err := r.reports.Create(req.Context(), &rep); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			respondError(w, http.StatusBadRequest, "Report already exists for this Inspection ID. Use Update instead.")
			return
		}
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondJSON(w, http.StatusCreated, rep)
}

func (r *Router) listReports(w http.ResponseWriter, req *http.Request) {
	list, err := r.reports.List(req.Context())
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (r *Router) listReportsByInspector(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.reports.ListByInspector(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Report routes are keyed by inspection ID
func (r *Router) getReport(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	rep, err := r.reports.Get(req.Context(), id)
	if err != nil {
		respondFailure(w, err, "Report not found")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (r *Router) updateReport(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var patch models.ReportPatch
	if !decodeJSON(w, req, &patch) {
		return
	}
	rep, err := r.reports.Update(req.Context(), id, patch)
	if err != nil {
		respondFailure(w, err, "Report not found")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (r *Router) deleteReport(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.reports.Delete(req.Context(), id); err != nil {
		respondFailure(w, err, "Report not found")
		return
	}
	respondMessage(w, http.StatusOK, "Report deleted successfully")
}

func (r *Router) uploadReportFile(w http.ResponseWriter, req *http.Request) {
	up, ok := readUpload(w, req, "file")
	if !ok {
		return
	}
	ct := up.ContentType
	if ct == "" {
		ct = storage.ContentTypeDOCX
	}
	url, err := r.reports.UploadFile(req.Context(), up.Name, up.Data, ct)
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// convertReport returns the PDF rendering of an uploaded DOCX
func (r *Router) convertReport(w http.ResponseWriter, req *http.Request) {
	up, ok := readUpload(w, req, "file")
	if !ok {
		return
	}
	pdf, err := r.reports.Convert(req.Context(), up.Data)
	if err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Conversion failed: %v", err))
		return
	}
	writePDF(w, "report.pdf", pdf)
}

// approveUpload approves a completed inspection with the signed DOCX in "file".
// admin_name defaults to the caller's display name.
func (r *Router) approveUpload(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	up, ok := readUpload(w, req, "file")
	if !ok {
		return
	}

	in := report.ApproveInput{InspectionID: id, Docx: up.Data, AdminName: req.FormValue("admin_name")}
	if p := caller(req); p != nil {
		in.AdminUserID = &p.UserID
		if in.AdminName == "" {
			if _, name, _, err := r.users.Role(req.Context(), p.UserID); err == nil {
				in.AdminName = name
			}
		}
	}

	res, err := r.reports.Approve(req.Context(), in)
	if err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Report approved and uploaded",
		"docx_url": res.DocxURL,
		"pdf_url":  res.PdfURL,
	})
}

func (r *Router) revertApproval(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.reports.Revert(req.Context(), id); err != nil {
		respondFailure(w, err, "Inspection not found")
		return
	}
	respondMessage(w, http.StatusOK, "Report reverted to Completed status")
}

// summaryPDF prints the inspection overview. The QR code points at the approved
// PDF when there is one and at the report page otherwise.
func (r *Router) summaryPDF(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	list, err := r.store.ListInspections(req.Context(), store.InspectionFilter{IDs: []uint{id}, WithRelations: true})
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	if len(list) == 0 {
		respondError(w, http.StatusNotFound, "Inspection not found")
		return
	}
	insp := &list[0]

	photos, err := r.store.ListPhotos(req.Context(), id, "")
	if err != nil {
		respondFailure(w, err, "")
		return
	}

	target := r.deps.PublicBaseURL + "/report/" + strconv.FormatUint(uint64(id), 10)
	if insp.Report != nil && insp.Report.ApprovedPdfFile != nil && *insp.Report.ApprovedPdfFile != "" {
		target = *insp.Report.ApprovedPdfFile
	}

	pdf, err := printer.GenerateSummaryPDF(printer.SummaryData{Inspection: insp, Photos: photos, QRTarget: target})
	if err != nil {
		respondFailure(w, err, "")
		return
	}
	writePDF(w, fmt.Sprintf("inspection-%d-summary.pdf", id), pdf)
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
