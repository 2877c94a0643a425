package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/carelane/medcheck/internal/models"
)

// Page layout constants in millimeters (A4 portrait).
const (
	pdfMarginLeft  = 14.0
	pdfLineHeight  = 6.0
	pdfBreakAt     = 270.0
	pdfTableNumW   = 12.0
	pdfTableIssueW = 95.0
	pdfTableRegW   = 75.0
)

// WritePDF serializes result into a paginated printable document: a title
// block with the applicant details and generation date, a tabular rendering
// of critical issues, the enumerated recommendations, and the risk
// narrative. It does not modify result; a rendering failure only affects
// the PDF output, never the on-screen result.
func WritePDF(w io.Writer, result *models.AnalysisResult, applicant *models.ApplicantInfo, generated time.Time) error {
	if result == nil {
		return fmt.Errorf("no analysis result to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetCatalogSort(true)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	// Title
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 83, 156)
	pdf.CellFormat(0, 12, "Medical Report Compliance Analysis", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Title block
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	if applicant != nil {
		for _, line := range []string{
			"Organization: " + applicant.Organization,
			"Generated for: " + applicant.FullName,
			"Contact: " + applicant.Email,
			"Phone: " + applicant.Phone,
		} {
			pdf.CellFormat(0, pdfLineHeight, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.CellFormat(0, pdfLineHeight, "Generation Date: "+generated.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetDrawColor(0, 83, 156)
	pdf.Line(pdfMarginLeft, pdf.GetY(), pageWidth-pdfMarginLeft, pdf.GetY())
	pdf.Ln(6)

	// Status banner
	pdf.SetFont("Helvetica", "B", 14)
	r, g, b := statusColor(result.Status)
	pdf.SetTextColor(r, g, b)
	pdf.CellFormat(0, 8, "Status: "+result.Status.Label(), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Critical issues table
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Critical Issues", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	writeIssuesTable(pdf, result.CriticalIssues)
	pdf.Ln(6)

	// Recommendations
	breakPage(pdf)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Recommendations", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "", 11)
	if len(result.Recommendations) == 0 {
		pdf.CellFormat(0, pdfLineHeight, "No recommendations.", "", 1, "L", false, 0, "")
	}
	for i, rec := range result.Recommendations {
		breakPage(pdf)
		pdf.SetX(pdfMarginLeft + 4)
		pdf.MultiCell(pageWidth-2*pdfMarginLeft-4, pdfLineHeight, fmt.Sprintf("%d. %s", i+1, rec), "", "L", false)
	}
	pdf.Ln(6)

	// Risk narrative
	breakPage(pdf)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Risk Assessment", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(pageWidth-2*pdfMarginLeft, pdfLineHeight, result.Risk, "", "L", false)

	if pdf.Err() {
		return fmt.Errorf("render PDF: %w", pdf.Error())
	}
	return pdf.Output(w)
}

// writeIssuesTable draws the striped critical-issues table, breaking pages
// when vertical space runs out.
func writeIssuesTable(pdf *fpdf.Fpdf, issues []models.CriticalIssue) {
	if len(issues) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, pdfLineHeight, "No critical issues found.", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(0, 83, 156)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(pdfTableNumW, 7, "No.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfTableIssueW, 7, "Issue", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfTableRegW, 7, "Regulation", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, issue := range issues {
		issueLines := pdf.SplitText(issue.Issue, pdfTableIssueW-2)
		regLines := pdf.SplitText(issue.Regulation, pdfTableRegW-2)
		lines := len(issueLines)
		if len(regLines) > lines {
			lines = len(regLines)
		}
		rowH := float64(lines) * 5

		if pdf.GetY()+rowH > pdfBreakAt {
			pdf.AddPage()
		}
		if i%2 == 1 {
			pdf.SetFillColor(235, 240, 248)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		x, y := pdfMarginLeft, pdf.GetY()
		pdf.Rect(x, y, pdfTableNumW+pdfTableIssueW+pdfTableRegW, rowH, "FD")
		pdf.SetXY(x, y)
		pdf.CellFormat(pdfTableNumW, rowH, fmt.Sprintf("%d", i+1), "", 0, "C", false, 0, "")
		pdf.SetXY(x+pdfTableNumW, y)
		pdf.MultiCell(pdfTableIssueW, 5, issue.Issue, "", "L", false)
		pdf.SetXY(x+pdfTableNumW+pdfTableIssueW, y)
		pdf.MultiCell(pdfTableRegW, 5, issue.Regulation, "", "L", false)
		pdf.SetXY(x, y+rowH)
	}
}

// breakPage starts a new page when the cursor is past the break line.
func breakPage(pdf *fpdf.Fpdf) {
	if pdf.GetY() > pdfBreakAt {
		pdf.AddPage()
	}
}

func statusColor(status models.ComplianceStatus) (r, g, b int) {
	switch status {
	case models.StatusFullyCompliant:
		return 0, 128, 0
	case models.StatusMinorIssues:
		return 255, 153, 0
	case models.StatusMajorIssues:
		return 220, 0, 0
	default:
		return 0, 0, 0
	}
}
