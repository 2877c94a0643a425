// Package report renders a compliance analysis result for display and
// download. Rendering is a pure function of its inputs: it never mutates
// the result, and rendering the same result twice produces identical
// output.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/carelane/medcheck/internal/models"
)

// WriteMarkdown renders result as a markdown document: a status banner, the
// critical issues table, the ordered recommendations, and the risk
// narrative. applicant may be nil when the report is rendered without a
// submission context.
func WriteMarkdown(w io.Writer, result *models.AnalysisResult, applicant *models.ApplicantInfo, generated time.Time) error {
	if result == nil {
		return fmt.Errorf("no analysis result to render")
	}
	md := markdown.NewMarkdown(w)

	md.H1("Compliance Analysis Report")
	md.PlainText("")

	if applicant != nil {
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Organization", applicant.Organization},
				{"Generated for", applicant.FullName},
				{"Contact", applicant.Email},
				{"Phone", applicant.Phone},
				{"Generation Date", generated.Format("2006-01-02")},
			},
		})
		md.PlainText("")
	}

	writeStatusBanner(md, result.Status)
	md.PlainText("")

	md.H2("Critical Issues")
	md.PlainText("")
	if len(result.CriticalIssues) == 0 {
		md.PlainText("No critical issues found.")
	} else {
		rows := make([][]string, 0, len(result.CriticalIssues))
		for i, issue := range result.CriticalIssues {
			rows = append(rows, []string{strconv.Itoa(i + 1), issue.Issue, issue.Regulation})
		}
		md.Table(markdown.TableSet{
			Header: []string{"No.", "Issue", "Regulation"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Recommendations")
	md.PlainText("")
	if len(result.Recommendations) == 0 {
		md.PlainText("No recommendations.")
	} else {
		md.OrderedList(result.Recommendations...)
	}
	md.PlainText("")

	md.H2("Risk Assessment")
	md.PlainText("")
	md.PlainText(result.Risk)

	return md.Build()
}

// writeStatusBanner renders the status as a visually distinct alert per
// enumerated value.
func writeStatusBanner(md *markdown.Markdown, status models.ComplianceStatus) {
	switch status {
	case models.StatusFullyCompliant:
		md.Tip(status.Label())
	case models.StatusMinorIssues:
		md.Warningf("%s", status.Label())
	case models.StatusMajorIssues:
		md.Cautionf("%s", status.Label())
	default:
		md.PlainText(status.Label())
	}
}
