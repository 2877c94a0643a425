package models

import "fmt"

// ComplianceStatus is the closed set of verdicts the analysis can return.
type ComplianceStatus string

const (
	// StatusFullyCompliant means the report is ready for submission.
	StatusFullyCompliant ComplianceStatus = "fully_compliant"
	// StatusMinorIssues means the report needs fixes before submission.
	StatusMinorIssues ComplianceStatus = "minor_issues"
	// StatusMajorIssues means the report has a high risk of rejection.
	StatusMajorIssues ComplianceStatus = "major_issues"
)

// Label returns the human-readable form of the status.
func (s ComplianceStatus) Label() string {
	switch s {
	case StatusFullyCompliant:
		return "Fully Compliant - Ready for Submission"
	case StatusMinorIssues:
		return "Minor Issues - Needs Fixes Before Submission"
	case StatusMajorIssues:
		return "Major Issues - High Risk of Rejection"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the three enumerated statuses.
func (s ComplianceStatus) Valid() bool {
	switch s {
	case StatusFullyCompliant, StatusMinorIssues, StatusMajorIssues:
		return true
	}
	return false
}

// AnalysisRequest pairs the extracted report and policy texts for one call
// to the analysis gateway. Both fields are required and non-empty.
type AnalysisRequest struct {
	ReportText string `json:"reportText"`
	PolicyText string `json:"policyText"`
}

// Validate checks that both text fields are present.
func (r *AnalysisRequest) Validate() error {
	if r.ReportText == "" || r.PolicyText == "" {
		return fmt.Errorf("both report text and policy text are required")
	}
	return nil
}

// CriticalIssue is one compliance finding with its regulatory citation.
type CriticalIssue struct {
	Issue      string `json:"issue"`
	Regulation string `json:"regulation"`
}

// AnalysisResult is the structured compliance verdict returned by the model.
// CriticalIssues and Recommendations may be empty but are never nil after a
// successful Validate.
type AnalysisResult struct {
	Status          ComplianceStatus `json:"status"`
	CriticalIssues  []CriticalIssue  `json:"criticalIssues"`
	Recommendations []string         `json:"recommendations"`
	Risk            string           `json:"risk"`
}

// Validate checks the shape invariants: status is one of the three
// enumerated values and the list fields are present. Nil lists are
// normalized to empty so callers can range over them unconditionally.
func (r *AnalysisResult) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("unknown compliance status %q", r.Status)
	}
	if r.CriticalIssues == nil {
		r.CriticalIssues = []CriticalIssue{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	for i, issue := range r.CriticalIssues {
		if issue.Issue == "" {
			return fmt.Errorf("critical issue %d has an empty description", i)
		}
	}
	return nil
}
