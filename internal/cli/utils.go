// Package cli provides CLI output utilities for medcheck.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/report"
)

// AnalysisOutputFormat is the format for analysis result output.
type AnalysisOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText AnalysisOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON AnalysisOutputFormat = "json"
	// OutputMarkdown is the full report as rendered for download.
	OutputMarkdown AnalysisOutputFormat = "markdown"
)

// WriteAnalysisResult writes an analysis result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnalysisResult(w io.Writer, result *models.AnalysisResult, format AnalysisOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case OutputMarkdown:
		return report.WriteMarkdown(w, result, nil, time.Now())
	default:
		writeAnalysisResultText(w, result)
		return nil
	}
}

func writeAnalysisResultText(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "\nStatus: %s\n\n", result.Status.Label())
	if len(result.CriticalIssues) == 0 {
		fmt.Fprintln(w, "No critical issues found.")
	} else {
		fmt.Fprintf(w, "Critical issues (%d):\n", len(result.CriticalIssues))
		for i, issue := range result.CriticalIssues {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "%d. %s\n", i+1, issue.Issue)
			fmt.Fprintf(w, "   Regulation: %s\n", issue.Regulation)
		}
	}
	fmt.Fprintln(w)
	if len(result.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(w, "%d. %s\n", i+1, rec)
		}
		fmt.Fprintln(w)
	}
	if result.Risk != "" {
		fmt.Fprintf(w, "Risk assessment: %s\n", result.Risk)
	}
}

// PrintAnalysisResult prints an analysis result to stdout in text format.
func PrintAnalysisResult(result *models.AnalysisResult) {
	_ = WriteAnalysisResult(os.Stdout, result, OutputText)
}
