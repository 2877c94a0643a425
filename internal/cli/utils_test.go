package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/carelane/medcheck/internal/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Status: models.StatusMajorIssues,
		CriticalIssues: []models.CriticalIssue{
			{Issue: "Diagnosis code missing", Regulation: "NPHIES coding rules"},
			{Issue: "No physician signature", Regulation: "MOH documentation policy"},
		},
		Recommendations: []string{"Add the ICD-10 code", "Obtain a signature"},
		Risk:            "High likelihood of rejection.",
	}
}

func TestWriteAnalysisResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysisResult(&buf, sampleResult(), OutputJSON); err != nil {
		t.Fatalf("WriteAnalysisResult: %v", err)
	}
	var out models.AnalysisResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Status != models.StatusMajorIssues {
		t.Errorf("status: got %q", out.Status)
	}
	if len(out.CriticalIssues) != 2 {
		t.Errorf("issues: got %d", len(out.CriticalIssues))
	}
}

func TestWriteAnalysisResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysisResult(&buf, sampleResult(), OutputText); err != nil {
		t.Fatalf("WriteAnalysisResult: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Major Issues - High Risk of Rejection",
		"Diagnosis code missing",
		"NPHIES coding rules",
		"1. Add the ICD-10 code",
		"High likelihood of rejection.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAnalysisResult_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysisResult(&buf, sampleResult(), OutputMarkdown); err != nil {
		t.Fatalf("WriteAnalysisResult: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "# Compliance Analysis Report") {
		t.Errorf("markdown output missing title:\n%s", out)
	}
	if !strings.Contains(out, "No physician signature") {
		t.Errorf("markdown output missing issue:\n%s", out)
	}
}

func TestWriteAnalysisResult_NoIssues(t *testing.T) {
	result := &models.AnalysisResult{
		Status:          models.StatusFullyCompliant,
		CriticalIssues:  []models.CriticalIssue{},
		Recommendations: []string{},
		Risk:            "Low risk.",
	}
	var buf bytes.Buffer
	if err := WriteAnalysisResult(&buf, result, OutputText); err != nil {
		t.Fatalf("WriteAnalysisResult: %v", err)
	}
	if !strings.Contains(buf.String(), "No critical issues found.") {
		t.Errorf("text output: %s", buf.String())
	}
}
