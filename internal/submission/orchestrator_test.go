package submission

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carelane/medcheck/internal/extract"
	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/upload"
)

type fakeStorage struct {
	mu      sync.Mutex
	inserts int
	err     error
}

func (f *fakeStorage) CreateApplication(_ context.Context, info *models.ApplicantInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserts++
	info.ID = "app-1"
	return nil
}

func (f *fakeStorage) ListApplications(context.Context, int, int) ([]*models.ApplicantInfo, error) {
	return nil, nil
}
func (f *fakeStorage) CountApplications(context.Context) (int64, error) { return 0, nil }
func (f *fakeStorage) Close() error                                     { return nil }

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	lastReq models.AnalysisRequest
	result  *models.AnalysisResult
	err     error
	block   chan struct{} // when non-nil, Analyze waits for a receive
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func goodResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Status: models.StatusMinorIssues,
		CriticalIssues: []models.CriticalIssue{
			{Issue: "Missing consent form", Regulation: "MOH Circular 2023-114"},
		},
		Recommendations: []string{"Attach the signed consent form"},
		Risk:            "The insurer may reject the claim.",
	}
}

func docxDocument(t *testing.T, name, text string) *models.UploadedDocument {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return &models.UploadedDocument{
		Name:        name,
		ContentType: upload.MediaTypeWord,
		Size:        int64(buf.Len()),
		Content:     buf.Bytes(),
	}
}

func validSubmission(t *testing.T) *Submission {
	t.Helper()
	return &Submission{
		Applicant: models.ApplicantInfo{
			FullName:     "Dr. Sara Al-Qahtani",
			Email:        "sara@hospital.sa",
			Organization: "Riyadh General Hospital",
			Phone:        "+966500000000",
		},
		Report: docxDocument(t, "report.docx", "Discharge summary"),
		Policy: docxDocument(t, "policy.docx", "Coverage terms"),
	}
}

func newOrchestrator(store *fakeStorage, az *fakeAnalyzer, states *[]State) *Orchestrator {
	return NewOrchestrator(
		upload.NewValidator(0), store, extract.NewExtractor(), az,
		WithTransitionHook(func(s State) { *states = append(*states, s) }),
	)
}

func TestRun_Success(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	result, err := o.Run(context.Background(), validSubmission(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SubmissionID != "app-1" {
		t.Errorf("submission ID: got %q", result.SubmissionID)
	}
	if result.Analysis.Status != models.StatusMinorIssues {
		t.Errorf("status: got %q", result.Analysis.Status)
	}

	want := []State{StateValidating, StatePersisting, StateExtracting, StateAnalyzing, StateResultReady}
	if len(states) != len(want) {
		t.Fatalf("states: got %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d: got %q, want %q", i, states[i], want[i])
		}
	}

	if az.lastReq.ReportText != "Discharge summary" {
		t.Errorf("report text: got %q", az.lastReq.ReportText)
	}
	if az.lastReq.PolicyText != "Coverage terms" {
		t.Errorf("policy text: got %q", az.lastReq.PolicyText)
	}
}

func TestRun_MissingPolicyFailsBeforePersistence(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	sub := validSubmission(t)
	sub.Policy = nil
	_, err := o.Run(context.Background(), sub)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var serr *Error
	if !errors.As(err, &serr) || serr.Stage != StateValidating {
		t.Errorf("expected validating-stage error, got %v", err)
	}
	if store.inserts != 0 {
		t.Error("no row should be created on validation failure")
	}
	if az.calls != 0 {
		t.Error("no analysis call should be made on validation failure")
	}
	if o.State() != StateFailed {
		t.Errorf("state: got %q", o.State())
	}
}

func TestRun_RejectedMediaType(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	sub := validSubmission(t)
	sub.Report = &models.UploadedDocument{
		Name: "notes.txt", ContentType: "text/plain", Size: 4, Content: []byte("text"),
	}
	_, err := o.Run(context.Background(), sub)
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "report") {
		t.Errorf("error should name the role: %v", err)
	}
	if store.inserts != 0 || az.calls != 0 {
		t.Error("no persistence or analysis on rejected upload")
	}
}

func TestRun_PersistenceFailure(t *testing.T) {
	store := &fakeStorage{err: errors.New("disk full")}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	_, err := o.Run(context.Background(), validSubmission(t))
	if err == nil {
		t.Fatal("expected persistence failure")
	}
	if err.Error() != msgPersistFailed {
		t.Errorf("user message: got %q", err.Error())
	}
	if strings.Contains(err.Error(), "disk full") {
		t.Error("internal detail must not leak into the user message")
	}
	if az.calls != 0 {
		t.Error("no analysis call after persistence failure")
	}
}

func TestRun_ExtractionDegradesToSentinel(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	sub := validSubmission(t)
	sub.Report = &models.UploadedDocument{
		Name:        "scan.pdf",
		ContentType: upload.MediaTypePDF,
		Size:        5,
		Content:     []byte("%PDF-"), // unreadable
	}
	if _, err := o.Run(context.Background(), sub); err != nil {
		t.Fatalf("extraction failure must not fail the flow: %v", err)
	}
	if az.calls != 1 {
		t.Fatal("analysis should still run")
	}
	if !strings.Contains(az.lastReq.ReportText, "scan.pdf") {
		t.Errorf("sentinel should carry the file name: %q", az.lastReq.ReportText)
	}
}

func TestRun_AnalysisFailureKeepsApplicantRow(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{err: errors.New("upstream timeout")}
	var states []State
	o := newOrchestrator(store, az, &states)

	_, err := o.Run(context.Background(), validSubmission(t))
	if err == nil {
		t.Fatal("expected analysis failure")
	}
	if err.Error() != msgAnalysisFailed {
		t.Errorf("user message: got %q", err.Error())
	}
	// No rollback: the row written during Persisting remains.
	if store.inserts != 1 {
		t.Errorf("applicant row should remain, inserts = %d", store.inserts)
	}
}

func TestRun_MisshapenResultFails(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: &models.AnalysisResult{Status: "almost_fine"}}
	var states []State
	o := newOrchestrator(store, az, &states)

	if _, err := o.Run(context.Background(), validSubmission(t)); err == nil {
		t.Fatal("misshapen result must fail the submission")
	}
	if o.State() != StateFailed {
		t.Errorf("state: got %q", o.State())
	}
}

func TestRun_OneInFlight(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult(), block: make(chan struct{})}
	var states []State
	o := newOrchestrator(store, az, &states)

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), validSubmission(t))
		done <- err
	}()

	// Wait for the first run to reach the analyzer.
	for {
		az.mu.Lock()
		calls := az.calls
		az.mu.Unlock()
		if calls > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := o.Run(context.Background(), validSubmission(t)); err != ErrInFlight {
		t.Errorf("expected ErrInFlight, got %v", err)
	}

	close(az.block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestReset(t *testing.T) {
	store := &fakeStorage{}
	az := &fakeAnalyzer{result: goodResult()}
	var states []State
	o := newOrchestrator(store, az, &states)

	if _, err := o.Run(context.Background(), validSubmission(t)); err != nil {
		t.Fatal(err)
	}
	if o.State() != StateResultReady {
		t.Fatalf("state: got %q", o.State())
	}
	o.Reset()
	if o.State() != StateIdle {
		t.Errorf("state after reset: got %q", o.State())
	}
}
