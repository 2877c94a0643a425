// Package submission sequences the demo pipeline: validate the applicant
// and uploads, persist the applicant record, extract text from both
// documents, and request a compliance analysis.
package submission

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/carelane/medcheck/internal/analysis"
	"github.com/carelane/medcheck/internal/analytics"
	"github.com/carelane/medcheck/internal/extract"
	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/storage"
	"github.com/carelane/medcheck/internal/upload"
)

// ErrInFlight is returned when Run is called while a submission is already
// being processed by this orchestrator.
var ErrInFlight = errors.New("a submission is already in progress")

// Generic user-facing failure messages. Internal detail stays in the logs.
const (
	msgPersistFailed  = "Failed to submit your information. Please try again."
	msgAnalysisFailed = "Analysis failed. Please try again."
)

// Submission is one complete demo request: applicant details plus the two
// uploaded documents. All of it is transient; only the applicant record is
// persisted.
type Submission struct {
	Applicant models.ApplicantInfo
	Report    *models.UploadedDocument
	Policy    *models.UploadedDocument
}

// Result is the outcome of a successful submission.
type Result struct {
	SubmissionID string                 `json:"submissionId"`
	Analysis     *models.AnalysisResult `json:"analysis"`
}

// Orchestrator drives one submission at a time through the pipeline states.
type Orchestrator struct {
	validator *upload.Validator
	store     storage.Storage
	extractor *extract.Extractor
	analyzer  analysis.Analyzer
	sink      analytics.Sink
	logger    *zap.Logger

	onTransition func(State)

	mu       sync.Mutex
	state    State
	inFlight bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for internal diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSink sets the analytics event sink.
func WithSink(sink analytics.Sink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithTransitionHook registers a callback invoked on every state change.
func WithTransitionHook(fn func(State)) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// NewOrchestrator wires the pipeline dependencies. The analytics sink
// defaults to a no-op and the logger to zap.NewNop().
func NewOrchestrator(validator *upload.Validator, store storage.Storage, extractor *extract.Extractor, analyzer analysis.Analyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator: validator,
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		sink:      analytics.NopSink{},
		logger:    zap.NewNop(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reset returns the orchestrator to Idle. Transient submission data is
// owned by the caller and discarded with it; an abandoned in-flight
// analysis call may still complete upstream with no observable effect.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
	o.notify(StateIdle)
}

// Run executes the full pipeline for sub. On failure it returns a
// *Error whose message is safe to show the user; the internal cause is
// logged here. Only one submission may run at a time.
func (o *Orchestrator) Run(ctx context.Context, sub *Submission) (*Result, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrInFlight
	}
	o.inFlight = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	o.transition(StateValidating)
	o.sink.Track(analytics.EventSubmissionStarted, map[string]any{
		"organization": sub.Applicant.Organization,
	})
	if err := o.validate(sub); err != nil {
		return nil, o.fail(err)
	}
	o.sink.Track(analytics.EventFilesAccepted, map[string]any{
		"report_name": sub.Report.Name,
		"report_size": sub.Report.Size,
		"policy_name": sub.Policy.Name,
		"policy_size": sub.Policy.Size,
	})

	o.transition(StatePersisting)
	if err := o.store.CreateApplication(ctx, &sub.Applicant); err != nil {
		return nil, o.fail(failure(StatePersisting, msgPersistFailed, err))
	}
	o.sink.Track(analytics.EventApplicantSaved, map[string]any{"id": sub.Applicant.ID})

	o.transition(StateExtracting)
	reportText, policyText := o.extractBoth(ctx, sub)

	o.transition(StateAnalyzing)
	result, err := o.analyzer.Analyze(ctx, models.AnalysisRequest{
		ReportText: reportText,
		PolicyText: policyText,
	})
	if err != nil {
		o.sink.Track(analytics.EventAnalysisFailed, nil)
		return nil, o.fail(failure(StateAnalyzing, msgAnalysisFailed, err))
	}
	if err := result.Validate(); err != nil {
		o.sink.Track(analytics.EventAnalysisFailed, nil)
		return nil, o.fail(failure(StateAnalyzing, msgAnalysisFailed, err))
	}

	o.transition(StateResultReady)
	o.sink.Track(analytics.EventAnalysisComplete, map[string]any{
		"status":          string(result.Status),
		"critical_issues": len(result.CriticalIssues),
	})
	return &Result{SubmissionID: sub.Applicant.ID, Analysis: result}, nil
}

// validate checks the applicant fields and both uploads. No network calls
// or writes happen before this passes.
func (o *Orchestrator) validate(sub *Submission) *Error {
	if err := sub.Applicant.Validate(); err != nil {
		return failure(StateValidating, err.Error(), err)
	}
	if err := o.validator.Validate(sub.Report, models.RoleReport); err != nil {
		return failure(StateValidating, err.Error(), err)
	}
	if err := o.validator.Validate(sub.Policy, models.RolePolicy); err != nil {
		return failure(StateValidating, err.Error(), err)
	}
	return nil
}

// extractBoth runs both extractions concurrently and joins before
// returning. Extraction never fails the flow: each document degrades to a
// sentinel string at worst.
func (o *Orchestrator) extractBoth(ctx context.Context, sub *Submission) (reportText, policyText string) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		reportText = o.extractor.ExtractText(sub.Report)
		return nil
	})
	g.Go(func() error {
		policyText = o.extractor.ExtractText(sub.Policy)
		return nil
	})
	_ = g.Wait()
	return reportText, policyText
}

func (o *Orchestrator) fail(err *Error) error {
	o.transition(StateFailed)
	o.logger.Error("submission failed",
		zap.String("stage", string(err.Stage)),
		zap.Error(err.Unwrap()),
	)
	return err
}

func (o *Orchestrator) transition(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.notify(s)
}

func (o *Orchestrator) notify(s State) {
	if o.onTransition != nil {
		o.onTransition(s)
	}
}
