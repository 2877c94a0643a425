// Package analysis calls a hosted language-model completion service to
// produce a structured compliance verdict for a medical report checked
// against an insurance policy.
package analysis

import (
	"context"
	"errors"

	"github.com/carelane/medcheck/internal/models"
)

// ErrNoAPIKey is returned when the upstream model API key is absent from
// the environment. This is a configuration error, reported per-request.
var ErrNoAPIKey = errors.New("OpenAI API key is not configured")

// Analyzer produces a compliance verdict for one report/policy text pair.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}
