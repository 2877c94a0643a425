package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carelane/medcheck/internal/models"
)

// fakeUpstream returns a completion endpoint whose single choice carries
// content as the message body. calls counts requests received.
func fakeUpstream(t *testing.T, status int, content string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: got %q", got)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "upstream failure"}}`))
			return
		}
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
}

const validVerdict = `{
	"status": "minor_issues",
	"criticalIssues": [
		{"issue": "Missing consent form", "regulation": "MOH Circular 2023-114"}
	],
	"recommendations": ["Attach the signed consent form"],
	"risk": "The insurer may reject the claim."
}`

func testRequest() models.AnalysisRequest {
	return models.AnalysisRequest{ReportText: "report body", PolicyText: "policy body"}
}

func TestAnalyze_Success(t *testing.T) {
	var calls int
	srv := fakeUpstream(t, http.StatusOK, validVerdict, &calls)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	result, err := c.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Status != models.StatusMinorIssues {
		t.Errorf("status: got %q", result.Status)
	}
	if len(result.CriticalIssues) != 1 || result.CriticalIssues[0].Regulation != "MOH Circular 2023-114" {
		t.Errorf("criticalIssues: got %+v", result.CriticalIssues)
	}
	if calls != 1 {
		t.Errorf("upstream calls: got %d", calls)
	}
}

func TestAnalyze_EmptyFieldsRejectedBeforeUpstream(t *testing.T) {
	var calls int
	srv := fakeUpstream(t, http.StatusOK, validVerdict, &calls)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	for _, req := range []models.AnalysisRequest{
		{ReportText: "", PolicyText: "policy"},
		{ReportText: "report", PolicyText: ""},
		{},
	} {
		if _, err := c.Analyze(context.Background(), req); err == nil {
			t.Errorf("Analyze(%+v): expected error", req)
		}
	}
	if calls != 0 {
		t.Errorf("upstream must not be called on invalid input, got %d calls", calls)
	}
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	var calls int
	srv := fakeUpstream(t, http.StatusOK, validVerdict, &calls)
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Analyze(context.Background(), testRequest())
	if err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if calls != 0 {
		t.Errorf("upstream must not be called without a key, got %d calls", calls)
	}
}

func TestAnalyze_UpstreamError(t *testing.T) {
	var calls int
	srv := fakeUpstream(t, http.StatusBadGateway, "", &calls)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, err := c.Analyze(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for upstream 502")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry upstream status: %v", err)
	}
	if calls != 1 {
		t.Errorf("upstream calls: got %d, no retry expected", calls)
	}
}

func TestAnalyze_MalformedModelJSON(t *testing.T) {
	var calls int
	srv := fakeUpstream(t, http.StatusOK, "I am sorry, I cannot produce JSON.", &calls)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	if _, err := c.Analyze(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error for malformed model reply")
	}
}

func TestAnalyze_SchemaViolation(t *testing.T) {
	cases := []string{
		`{"status": "perfect", "criticalIssues": [], "recommendations": [], "risk": ""}`,
		`{"status": "minor_issues", "recommendations": [], "risk": ""}`,
		`{"status": "minor_issues", "criticalIssues": "none", "recommendations": [], "risk": ""}`,
		`{"status": "minor_issues", "criticalIssues": [{"issue": "x"}], "recommendations": [], "risk": ""}`,
	}
	for _, content := range cases {
		var calls int
		srv := fakeUpstream(t, http.StatusOK, content, &calls)
		c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
		if _, err := c.Analyze(context.Background(), testRequest()); err == nil {
			t.Errorf("expected schema validation error for %s", content)
		}
		srv.Close()
	}
}

func TestBuildAnalysisJSONSchema_AcceptsEmptyLists(t *testing.T) {
	doc := `{"status": "fully_compliant", "criticalIssues": [], "recommendations": [], "risk": "None."}`
	if err := ValidateAgainstSchema(BuildAnalysisJSONSchema(), []byte(doc)); err != nil {
		t.Errorf("empty lists should validate: %v", err)
	}
}
