package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/carelane/medcheck/internal/analysis"
	"github.com/carelane/medcheck/internal/analytics"
	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/report"
	"github.com/carelane/medcheck/internal/submission"
)

// maxMultipartMemory caps how much of a multipart body is held in memory
// while parsing. Per-file size limits are enforced by the upload validator.
const maxMultipartMemory = 32 << 20

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("analyze request",
		zap.Int("report_chars", len(req.ReportText)),
		zap.Int("policy_chars", len(req.PolicyText)))
	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		if errors.Is(err, analysis.ErrNoAPIKey) {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, "Analysis failed. Please try again.")
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type reportRequest struct {
	Analysis  *models.AnalysisResult `json:"analysis"`
	Applicant models.ApplicantInfo   `json:"applicant"`
}

func (s *Server) handleAnalysisPDF(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Analysis == nil {
		s.respondError(w, http.StatusBadRequest, "analysis result is required")
		return
	}
	if err := req.Analysis.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	filename := fmt.Sprintf("compliance-report-%s.pdf", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WritePDF(w, req.Analysis, &req.Applicant, now); err != nil {
		s.logger.Error("pdf rendering failed", zap.Error(err))
		return
	}
	s.sink.Track(analytics.EventReportDownloaded, map[string]any{
		"status": string(req.Analysis.Status),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	sub := &submission.Submission{
		Applicant: models.ApplicantInfo{
			FullName:     r.FormValue("full_name"),
			Email:        r.FormValue("email"),
			Organization: r.FormValue("organization"),
			Phone:        r.FormValue("phone"),
		},
		Report: s.formFile(r, "report"),
		Policy: s.formFile(r, "policy"),
	}

	orch := submission.NewOrchestrator(s.validator, s.storage, s.extractor, s.analyzer,
		submission.WithLogger(s.logger), submission.WithSink(s.sink))
	result, err := orch.Run(r.Context(), sub)
	if err != nil {
		var subErr *submission.Error
		if errors.As(err, &subErr) && subErr.Stage == submission.StateValidating {
			s.respondError(w, http.StatusBadRequest, subErr.Message)
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// formFile reads one uploaded file part into memory. A missing part
// returns nil; the pipeline's validation stage reports it to the user.
func (s *Server) formFile(r *http.Request, field string) *models.UploadedDocument {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Warn("reading upload failed", zap.String("field", field), zap.Error(err))
		return nil
	}
	return &models.UploadedDocument{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(content)),
		Content:     content,
	}
}

func (s *Server) handleExportApplications(w http.ResponseWriter, r *http.Request) {
	data, err := s.exporter.ApplicationsXLSX(r.Context())
	if err != nil {
		s.logger.Error("applications export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="applications.xlsx"`)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
