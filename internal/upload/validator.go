// Package upload validates uploaded documents before the pipeline runs.
package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/carelane/medcheck/internal/models"
)

// MediaTypePDF is the declared content type accepted for PDF uploads.
const MediaTypePDF = "application/pdf"

// MediaTypeWord is the declared content type accepted for word-processor uploads.
const MediaTypeWord = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Validator checks uploaded files against the accepted document formats.
type Validator struct {
	maxSizeBytes int64
}

// NewValidator returns a Validator. maxSizeBytes <= 0 disables the size check.
func NewValidator(maxSizeBytes int64) *Validator {
	return &Validator{maxSizeBytes: maxSizeBytes}
}

// Validate accepts doc for the given role only if its declared media type
// (or, when the type is generic, its file extension) is PDF or DOCX and it
// fits the size limit. The returned error is user-facing and names the
// expected formats. Validate has no side effects.
func (v *Validator) Validate(doc *models.UploadedDocument, role models.DocumentRole) error {
	if doc == nil || len(doc.Content) == 0 {
		return fmt.Errorf("the %s document is missing", role)
	}
	if v.maxSizeBytes > 0 && doc.Size > v.maxSizeBytes {
		return fmt.Errorf("the %s document exceeds the maximum size of %d MB", role, v.maxSizeBytes/(1024*1024))
	}
	if Kind(doc) == models.KindUnknown {
		return fmt.Errorf("the %s document must be a PDF or Word (.docx) file, got %q", role, doc.ContentType)
	}
	return nil
}

// Kind returns the detected document kind for extraction dispatch.
// The declared media type wins; when it is absent or generic
// (e.g. application/octet-stream from a browser), the extension decides.
func Kind(doc *models.UploadedDocument) models.DocumentKind {
	mt := doc.ContentType
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	switch strings.ToLower(mt) {
	case MediaTypePDF:
		return models.KindPDF
	case MediaTypeWord:
		return models.KindWord
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return models.KindPDF
	case ".docx":
		return models.KindWord
	}
	return models.KindUnknown
}
