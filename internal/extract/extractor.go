// Package extract converts uploaded documents into plain text for analysis.
package extract

import (
	"fmt"

	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/upload"
)

// Extractor extracts plain text from uploaded documents, dispatching on the
// detected document kind.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText converts doc into plain text. It never returns an error:
// documents with no extractable characters and documents that fail
// extraction both degrade to a sentinel string embedding the file name, so
// the analysis step can still run. One attempt per document, no retries.
func (e *Extractor) ExtractText(doc *models.UploadedDocument) string {
	text, err := e.extract(doc)
	if err != nil {
		return FailureSentinel(doc.Name, err)
	}
	if text == "" {
		return EmptySentinel(doc.Name)
	}
	return text
}

// extract dispatches to the kind-specific extraction path.
func (e *Extractor) extract(doc *models.UploadedDocument) (string, error) {
	switch upload.Kind(doc) {
	case models.KindPDF:
		return extractPDF(doc.Content)
	case models.KindWord:
		return extractDOCX(doc.Content)
	default:
		return extractPlain(doc.Content)
	}
}

// EmptySentinel is the placeholder text for a document from which zero
// characters could be extracted.
func EmptySentinel(name string) string {
	return fmt.Sprintf("[No readable text found in %s]", name)
}

// FailureSentinel is the placeholder text for a document whose extraction
// failed. The reason is embedded so the analysis output can mention it.
func FailureSentinel(name string, err error) string {
	return fmt.Sprintf("[Text extraction failed for %s: %v]", name, err)
}
