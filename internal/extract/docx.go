package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXML is the main document body inside a .docx package.
const docxDocumentXML = "word/document.xml"

// wtTag matches <w:t>text</w:t> including variants with attributes such as
// <w:t xml:space="preserve">. Matching text nodes directly keeps content
// regardless of paragraph or run attributes.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paragraphEnd marks paragraph boundaries so extracted text keeps line
// structure instead of collapsing into one run.
var paragraphEnd = regexp.MustCompile(`</w:p>`)

// extractDOCX extracts text from .docx bytes. A DOCX is a ZIP containing
// OOXML; the raw text lives in <w:t> nodes inside word/document.xml.
// Returns "" when the document has no text nodes.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a DOCX package: %w", err)
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXML {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("%s not found", docxDocumentXML)
	}

	var b strings.Builder
	for _, para := range paragraphEnd.Split(string(docXML), -1) {
		nodes := wtTag.FindAllStringSubmatch(para, -1)
		if len(nodes) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		for i, n := range nodes {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(n[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
