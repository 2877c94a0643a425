// Package e2e exercises the full submission pipeline against real
// components, with only the model API replaced by a local fake.
package e2e

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/carelane/medcheck/internal/models"
	"github.com/carelane/medcheck/internal/upload"
)

// docxBytes builds a minimal OOXML word document containing the given
// paragraphs.
func docxBytes(paragraphs ...string) []byte {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		panic(err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func docxDocument(name string, paragraphs ...string) *models.UploadedDocument {
	content := docxBytes(paragraphs...)
	return &models.UploadedDocument{
		Name:        name,
		ContentType: upload.MediaTypeWord,
		Size:        int64(len(content)),
		Content:     content,
	}
}

// ReportDocument is a small but realistic medical report upload.
func ReportDocument() *models.UploadedDocument {
	return docxDocument("report.docx",
		"Patient: Ahmed Al-Qahtani, MRN 448812.",
		"Diagnosis: Type 2 diabetes mellitus, ICD-10 E11.9.",
		"Requested service: continuous glucose monitoring device.",
		"Treating physician: Dr. Nora Al-Subaie, license 77120.",
	)
}

// PolicyDocument is a small but realistic insurance policy upload.
func PolicyDocument() *models.UploadedDocument {
	return docxDocument("policy.docx",
		"Policy 99-HLTH-2026 covers durable medical equipment.",
		"Prior authorization is required for devices above SAR 2000.",
		"Claims must include the treating physician license number.",
	)
}

// Applicant is a valid applicant record for submissions.
func Applicant() models.ApplicantInfo {
	return models.ApplicantInfo{
		FullName:     "Huda Al-Mutairi",
		Email:        "huda@clinic.example",
		Organization: "Jeddah Care Center",
		Phone:        "+966512345678",
	}
}
