package models

// DocumentRole identifies which slot of a submission a file fills.
type DocumentRole string

const (
	// RoleReport is the medical report upload.
	RoleReport DocumentRole = "report"
	// RolePolicy is the insurance policy upload.
	RolePolicy DocumentRole = "policy"
)

// DocumentKind is the detected format of an uploaded document, used to pick
// an extraction strategy.
type DocumentKind string

const (
	// KindPDF is a PDF document.
	KindPDF DocumentKind = "pdf"
	// KindWord is an OOXML word-processor document (.docx).
	KindWord DocumentKind = "word"
	// KindUnknown is any other format; extraction falls back to reading
	// raw bytes as text.
	KindUnknown DocumentKind = "unknown"
)

// UploadedDocument is a file selected by the user for one submission.
// It lives only for the duration of that submission and is never persisted.
type UploadedDocument struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}
