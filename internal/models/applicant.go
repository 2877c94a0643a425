// Package models defines core data structures for submissions, uploaded
// documents, and compliance analysis results.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicantInfo holds the contact details submitted alongside a demo request.
// Rows are insert-only; a resubmission after a failure creates a new row.
type ApplicantInfo struct {
	ID           string    `json:"id,omitempty" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	Organization string    `json:"organization" db:"organization"`
	Phone        string    `json:"phone" db:"phone"`
	CreatedAt    time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// Validate checks that all required contact fields are present.
func (a *ApplicantInfo) Validate() error {
	var missing []string
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, "full name")
	}
	if strings.TrimSpace(a.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(a.Organization) == "" {
		missing = append(missing, "organization")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("invalid email address: %s", a.Email)
	}
	return nil
}
