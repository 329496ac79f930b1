package models

import "time"

// EnrollResult is returned to callers after a successful enrollment.
type EnrollResult struct {
	TemplateID TemplateID `json:"template_id"`
	Quality    float64    `json:"quality"`
	// Replaced reports whether an existing row for the pair was overwritten.
	Replaced bool `json:"replaced"`
}

// VerifyResult is the accept/reject decision for a candidate sample.
type VerifyResult struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Quality    float64 `json:"quality"`
}

// EnrollmentStatus describes one stored template without its payload.
type EnrollmentStatus struct {
	TemplateID TemplateID `json:"template_id"`
	Modality   Modality   `json:"modality"`
	Quality    float64    `json:"quality"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// StatusFromTemplate strips the ciphertext from a stored template.
func StatusFromTemplate(t BiometricTemplate) EnrollmentStatus {
	return EnrollmentStatus{
		TemplateID: t.ID,
		Modality:   t.Modality,
		Quality:    t.Quality,
		Active:     t.Active,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		LastUsedAt: t.LastUsedAt,
	}
}
