package handler

import (
	"strings"

	"biogate/internal/biometric/models"
)

// uploadForm is the multipart form accepted by the enroll and verify routes.
type uploadForm struct {
	UserID   string `validate:"required,notblank,printascii,max=255"`
	Modality string `validate:"required,oneof=FINGERPRINT FACE"`
	File     []byte `validate:"-"`
}

func (f *uploadForm) Normalize() {
	f.UserID = strings.TrimSpace(f.UserID)
	f.Modality = strings.ToUpper(strings.TrimSpace(f.Modality))
}

// EnrollResponse mirrors the enrollment result with a human-readable message.
type EnrollResponse struct {
	Success    bool              `json:"success"`
	TemplateID models.TemplateID `json:"template_id"`
	Quality    float64           `json:"quality"`
	Replaced   bool              `json:"replaced"`
	Message    string            `json:"message"`
}

type DeactivateResponse struct {
	Deactivated bool   `json:"deactivated"`
	Modality    string `json:"modality"`
}

type StatusResponse struct {
	UserID    string                    `json:"user_id"`
	Templates []models.EnrollmentStatus `json:"templates"`
}

func enrolledMessage(m models.Modality) string {
	label := m.Label()
	return strings.ToUpper(label[:1]) + label[1:] + " enrolled successfully"
}
