package models

import (
	"time"

	"github.com/google/uuid"
)

// Template is a decoded fixed-length template.
type Template struct {
	Modality Modality
	Values   []float32
}

// TemplateID identifies a persisted template row. It survives re-enrollment.
type TemplateID uuid.UUID

// NewTemplateID generates a fresh random identifier.
func NewTemplateID() TemplateID { return TemplateID(uuid.New()) }

// ParseTemplateID parses the canonical UUID string form.
func ParseTemplateID(s string) (TemplateID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TemplateID(uuid.Nil), err
	}
	return TemplateID(id), nil
}

func (id TemplateID) String() string { return uuid.UUID(id).String() }
func (id TemplateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id TemplateID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *TemplateID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// BiometricTemplate is the persisted unit owned by the template store.
type BiometricTemplate struct {
	ID         TemplateID
	UserID     string
	Modality   Modality
	Ciphertext string
	Quality    float64
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}
