package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted by the biometric service for every state change and every
// verification attempt. Template payloads never appear here.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Action     Action         `json:"action"`
	UserID     string         `json:"user_id"`
	Modality   string         `json:"modality"`
	TemplateID string         `json:"template_id,omitempty"`
	Quality    *float64       `json:"quality,omitempty"`
	Score      *float64       `json:"score,omitempty"`
	Decision   string         `json:"decision,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

type Action string

const (
	ActionTemplateEnrolled      Action = "template_enrolled"
	ActionTemplateReplaced      Action = "template_replaced"
	ActionVerificationAttempted Action = "verification_attempted"
	ActionTemplateDeactivated   Action = "template_deactivated"
)

// Verification decisions recorded on ActionVerificationAttempted.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)
