package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists events in biometric_audit_events.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts event. Re-appending the same event ID is a no-op.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO biometric_audit_events (
			id, action, user_id, modality, template_id,
			quality, score, decision, request_id, details, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	var templateID *uuid.UUID
	if event.TemplateID != "" {
		parsed, err := uuid.Parse(event.TemplateID)
		if err != nil {
			return fmt.Errorf("audit template id: %w", err)
		}
		templateID = &parsed
	}
	var details []byte
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = b
	}

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		event.UserID,
		event.Modality,
		templateID,
		event.Quality,
		event.Score,
		nullString(event.Decision),
		nullString(event.RequestID),
		details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's events, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	query := `
		SELECT id, action, user_id, modality, template_id,
		       quality, score, decision, request_id, details, created_at
		FROM biometric_audit_events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event      Event
			action     string
			templateID *uuid.UUID
			quality    sql.NullFloat64
			score      sql.NullFloat64
			decision   sql.NullString
			requestID  sql.NullString
			details    []byte
		)
		if err := rows.Scan(&event.ID, &action, &event.UserID, &event.Modality, &templateID,
			&quality, &score, &decision, &requestID, &details, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		if templateID != nil {
			event.TemplateID = templateID.String()
		}
		if quality.Valid {
			event.Quality = &quality.Float64
		}
		if score.Valid {
			event.Score = &score.Float64
		}
		event.Decision = decision.String
		event.RequestID = requestID.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
