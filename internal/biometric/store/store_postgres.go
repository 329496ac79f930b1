package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	"biogate/pkg/requestcontext"
)

// PostgresStore persists templates in the biometric_templates table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	return s.db
}

const templateColumns = `template_id, user_id, modality, ciphertext, quality, active, created_at, updated_at, last_used_at`

// Upsert inserts or replaces the template for (userID, modality). A replaced
// row keeps its template_id and is reactivated.
func (s *PostgresStore) Upsert(ctx context.Context, userID string, modality models.Modality, ciphertext string, quality float64) (models.TemplateID, error) {
	query := `
		INSERT INTO biometric_templates (template_id, user_id, modality, ciphertext, quality, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (user_id, modality) DO UPDATE
		SET ciphertext = EXCLUDED.ciphertext,
		    quality = EXCLUDED.quality,
		    active = TRUE,
		    updated_at = EXCLUDED.updated_at
		RETURNING template_id
	`
	var stored uuid.UUID
	err := s.execer().QueryRowContext(ctx, query,
		uuid.UUID(models.NewTemplateID()),
		userID,
		string(modality),
		ciphertext,
		RoundQuality(quality),
		requestcontext.Now(ctx),
	).Scan(&stored)
	if err != nil {
		return models.TemplateID{}, unavailable("upsert template", err)
	}
	return models.TemplateID(stored), nil
}

func (s *PostgresStore) Fetch(ctx context.Context, userID string, modality models.Modality) (mo.Option[models.BiometricTemplate], error) {
	query := `SELECT ` + templateColumns + `
		FROM biometric_templates
		WHERE user_id = $1 AND modality = $2 AND active = TRUE
	`
	t, err := scanTemplate(s.execer().QueryRowContext(ctx, query, userID, string(modality)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[models.BiometricTemplate](), nil
		}
		return mo.None[models.BiometricTemplate](), unavailable("fetch template", err)
	}
	return mo.Some(*t), nil
}

// Deactivate reports whether a row exists for the pair; the row is kept.
func (s *PostgresStore) Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error) {
	query := `
		UPDATE biometric_templates
		SET active = FALSE, updated_at = $3
		WHERE user_id = $1 AND modality = $2
	`
	res, err := s.execer().ExecContext(ctx, query, userID, string(modality), requestcontext.Now(ctx))
	if err != nil {
		return false, unavailable("deactivate template", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("deactivate template rows", err)
	}
	return rows > 0, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]models.BiometricTemplate, error) {
	query := `SELECT ` + templateColumns + `
		FROM biometric_templates
		WHERE user_id = $1
		ORDER BY modality
	`
	rows, err := s.execer().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, unavailable("list templates", err)
	}
	defer rows.Close()

	var out []models.BiometricTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, unavailable("scan template", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate templates", err)
	}
	return out, nil
}

func (s *PostgresStore) TouchLastUsed(ctx context.Context, id models.TemplateID, at time.Time) error {
	res, err := s.execer().ExecContext(ctx,
		`UPDATE biometric_templates SET last_used_at = $2 WHERE template_id = $1`,
		uuid.UUID(id), at,
	)
	if err != nil {
		return unavailable("touch template", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return unavailable("touch template rows", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type templateRow interface {
	Scan(dest ...any) error
}

func scanTemplate(row templateRow) (*models.BiometricTemplate, error) {
	var t models.BiometricTemplate
	var id uuid.UUID
	var modality string
	var lastUsed sql.NullTime
	if err := row.Scan(&id, &t.UserID, &modality, &t.Ciphertext, &t.Quality, &t.Active, &t.CreatedAt, &t.UpdatedAt, &lastUsed); err != nil {
		return nil, err
	}
	t.ID = models.TemplateID(id)
	t.Modality = models.Modality(modality)
	if lastUsed.Valid {
		t.LastUsedAt = &lastUsed.Time
	}
	return &t, nil
}

// Health pings the database.
func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres template store: %w", err)
	}
	return nil
}
