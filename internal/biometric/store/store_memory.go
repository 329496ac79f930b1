package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/mo"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	"biogate/pkg/requestcontext"
)

// InMemoryStore keeps templates in process memory. Used by tests and by
// STORE_BACKEND=memory deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[key]*models.BiometricTemplate
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{templates: make(map[key]*models.BiometricTemplate)}
}

func (s *InMemoryStore) Upsert(ctx context.Context, userID string, modality models.Modality, ciphertext string, quality float64) (models.TemplateID, error) {
	now := requestcontext.Now(ctx)
	k := key{userID: userID, modality: string(modality)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.templates[k]; ok {
		existing.Ciphertext = ciphertext
		existing.Quality = RoundQuality(quality)
		existing.Active = true
		existing.UpdatedAt = now
		return existing.ID, nil
	}
	t := &models.BiometricTemplate{
		ID:         models.NewTemplateID(),
		UserID:     userID,
		Modality:   modality,
		Ciphertext: ciphertext,
		Quality:    RoundQuality(quality),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.templates[k] = t
	return t.ID, nil
}

func (s *InMemoryStore) Fetch(_ context.Context, userID string, modality models.Modality) (mo.Option[models.BiometricTemplate], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[key{userID: userID, modality: string(modality)}]
	if !ok || !t.Active {
		return mo.None[models.BiometricTemplate](), nil
	}
	return mo.Some(copyTemplate(t)), nil
}

func (s *InMemoryStore) Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[key{userID: userID, modality: string(modality)}]
	if !ok {
		return false, nil
	}
	t.Active = false
	t.UpdatedAt = requestcontext.Now(ctx)
	return true, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]models.BiometricTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.BiometricTemplate
	for k, t := range s.templates {
		if k.userID == userID {
			out = append(out, copyTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modality < out[j].Modality })
	return out, nil
}

func (s *InMemoryStore) TouchLastUsed(_ context.Context, id models.TemplateID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.ID == id {
			t.LastUsedAt = &at
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func copyTemplate(t *models.BiometricTemplate) models.BiometricTemplate {
	c := *t
	if t.LastUsedAt != nil {
		lu := *t.LastUsedAt
		c.LastUsedAt = &lu
	}
	return c
}
