package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	"biogate/pkg/requestcontext"
	"biogate/pkg/testutil"
)

type templateStore interface {
	Upsert(ctx context.Context, userID string, modality models.Modality, ciphertext string, quality float64) (models.TemplateID, error)
	Fetch(ctx context.Context, userID string, modality models.Modality) (mo.Option[models.BiometricTemplate], error)
	Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.BiometricTemplate, error)
	TouchLastUsed(ctx context.Context, id models.TemplateID, at time.Time) error
}

// runStoreContract exercises the behaviour every backend must share. userPrefix
// keeps backends that share state between runs from colliding.
func runStoreContract(t *testing.T, s templateStore, userPrefix string) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithNow(context.Background(), base)
	user := func(name string) string { return userPrefix + name }

	t.Run("upsert is idempotent on the pair", func(t *testing.T) {
		first, err := s.Upsert(ctx, user("u1"), models.ModalityFingerprint, "cipher-a", 0.8)
		require.NoError(t, err)

		later := requestcontext.WithNow(context.Background(), base.Add(time.Hour))
		second, err := s.Upsert(later, user("u1"), models.ModalityFingerprint, "cipher-b", 0.6)
		require.NoError(t, err)
		assert.Equal(t, first, second, "template id survives re-enrollment")

		got, err := s.Fetch(ctx, user("u1"), models.ModalityFingerprint)
		require.NoError(t, err)
		tmpl, ok := got.Get()
		require.True(t, ok)
		assert.Equal(t, "cipher-b", tmpl.Ciphertext)
		assert.Equal(t, 0.6, tmpl.Quality)
		assert.True(t, tmpl.Active)
		assert.True(t, tmpl.UpdatedAt.After(tmpl.CreatedAt))

		list, err := s.ListByUser(ctx, user("u1"))
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("quality is rounded to two digits", func(t *testing.T) {
		_, err := s.Upsert(ctx, user("u2"), models.ModalityFace, "cipher", 0.8765)
		require.NoError(t, err)
		got, err := s.Fetch(ctx, user("u2"), models.ModalityFace)
		require.NoError(t, err)
		assert.Equal(t, 0.88, got.MustGet().Quality)
	})

	t.Run("modalities are independent", func(t *testing.T) {
		fp, err := s.Upsert(ctx, user("u3"), models.ModalityFingerprint, "fp", 0.5)
		require.NoError(t, err)
		face, err := s.Upsert(ctx, user("u3"), models.ModalityFace, "face", 0.5)
		require.NoError(t, err)
		assert.NotEqual(t, fp, face)

		list, err := s.ListByUser(ctx, user("u3"))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, models.ModalityFace, list[0].Modality)
		assert.Equal(t, models.ModalityFingerprint, list[1].Modality)
	})

	t.Run("fetch of missing pair is none", func(t *testing.T) {
		got, err := s.Fetch(ctx, user("nobody"), models.ModalityFace)
		require.NoError(t, err)
		assert.True(t, got.IsAbsent())
	})

	t.Run("deactivate hides the template and keeps the row", func(t *testing.T) {
		id, err := s.Upsert(ctx, user("u4"), models.ModalityFace, "face", 0.9)
		require.NoError(t, err)

		ok, err := s.Deactivate(ctx, user("u4"), models.ModalityFace)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := s.Fetch(ctx, user("u4"), models.ModalityFace)
		require.NoError(t, err)
		assert.True(t, got.IsAbsent())

		list, err := s.ListByUser(ctx, user("u4"))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.False(t, list[0].Active)

		again, err := s.Upsert(ctx, user("u4"), models.ModalityFace, "face-2", 0.7)
		require.NoError(t, err)
		assert.Equal(t, id, again)
		got, err = s.Fetch(ctx, user("u4"), models.ModalityFace)
		require.NoError(t, err)
		assert.True(t, got.IsPresent(), "re-enrollment reactivates")

		ok, err = s.Deactivate(ctx, user("nobody"), models.ModalityFace)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("touch last used", func(t *testing.T) {
		id, err := s.Upsert(ctx, user("u5"), models.ModalityFingerprint, "fp", 0.5)
		require.NoError(t, err)

		at := base.Add(30 * time.Minute)
		require.NoError(t, s.TouchLastUsed(ctx, id, at))
		got, err := s.Fetch(ctx, user("u5"), models.ModalityFingerprint)
		require.NoError(t, err)
		require.NotNil(t, got.MustGet().LastUsedAt)
		assert.True(t, at.Equal(*got.MustGet().LastUsedAt))

		err = s.TouchLastUsed(ctx, models.NewTemplateID(), at)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("concurrent upserts keep one row", func(t *testing.T) {
		const workers = 20
		ids := make([]models.TemplateID, workers)
		result := testutil.RunConcurrent(workers, func(i int) error {
			id, err := s.Upsert(ctx, user("race"), models.ModalityFace, fmt.Sprintf("c%d", i), 0.5)
			ids[i] = id
			return err
		})
		require.Equal(t, int32(workers), result.Successes)

		for _, id := range ids[1:] {
			assert.Equal(t, ids[0], id)
		}
		list, err := s.ListByUser(ctx, user("race"))
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
