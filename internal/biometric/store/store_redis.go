package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/mo"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	"biogate/pkg/requestcontext"
)

const (
	redisKeyPrefix  = "biogate:"
	redisTimeLayout = time.RFC3339Nano
)

// upsertScript creates or replaces the hash for a pair. template_id and
// created_at are written only on first insert.
//
// KEYS[1] pair hash, KEYS[2] user modality set, KEYS[3] id index for a new id
// ARGV: new id, user id, modality, ciphertext, quality, now
var upsertScript = redis.NewScript(`
local id = redis.call('HGET', KEYS[1], 'template_id')
if not id then
	id = ARGV[1]
	redis.call('HSET', KEYS[1], 'template_id', id, 'user_id', ARGV[2], 'modality', ARGV[3], 'created_at', ARGV[6])
	redis.call('SADD', KEYS[2], ARGV[3])
	redis.call('SET', KEYS[3], KEYS[1])
end
redis.call('HSET', KEYS[1], 'ciphertext', ARGV[4], 'quality', ARGV[5], 'active', '1', 'updated_at', ARGV[6])
return id
`)

// deactivateScript returns 1 when the pair exists.
var deactivateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'active', '0', 'updated_at', ARGV[1])
return 1
`)

// touchScript resolves the id index and stamps last_used_at.
var touchScript = redis.NewScript(`
local pair = redis.call('GET', KEYS[1])
if not pair then
	return 0
end
redis.call('HSET', pair, 'last_used_at', ARGV[1])
return 1
`)

// RedisStore keeps one hash per (user, modality) pair. Writes go through Lua
// scripts so template_id survives concurrent re-enrollment.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func pairKey(userID string, modality models.Modality) string {
	return redisKeyPrefix + "template:" + string(modality) + ":" + userID
}

func userKey(userID string) string {
	return redisKeyPrefix + "user-templates:" + userID
}

func idKey(id models.TemplateID) string {
	return redisKeyPrefix + "template-id:" + id.String()
}

func (s *RedisStore) Upsert(ctx context.Context, userID string, modality models.Modality, ciphertext string, quality float64) (models.TemplateID, error) {
	newID := models.NewTemplateID()
	now := requestcontext.Now(ctx).UTC().Format(redisTimeLayout)
	raw, err := upsertScript.Run(ctx, s.client,
		[]string{pairKey(userID, modality), userKey(userID), idKey(newID)},
		newID.String(), userID, string(modality), ciphertext,
		strconv.FormatFloat(RoundQuality(quality), 'f', 2, 64), now,
	).Text()
	if err != nil {
		return models.TemplateID{}, unavailable("upsert template", err)
	}
	id, err := models.ParseTemplateID(raw)
	if err != nil {
		return models.TemplateID{}, fmt.Errorf("upsert template: stored id %q: %w", raw, err)
	}
	return id, nil
}

func (s *RedisStore) Fetch(ctx context.Context, userID string, modality models.Modality) (mo.Option[models.BiometricTemplate], error) {
	fields, err := s.client.HGetAll(ctx, pairKey(userID, modality)).Result()
	if err != nil {
		return mo.None[models.BiometricTemplate](), unavailable("fetch template", err)
	}
	if len(fields) == 0 {
		return mo.None[models.BiometricTemplate](), nil
	}
	t, err := parseTemplateHash(fields)
	if err != nil {
		return mo.None[models.BiometricTemplate](), fmt.Errorf("fetch template: %w", err)
	}
	if !t.Active {
		return mo.None[models.BiometricTemplate](), nil
	}
	return mo.Some(t), nil
}

func (s *RedisStore) Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error) {
	now := requestcontext.Now(ctx).UTC().Format(redisTimeLayout)
	n, err := deactivateScript.Run(ctx, s.client, []string{pairKey(userID, modality)}, now).Int()
	if err != nil {
		return false, unavailable("deactivate template", err)
	}
	return n == 1, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]models.BiometricTemplate, error) {
	modalities, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, unavailable("list templates", err)
	}
	sort.Strings(modalities)

	cmds, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, m := range modalities {
			p.HGetAll(ctx, pairKey(userID, models.Modality(m)))
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list templates", err)
	}

	out := make([]models.BiometricTemplate, 0, len(cmds))
	for _, cmd := range cmds {
		fields, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, unavailable("list templates", err)
		}
		if len(fields) == 0 {
			continue
		}
		t, err := parseTemplateHash(fields)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *RedisStore) TouchLastUsed(ctx context.Context, id models.TemplateID, at time.Time) error {
	n, err := touchScript.Run(ctx, s.client, []string{idKey(id)}, at.UTC().Format(redisTimeLayout)).Int()
	if err != nil {
		return unavailable("touch template", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Health pings the server.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func parseTemplateHash(fields map[string]string) (models.BiometricTemplate, error) {
	var t models.BiometricTemplate
	id, err := models.ParseTemplateID(fields["template_id"])
	if err != nil {
		return t, fmt.Errorf("template_id: %w", err)
	}
	quality, err := strconv.ParseFloat(fields["quality"], 64)
	if err != nil {
		return t, fmt.Errorf("quality: %w", err)
	}
	created, err := time.Parse(redisTimeLayout, fields["created_at"])
	if err != nil {
		return t, fmt.Errorf("created_at: %w", err)
	}
	updated, err := time.Parse(redisTimeLayout, fields["updated_at"])
	if err != nil {
		return t, fmt.Errorf("updated_at: %w", err)
	}

	t = models.BiometricTemplate{
		ID:         id,
		UserID:     fields["user_id"],
		Modality:   models.Modality(fields["modality"]),
		Ciphertext: fields["ciphertext"],
		Quality:    quality,
		Active:     fields["active"] == "1",
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if raw, ok := fields["last_used_at"]; ok && raw != "" {
		lastUsed, err := time.Parse(redisTimeLayout, raw)
		if err != nil {
			return t, fmt.Errorf("last_used_at: %w", err)
		}
		t.LastUsedAt = &lastUsed
	}
	return t, nil
}

