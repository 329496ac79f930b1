//go:build integration

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	"biogate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "biometric_templates"))
}

func (s *PostgresStoreSuite) TestContract() {
	runStoreContract(s.T(), s.store, "")
}

func (s *PostgresStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}

func (s *PostgresStoreSuite) TestQualityConstraintIsUnavailable() {
	_, err := s.store.Upsert(context.Background(), "u1", models.ModalityFace, "cipher", 4.2)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrUnavailable))
}

type RedisStoreSuite struct {
	suite.Suite
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	redis := containers.GetManager().GetRedis(s.T())
	s.store = NewRedis(redis.Client)
}

func (s *RedisStoreSuite) TestContract() {
	runStoreContract(s.T(), s.store, uuid.NewString()+"-")
}

func (s *RedisStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
