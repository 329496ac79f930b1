//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

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
	s.store = NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "biometric_audit_events"))
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	quality := 0.82
	score := 0.4

	enrolled := Event{
		ID: uuid.New(), Timestamp: base, Action: ActionTemplateEnrolled,
		UserID: "u1", Modality: "FACE", TemplateID: uuid.NewString(), Quality: &quality,
	}
	attempt := Event{
		ID: uuid.New(), Timestamp: base.Add(time.Minute), Action: ActionVerificationAttempted,
		UserID: "u1", Modality: "FACE", Score: &score, Decision: DecisionRejected,
		Details: map[string]any{"threshold": 0.75},
	}
	s.Require().NoError(s.store.Append(ctx, enrolled))
	s.Require().NoError(s.store.Append(ctx, attempt))
	s.Require().NoError(s.store.Append(ctx, attempt), "duplicate ids are ignored")

	events, err := s.store.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Equal(ActionVerificationAttempted, events[0].Action)
	s.Equal(DecisionRejected, events[0].Decision)
	s.InDelta(0.4, *events[0].Score, 1e-9)
	s.Equal(0.75, events[0].Details["threshold"])

	s.Equal(enrolled.TemplateID, events[1].TemplateID)
	s.InDelta(0.82, *events[1].Quality, 1e-9)
	s.True(base.Equal(events[1].Timestamp))
}
