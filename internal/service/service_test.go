package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"solar_registration/internal/config"
	"solar_registration/internal/domain"
	"solar_registration/internal/editor"
	"solar_registration/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DBType:        "memory",
		BatchSize:     100,
		FlushInterval: 60000,
		SessionTTL:    60,
	}
}

func newTestService(t *testing.T) (*Service, *repository.MemoryRepo) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	svc := NewService(repo, testConfig())
	t.Cleanup(svc.Close)
	return svc, repo
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService(t)

	id, p := svc.CreateSession("req")

	assert.NotEmpty(t, id)
	assert.Equal(t, "main", p.View)
	assert.True(t, p.CanAddSub)

	got, err := svc.Projection(id)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProjection_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Projection("missing")

	var notFound domain.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestApply_CountsAppliedAndRejected(t *testing.T) {
	svc, _ := newTestService(t)
	id, _ := svc.CreateSession("req")

	p, err := svc.Apply("req", id, "ADD_SUB", (*editor.Editor).AddSubClient)
	require.NoError(t, err)
	assert.Equal(t, "sub", p.View)

	_, err = svc.Apply("req", id, "UPDATE_MAIN", func(e *editor.Editor) error {
		return e.UpdateMain("nope", "x")
	})
	assert.ErrorAs(t, err, &domain.InvalidPathError{})

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.EditsApplied)
	assert.Equal(t, uint64(1), stats.EditsRejected)
	assert.Equal(t, 50.0, stats.RejectionRate)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, "memory", stats.DatabaseType)
}

func TestSubmit_StoresRegistration(t *testing.T) {
	svc, repo := newTestService(t)
	id, _ := svc.CreateSession("req")
	_, err := svc.Apply("req", id, "UPDATE_MAIN", func(e *editor.Editor) error {
		return e.UpdateMain("name", "Plant A")
	})
	require.NoError(t, err)
	_, err = svc.Apply("req", id, "ADD_SUB", (*editor.Editor).AddSubClient)
	require.NoError(t, err)

	regID, err := svc.Submit(context.Background(), "req", id)
	require.NoError(t, err)
	assert.NotEmpty(t, regID)

	svc.Flush()

	stored := repo.All()
	require.Len(t, stored, 1)
	assert.Equal(t, regID, stored[0].ID)
	assert.Equal(t, id, stored[0].SessionID)
	assert.Equal(t, "Plant A", stored[0].MainClient.Name)
	assert.Len(t, stored[0].SubClients, 1)

	// Submitting leaves the session editable.
	p, err := svc.Projection(id)
	require.NoError(t, err)
	assert.Equal(t, "sub", p.View)
}

func TestSubmit_CancelledContext(t *testing.T) {
	svc, _ := newTestService(t)
	id, _ := svc.CreateSession("req")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Submit(ctx, "req", id)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDeleteSession(t *testing.T) {
	svc, _ := newTestService(t)
	id, _ := svc.CreateSession("req")

	require.NoError(t, svc.DeleteSession("req", id))
	assert.ErrorAs(t, svc.DeleteSession("req", id), &domain.SessionNotFoundError{})

	_, err := svc.Apply("req", id, "ADD_SUB", (*editor.Editor).AddSubClient)
	assert.ErrorAs(t, err, &domain.SessionNotFoundError{})
}

func TestSessionsAreIndependent(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := svc.CreateSession("req")
	b, _ := svc.CreateSession("req")

	_, err := svc.Apply("req", a, "ADD_SUB", (*editor.Editor).AddSubClient)
	require.NoError(t, err)

	pb, err := svc.Projection(b)
	require.NoError(t, err)
	assert.Empty(t, pb.Tabs)
}

func TestSessionExpires(t *testing.T) {
	svc, _ := newTestService(t)
	clock := time.Now()
	svc.sessions.now = func() time.Time { return clock }
	id, _ := svc.CreateSession("req")

	clock = clock.Add(2 * time.Hour)

	_, err := svc.Projection(id)
	assert.ErrorAs(t, err, &domain.SessionNotFoundError{})
}
