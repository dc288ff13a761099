package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{16}$`)

func newTestIntake(t *testing.T) (*IntakeService, *memory.ComplaintStore) {
	t.Helper()
	store := memory.NewComplaintStore()
	svc := NewIntakeService(NewFallbackAnalyzer(nil, newTestHeuristic(t), 0.75), store)
	svc.SetClock(fixedClock)
	return svc, store
}

func TestIntake_SubmitStoresPendingComplaint(t *testing.T) {
	svc, store := newTestIntake(t)

	raw := "  " + complaintText + "\n"
	c, err := svc.Submit(context.Background(), raw)

	require.NoError(t, err)
	assert.Regexp(t, hexID, c.ID)
	assert.Equal(t, raw, c.Text, "text is stored exactly as submitted")
	assert.Equal(t, domain.StatusPending, c.Status)
	assert.Equal(t, domain.CategoryHarassment, c.Category)
	assert.Equal(t, time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC), c.CreatedAt)

	stored, err := store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, *c, *stored)
}

func TestIntake_SameTextGetsDistinctIDs(t *testing.T) {
	svc, store := newTestIntake(t)

	a, err := svc.Submit(context.Background(), complaintText)
	require.NoError(t, err)
	b, err := svc.Submit(context.Background(), complaintText)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIntake_SeededSaltIsReproducible(t *testing.T) {
	first, _ := newTestIntake(t)
	first.SetSalt(SeededSalt(42))
	second, _ := newTestIntake(t)
	second.SetSalt(SeededSalt(42))

	a, err := first.Submit(context.Background(), complaintText)
	require.NoError(t, err)
	b, err := second.Submit(context.Background(), complaintText)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
}

func TestIntake_RetriesOnCollision(t *testing.T) {
	store := &collidingStore{ComplaintStore: memory.NewComplaintStore(), collisions: 2}
	svc := NewIntakeService(NewFallbackAnalyzer(nil, newTestHeuristic(t), 0.75), store)

	c, err := svc.Submit(context.Background(), complaintText)

	require.NoError(t, err)
	assert.Equal(t, 3, store.attempts)
	assert.Regexp(t, hexID, c.ID)
}

func TestIntake_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := &collidingStore{ComplaintStore: memory.NewComplaintStore(), collisions: 10}
	svc := NewIntakeService(NewFallbackAnalyzer(nil, newTestHeuristic(t), 0.75), store)

	_, err := svc.Submit(context.Background(), complaintText)

	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Equal(t, maxIDAttempts, store.attempts)
}

func TestIntake_StoreFailure(t *testing.T) {
	svc := NewIntakeService(NewFallbackAnalyzer(nil, newTestHeuristic(t), 0.75), failingStore{})

	_, err := svc.Submit(context.Background(), complaintText)

	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.NotContains(t, err.Error(), "disk on fire", "storage details are not leaked")
}

func TestIntake_AnalyzerFailure(t *testing.T) {
	store := memory.NewComplaintStore()
	svc := NewIntakeService(&mockAnalyzer{err: errors.New("boom")}, store)

	_, err := svc.Submit(context.Background(), complaintText)

	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	all, _ := store.All(context.Background())
	assert.Empty(t, all)
}

func TestIntake_InvalidInput(t *testing.T) {
	svc, store := newTestIntake(t)

	_, err := svc.Submit(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	all, _ := store.All(context.Background())
	assert.Empty(t, all)
}

func TestIntake_RemoteTimeoutStillStores(t *testing.T) {
	h := newTestHeuristic(t)
	remote := NewRemoteAnalyzer(&mockLLMService{block: true}, h, RemoteConfig{Timeout: 10 * time.Millisecond})
	store := memory.NewComplaintStore()
	svc := NewIntakeService(NewFallbackAnalyzer(remote, h, 0.75), store)

	c, err := svc.Submit(context.Background(), complaintText)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryHarassment, c.Category)
}

func TestAnonymousID(t *testing.T) {
	a := AnonymousID("text", []byte("salt-1"))
	b := AnonymousID("text", []byte("salt-2"))

	assert.Regexp(t, hexID, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, AnonymousID("text", []byte("salt-1")))
}
