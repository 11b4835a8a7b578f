package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/infra/db/memory"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testResult() analysis.Result {
	return analysis.Result{
		Authenticity: analysis.Authenticity{
			Score:    82,
			Verdict:  analysis.VerdictLikelyAuthentic,
			RedFlags: []string{"slightly uneven chest stitching"},
		},
		Brand:     analysis.Brand{Name: "Carhartt", Confidence: 85},
		Condition: analysis.Condition{Score: 4, Description: "Light fading", Tags: []string{"fading"}},
		Era:       analysis.Era{Classification: "Vintage", Decade: "1990s"},
		Rarity:    "uncommon",
	}
}

func newStore(t *testing.T) (*memory.SessionStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return memory.NewSessionStore(24*time.Hour, clock), clock
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, []string{"img/a.jpg"}, testResult())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, created.CreatedAt.Add(24*time.Hour), created.ExpiresAt)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, testResult(), got.Analysis)
	require.Empty(t, got.Conversation)
}

func TestSessionGetUnknown(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionAliveAtExactExpiry(t *testing.T) {
	store, clock := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	// the expiry instant itself still counts as alive
	clock.advance(24 * time.Hour)
	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	clock.advance(time.Nanosecond)
	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionExpiryIsLazyAndIdempotent(t *testing.T) {
	store, clock := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	clock.advance(24*time.Hour + time.Minute)

	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	// expiring twice is a no-op
	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionUpdateSlidesExpiry(t *testing.T) {
	store, clock := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	clock.advance(20 * time.Hour)
	turns := []session.Turn{
		{Role: session.RoleUser, Content: "Is the price fair?"},
		{Role: session.RoleAssistant, Content: "It sits near the market median."},
	}
	require.NoError(t, store.Update(ctx, created.ID, turns))

	// 22h after creation, only alive because the update slid the window
	clock.advance(22 * time.Hour)
	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, turns, got.Conversation)
	require.Equal(t, clock.Now().Add(-22*time.Hour).Add(24*time.Hour), got.ExpiresAt)
}

func TestSessionUpdateExpired(t *testing.T) {
	store, clock := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	clock.advance(25 * time.Hour)
	err = store.Update(ctx, created.ID, []session.Turn{{Role: session.RoleUser, Content: "hello"}})
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionDeleteIdempotent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionSweep(t *testing.T) {
	store, clock := newStore(t)
	ctx := context.Background()

	old1, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)
	old2, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	clock.advance(23 * time.Hour)
	fresh, err := store.Create(ctx, nil, testResult())
	require.NoError(t, err)

	clock.advance(2 * time.Hour)
	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, err = store.Get(ctx, old1.ID)
	require.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Get(ctx, old2.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	_, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)

	removed, err = store.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestSessionSnapshotIsolation(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, []string{"img/a.jpg"}, testResult())
	require.NoError(t, err)

	turns := []session.Turn{{Role: session.RoleUser, Content: "original"}}
	require.NoError(t, store.Update(ctx, created.ID, turns))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	got.Conversation[0].Content = "mutated"
	got.ImageRefs[0] = "mutated"
	got.Analysis.Authenticity.RedFlags[0] = "mutated"
	got.Analysis.Condition.Tags[0] = "mutated"

	again, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "original", again.Conversation[0].Content)
	require.Equal(t, "img/a.jpg", again.ImageRefs[0])
	require.Equal(t, "slightly uneven chest stitching", again.Analysis.Authenticity.RedFlags[0])
	require.Equal(t, "fading", again.Analysis.Condition.Tags[0])
}
