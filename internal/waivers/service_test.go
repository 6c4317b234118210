package waivers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrls/qrls-bot/internal/models"
	"github.com/qrls/qrls-bot/internal/storage"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	store, err := storage.NewWaiverStorage(t.TempDir())
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)}
	return NewService(store, WithClock(clock.Now)), clock
}

func claim(team string, rank int, by string) models.Claim {
	return models.Claim{TeamName: team, TeamRank: rank, ClaimedByID: by, OriginChannelID: "chan-" + by}
}

func TestService_RecordDrop(t *testing.T) {
	svc, clock := newTestService(t)

	w, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	assert.True(t, w.RequestedAt.Equal(clock.t))
	assert.True(t, w.ExpiresAt.Equal(clock.t.Add(48*time.Hour)))

	got, err := svc.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Kings", got.OriginalTeam)

	_, err = svc.Get("nobody")
	assert.ErrorIs(t, err, ErrNoWaiver)
}

func TestService_PlaceClaim_Ranking(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)

	res, err := svc.PlaceClaim("p1", claim("Astro", 3, "c3"))
	require.NoError(t, err)
	assert.Equal(t, ClaimPlaced, res.Outcome)
	assert.Nil(t, res.Replaced)

	_, err = svc.PlaceClaim("p1", claim("Armada", 5, "c5"))
	assert.ErrorIs(t, err, ErrOutranked)

	_, err = svc.PlaceClaim("p1", claim("Rangers", 3, "c3b"))
	assert.ErrorIs(t, err, ErrTiedRank)

	res, err = svc.PlaceClaim("p1", claim("Kings", 1, "c1"))
	require.NoError(t, err)
	assert.Equal(t, ClaimReplaced, res.Outcome)
	require.NotNil(t, res.Replaced)
	assert.Equal(t, "Astro", res.Replaced.TeamName)
	assert.Equal(t, "Kings", res.Waiver.Claim.TeamName)

	w, err := svc.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "c1", w.Claim.ClaimedByID)
}

func TestService_PlaceClaim_MissingRankLoses(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)

	_, err = svc.PlaceClaim("p1", claim("Unranked", 0, "u"))
	require.NoError(t, err)

	res, err := svc.PlaceClaim("p1", claim("Astro", 16, "c16"))
	require.NoError(t, err)
	assert.Equal(t, ClaimReplaced, res.Outcome)

	_, err = svc.PlaceClaim("p1", claim("Other", 0, "u2"))
	assert.ErrorIs(t, err, ErrOutranked)
}

func TestService_PlaceClaim_NoWaiverOrExpired(t *testing.T) {
	svc, clock := newTestService(t)

	_, err := svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	assert.ErrorIs(t, err, ErrNoWaiver)

	_, err = svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)

	_, err = svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	assert.ErrorIs(t, err, ErrWaiverExpired)
}

func dueKinds(t *testing.T, svc *Service) map[string]ActionKind {
	t.Helper()
	actions, err := svc.Due()
	require.NoError(t, err)
	out := make(map[string]ActionKind)
	for _, a := range actions {
		out[a.Waiver.PlayerID] = a.Kind
	}
	return out
}

func TestService_Due_StateTable(t *testing.T) {
	svc, clock := newTestService(t)

	for _, id := range []string{"none", "pending", "declined", "confirmed", "requested", "fresh"} {
		_, err := svc.RecordDrop("g", id, "Kings", "cap")
		require.NoError(t, err)
	}
	for _, id := range []string{"pending", "declined", "confirmed", "requested"} {
		_, err := svc.PlaceClaim(id, claim("Astro", 1, "c1"))
		require.NoError(t, err)
	}
	_, err := svc.Decline("declined", "c1")
	require.NoError(t, err)
	_, err = svc.Confirm("confirmed", "c1")
	require.NoError(t, err)
	_, err = svc.Confirm("requested", "c1")
	require.NoError(t, err)
	_, err = svc.MarkApprovalRequested("requested")
	require.NoError(t, err)

	assert.Empty(t, dueKinds(t, svc), "nothing is due inside the window")

	clock.Advance(48 * time.Hour)
	_, err = svc.RecordDrop("g", "fresh", "Kings", "cap")
	require.NoError(t, err)

	kinds := dueKinds(t, svc)
	assert.Equal(t, map[string]ActionKind{
		"none":      ActionFinalize,
		"pending":   ActionPrompt,
		"declined":  ActionFinalize,
		"confirmed": ActionRequestApproval,
	}, kinds)
}

func TestService_PromptTimeout(t *testing.T) {
	svc, clock := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	_, err = svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	require.NoError(t, err)

	clock.Advance(49 * time.Hour)
	assert.Equal(t, ActionPrompt, dueKinds(t, svc)["p1"])

	w, err := svc.MarkPrompted("p1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPrompted, w.Claim.Status)
	assert.Empty(t, dueKinds(t, svc), "prompted claims wait for an answer")

	clock.Advance(30 * time.Minute)
	assert.Equal(t, ActionFinalize, dueKinds(t, svc)["p1"])
}

func TestService_NextAction_SeesLateAnswer(t *testing.T) {
	svc, clock := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	_, err = svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	require.NoError(t, err)
	clock.Advance(49 * time.Hour)
	_, err = svc.MarkPrompted("p1")
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)

	due, err := svc.Due()
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ActionFinalize, due[0].Kind)

	// The claimant answers after the sweep took its snapshot
	_, err = svc.Confirm("p1", "c1")
	require.NoError(t, err)

	a, ok, err := svc.NextAction("p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ActionRequestApproval, a.Kind)
	assert.Equal(t, models.ClaimConfirmed, a.Waiver.Claim.Status)

	require.NoError(t, svc.Resolve("p1"))
	_, _, err = svc.NextAction("p1")
	assert.ErrorIs(t, err, ErrNoWaiver)
}

func TestService_ConfirmDecline(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)

	_, err = svc.Confirm("p1", "c1")
	assert.ErrorIs(t, err, ErrNoClaim)

	_, err = svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	require.NoError(t, err)

	_, err = svc.Confirm("p1", "intruder")
	assert.ErrorIs(t, err, ErrNotClaimant)

	w, err := svc.Confirm("p1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimConfirmed, w.Claim.Status)
	assert.NotNil(t, w.Claim.ConfirmedAt)

	_, err = svc.Decline("p1", "c1")
	assert.ErrorIs(t, err, ErrAnswered)

	_, err = svc.Confirm("ghost", "c1")
	assert.ErrorIs(t, err, ErrNoWaiver)
}

func TestService_ApprovalFailedRequeues(t *testing.T) {
	svc, clock := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	_, err = svc.PlaceClaim("p1", claim("Astro", 1, "c1"))
	require.NoError(t, err)
	_, err = svc.Confirm("p1", "c1")
	require.NoError(t, err)
	clock.Advance(49 * time.Hour)

	_, err = svc.MarkApprovalRequested("p1")
	require.NoError(t, err)
	assert.Empty(t, dueKinds(t, svc))

	_, err = svc.ApprovalFailed("p1")
	require.NoError(t, err)
	assert.Equal(t, ActionRequestApproval, dueKinds(t, svc)["p1"])

	require.NoError(t, svc.Resolve("p1"))
	_, err = svc.Get("p1")
	assert.ErrorIs(t, err, ErrNoWaiver)
}

func TestService_NewClaimResetsAnswer(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RecordDrop("g", "p1", "Kings", "cap")
	require.NoError(t, err)
	_, err = svc.PlaceClaim("p1", claim("Astro", 2, "c2"))
	require.NoError(t, err)

	c := claim("Kings", 1, "c1")
	c.Status = models.ClaimConfirmed
	c.ApprovalRequested = true
	res, err := svc.PlaceClaim("p1", c)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, res.Waiver.Claim.Status)
	assert.False(t, res.Waiver.Claim.ApprovalRequested)
}
