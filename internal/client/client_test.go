package client

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/juannacho112/multivf-server/pkg/types"
)

func TestCandidates_OrderAndDedup(t *testing.T) {
	got := Candidates("https://play.example.com", "http://localhost:8080")
	require.Equal(t, []string{
		"https://play.example.com",
		"http://play.example.com",
		"http://localhost:8080",
		"http://127.0.0.1:8080",
		"http://10.0.2.2:8080",
	}, got)
}

func TestCandidates_NoExplicitEndpoint(t *testing.T) {
	got := Candidates("", "")
	require.Equal(t, []string{
		"http://localhost:8080",
		"http://127.0.0.1:8080",
		"http://10.0.2.2:8080",
	}, got)
}

func TestPreferredEndpoint_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoint.json")

	require.Empty(t, loadPreferred(path), "missing file means no preference")
	storePreferred(path, "https://play.example.com")
	require.Equal(t, "https://play.example.com", loadPreferred(path))

	// An empty path disables persistence without failing.
	storePreferred("", "https://ignored.example.com")
	require.Empty(t, loadPreferred(""))
}

func TestDialTarget_GuestSessionStableAcrossRedials(t *testing.T) {
	c := &Conn{opts: Options{Guest: true}, code: "ABC123", guestID: uuid.New()}

	first, header, err := c.dialTarget("http://localhost:8080")
	require.NoError(t, err)
	require.Empty(t, header.Get("Authorization"))

	// A reconnect dial must present the identical guest session, otherwise
	// the server sees a stranger and the held seat is lost.
	second, _, err := c.dialTarget("http://localhost:8080")
	require.NoError(t, err)
	require.Equal(t, first, second)

	u, err := url.Parse(first)
	require.NoError(t, err)
	require.Equal(t, "1", u.Query().Get("guest"))
	require.Equal(t, c.guestID.String(), u.Query().Get("guest_id"))
	require.Equal(t, "ABC123", u.Query().Get("code"))
}

func TestDialTarget_BearerSuppressesGuestParams(t *testing.T) {
	c := &Conn{opts: Options{Token: "tok"}, code: "ABC123", guestID: uuid.New()}

	target, header, err := c.dialTarget("http://localhost:8080")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", header.Get("Authorization"))

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Empty(t, u.Query().Get("guest"))
	require.Empty(t, u.Query().Get("guest_id"))
}

func TestSend_RejectedWhileDisconnected(t *testing.T) {
	c := &Conn{}
	err := c.Send(context.Background(), types.ClientMessage{Type: types.MsgDrawCards})
	require.ErrorIs(t, err, ErrNotConnected)
}

func pickSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Phase:               "challengerPick",
		CurrentChallenger:   0,
		AvailableAttributes: []string{"skill", "stamina", "aura"},
		DeniedAttributes:    []string{},
		CardsInPlay: []*types.CardView{
			{ID: "a", Skill: 20, Stamina: 10, Aura: 10, FinalTotal: 40},
			{ID: "b", Skill: 15, Stamina: 11, Aura: 12, FinalTotal: 38},
		},
		Players:  []types.PlayerView{{}, {}},
		Round:    1,
		PotSize:  1,
		YourSeat: 0,
	}
}

func TestPredict_SelectAdvancesPhase(t *testing.T) {
	snap := pickSnapshot()
	got := Predict(snap, types.ClientMessage{Type: types.MsgSelectAttribute, Attribute: "skill"})

	require.Equal(t, "acceptDeny", got.Phase)
	require.Equal(t, "skill", got.ChallengeAttribute)
	// Prediction never mutates the authoritative snapshot in place.
	require.Equal(t, "challengerPick", snap.Phase)
}

func TestPredict_DenyFlipsChallenger(t *testing.T) {
	snap := pickSnapshot()
	snap.Phase = "acceptDeny"
	snap.ChallengeAttribute = "skill"
	snap.YourSeat = 1

	got := Predict(snap, types.ClientMessage{Type: types.MsgRespond, Accept: false})
	require.Equal(t, "challengerPick", got.Phase)
	require.Equal(t, 1, got.CurrentChallenger)
	require.Contains(t, got.DeniedAttributes, "skill")
	require.NotContains(t, got.AvailableAttributes, "skill")
}

func TestPredict_IllegalActionReturnsInput(t *testing.T) {
	snap := pickSnapshot()
	snap.YourSeat = 1 // not the challenger

	got := Predict(snap, types.ClientMessage{Type: types.MsgSelectAttribute, Attribute: "skill"})
	require.Equal(t, snap, got)
}

func TestPredict_DrawIsNotPredicted(t *testing.T) {
	snap := pickSnapshot()
	snap.Phase = "draw"

	got := Predict(snap, types.ClientMessage{Type: types.MsgDrawCards})
	require.Equal(t, snap, got)
}
