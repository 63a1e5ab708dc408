package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/domain"
)

func TestRegistrySubscriberChurn(t *testing.T) {
	r := NewRegistry()

	subA := r.Register("alice")
	subB := r.Register("alice")
	require.Equal(t, 2, r.SubscriberCount("alice"))

	event := domain.Event{Type: domain.EventPing, Payload: domain.PingPayload{Echo: "hi"}}

	delivered, err := r.SendToUser("alice", event)
	require.NoError(t, err)
	require.Equal(t, 2, delivered)

	r.Unregister(subA)
	require.Equal(t, 1, r.SubscriberCount("alice"))

	delivered, err = r.SendToUser("alice", event)
	require.NoError(t, err)
	require.Equal(t, 1, delivered)

	r.Unregister(subB)
	require.Equal(t, 0, r.SubscriberCount("alice"))

	delivered, err = r.SendToUser("alice", event)
	require.NoError(t, err)
	require.Equal(t, 0, delivered)
}

func TestRegistrySendToUnknownUserSucceeds(t *testing.T) {
	r := NewRegistry()
	event := domain.Event{Type: domain.EventPing, Payload: domain.PingPayload{Echo: "hi"}}

	delivered, err := r.SendToUser("nobody", event)
	require.NoError(t, err)
	require.Equal(t, 0, delivered)
}

func TestRegistryBroadcastReachesEveryUser(t *testing.T) {
	r := NewRegistry()
	r.Register("alice")
	r.Register("bob")

	event := domain.Event{Type: domain.EventTvlUpdate, Payload: domain.TvlUpdatePayload{}}
	delivered, err := r.Broadcast(event)
	require.NoError(t, err)
	require.Equal(t, 2, delivered)
}

func TestRegistryMessagesDeliverRawJSON(t *testing.T) {
	r := NewRegistry()
	sub := r.Register("alice")

	event := domain.Event{
		Type:    domain.EventBalanceUpdate,
		Payload: domain.BalanceUpdatePayload{Owner: "alice", TotalBalance: 5},
	}
	_, err := r.SendToUser("alice", event)
	require.NoError(t, err)

	msg := <-sub.Messages()
	require.Contains(t, string(msg), `"owner":"alice"`)
}
