// Package notify is the Notification Registry: a per-user multi-subscriber
// fan-out with at-most-once delivery, modeled on the mutex-guarded map of
// live senders that htlcswitch.Switch keeps for its link table (see
// spec.md §4.8, §9).
package notify

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/metrics"
)

// subscriberBufferSize is the bounded channel capacity every subscriber
// gets, per spec.md §4.8.
const subscriberBufferSize = 100

// Subscriber is a live notification channel bound to one user identity.
// The registry serializes each event exactly once and hands the same JSON
// bytes to every live subscriber for that user, so Subscriber's channel
// carries raw frames rather than domain.Event values.
type Subscriber struct {
	id   string
	user string
	ch   chan []byte
	dead int32
}

// Messages returns the receive side of the subscriber's channel. The
// forwarding task (one per WebSocket connection) ranges over this and
// writes each frame to the underlying socket.
func (s *Subscriber) Messages() <-chan []byte {
	return s.ch
}

// Registry is the process-wide fan-out table: one mutex, one map, no
// per-user locks, matching the "O(live subscribers for that user)"
// critical-section budget in spec.md §5.
type Registry struct {
	mu   sync.Mutex
	subs map[string][]*Subscriber
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string][]*Subscriber)}
}

// Register creates a new subscriber for user and appends it to that user's
// list.
func (r *Registry) Register(user string) *Subscriber {
	sub := &Subscriber{
		id:   uuid.NewString(),
		user: user,
		ch:   make(chan []byte, subscriberBufferSize),
	}

	r.mu.Lock()
	r.subs[user] = append(r.subs[user], sub)
	r.mu.Unlock()

	metrics.NotifyActiveSubscribers.Inc()
	log.Debugf("registered subscriber %s for user=%s", sub.id, user)
	return sub
}

// Unregister marks sub dead and prunes it (and any other dead entries) from
// the user's list, removing the user entry entirely once its list empties.
func (r *Registry) Unregister(sub *Subscriber) {
	atomic.StoreInt32(&sub.dead, 1)
	r.prune(sub.user)
	log.Debugf("unregistered subscriber %s for user=%s", sub.id, sub.user)
}

// prune removes dead subscribers from user's list under the lock, deleting
// the map entry entirely if nothing live remains.
func (r *Registry) prune(user string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[user]
	live := subs[:0]
	pruned := 0
	for _, s := range subs {
		if atomic.LoadInt32(&s.dead) == 0 {
			live = append(live, s)
		} else {
			pruned++
		}
	}
	if pruned > 0 {
		metrics.NotifyPrunesTotal.Add(float64(pruned))
		for i := 0; i < pruned; i++ {
			metrics.NotifyActiveSubscribers.Dec()
		}
	}
	if len(live) == 0 {
		delete(r.subs, user)
	} else {
		r.subs[user] = live
	}
}

// SendToUser serializes event once and delivers it to every live
// subscriber for user, pruning any that are already dead. A user with no
// subscribers is not an error: it simply delivers to zero recipients.
func (r *Registry) SendToUser(user string, event domain.Event) (delivered int, err error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	subs := make([]*Subscriber, len(r.subs[user]))
	copy(subs, r.subs[user])
	r.mu.Unlock()

	sawDead := false
	for _, s := range subs {
		if atomic.LoadInt32(&s.dead) == 1 {
			sawDead = true
			continue
		}
		select {
		case s.ch <- payload:
			delivered++
			metrics.NotifyDeliveriesTotal.Inc()
		default:
			// Buffer full: the forwarding task isn't keeping up. At-most-once
			// delivery means we drop rather than block the sender.
			log.Warnf("dropping event for user=%s subscriber=%s: buffer full", user, s.id)
		}
	}

	if sawDead {
		r.prune(user)
	}

	return delivered, nil
}

// Broadcast sends event to every currently-registered user.
func (r *Registry) Broadcast(event domain.Event) (delivered int, err error) {
	r.mu.Lock()
	users := make([]string, 0, len(r.subs))
	for user := range r.subs {
		users = append(users, user)
	}
	r.mu.Unlock()

	for _, user := range users {
		n, sendErr := r.SendToUser(user, event)
		if sendErr != nil {
			err = sendErr
			continue
		}
		delivered += n
	}
	return delivered, err
}

// SubscriberCount reports how many subscribers are currently registered for
// user.
func (r *Registry) SubscriberCount(user string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[user])
}
