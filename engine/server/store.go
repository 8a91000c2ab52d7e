package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	deeprag "deeprag/engine/core"
	"deeprag/engine/core/pubsub"

	"github.com/lithammer/shortuuid/v3"
)

// DeploymentTopic carries one event per reservation that goes live.
const DeploymentTopic = "deployments"

// DeploymentEvent is the payload published when a reservation transitions
// to deployed.
type DeploymentEvent struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// DeploymentStore owns the reservation lifecycle on the server side:
// leasing identifiers, committing deploy batches atomically, expiring
// stale leases and broadcasting go-live events on the bus.
type DeploymentStore struct {
	baseURL string
	bus     *pubsub.WatermillPubSub

	mu           sync.RWMutex
	reservations map[string]*deeprag.Reservation
	specs        map[string]*deeprag.NetworkSpec

	reaperCancel context.CancelFunc
}

// NewDeploymentStore creates a store whose reservation addresses resolve
// under baseURL. The expiry reaper starts immediately.
func NewDeploymentStore(baseURL string) *DeploymentStore {
	ctx, cancel := context.WithCancel(context.Background())
	ds := &DeploymentStore{
		baseURL:      baseURL,
		bus:          pubsub.NewInMemoryPubSub(),
		reservations: make(map[string]*deeprag.Reservation),
		specs:        make(map[string]*deeprag.NetworkSpec),
		reaperCancel: cancel,
	}
	go ds.reapExpired(ctx)
	return ds
}

// Reserve leases a fresh identifier for lifetimeSeconds. The hint only
// shapes the identifier prefix; uniqueness comes from the shortuuid suffix.
func (ds *DeploymentStore) Reserve(lifetimeSeconds float64, nameHint string) (*deeprag.Reservation, error) {
	if lifetimeSeconds <= 0 {
		return nil, fmt.Errorf("reservation lifetime must be positive, got %v", lifetimeSeconds)
	}

	id := deeprag.SanitizeNameHint(nameHint) + "-" + shortuuid.New()
	res := &deeprag.Reservation{
		ID:              id,
		Address:         deeprag.NormalizeAddress(ds.baseURL, id),
		LifetimeSeconds: lifetimeSeconds,
		ExpirationTime:  time.Now().Add(time.Duration(lifetimeSeconds * float64(time.Second))),
		State:           deeprag.ReservationPending,
	}

	ds.mu.Lock()
	ds.reservations[id] = res
	ds.mu.Unlock()

	deeprag.InfoLog("[STORE] Reserved %s for %.0fs\n", id, lifetimeSeconds)
	copied := *res
	return &copied, nil
}

// Deploy commits a batch of specs against their reservations. The whole
// batch is validated before anything is touched; a single bad member
// rejects the call and leaves every reservation as it was.
func (ds *DeploymentStore) Deploy(batch map[string]*deeprag.NetworkSpec) error {
	if len(batch) == 0 {
		return fmt.Errorf("deploy batch is empty")
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	for id, spec := range batch {
		res, exists := ds.reservations[id]
		if !exists {
			return fmt.Errorf("unknown reservation %q", id)
		}
		if res.State != deeprag.ReservationPending {
			return fmt.Errorf("reservation %q is %s, not pending", id, res.State)
		}
		if res.Expired() {
			return fmt.Errorf("reservation %q expired before deploy", id)
		}
		if spec == nil || len(spec.Tools) == 0 {
			return fmt.Errorf("reservation %q has no network spec", id)
		}
	}

	for id, spec := range batch {
		res := ds.reservations[id]
		res.State = deeprag.ReservationDeployed
		ds.specs[id] = spec
		if err := ds.bus.Publish(DeploymentTopic, &pubsub.Message{
			Payload: DeploymentEvent{ID: id, Address: res.Address},
		}); err != nil {
			deeprag.ErrorLog("[STORE] Failed to publish deployment event for %s: %v\n", id, err)
		}
		deeprag.InfoLog("[STORE] Deployed %s at %s\n", id, res.Address)
	}
	return nil
}

// Get returns the reservation and, when live, the spec for an identifier.
func (ds *DeploymentStore) Get(id string) (*deeprag.Reservation, *deeprag.NetworkSpec, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	res, exists := ds.reservations[id]
	if !exists {
		return nil, nil, false
	}
	copied := *res
	return &copied, ds.specs[id], true
}

// ListReservations returns a snapshot of every reservation the store has
// seen, including expired ones.
func (ds *DeploymentStore) ListReservations() []deeprag.Reservation {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := make([]deeprag.Reservation, 0, len(ds.reservations))
	for _, res := range ds.reservations {
		out = append(out, *res)
	}
	return out
}

// AwaitLive blocks until every listed reservation has published a go-live
// event or the context ends. The bus replays past events, so waiting
// after the batch already deployed still succeeds.
func (ds *DeploymentStore) AwaitLive(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}

	consumer := "await-" + shortuuid.New()
	sub, err := ds.bus.Subscribe(DeploymentTopic, consumer)
	if err != nil {
		return fmt.Errorf("failed to subscribe for confirmations: %w", err)
	}
	defer ds.bus.Unsubscribe(DeploymentTopic, consumer)

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Chan():
			if !ok {
				return fmt.Errorf("confirmation stream closed with %d networks outstanding", len(pending))
			}
			if event, isEvent := msg.Payload.(DeploymentEvent); isEvent {
				delete(pending, event.ID)
			}
		}
	}
	return nil
}

// Close stops the reaper and the event bus.
func (ds *DeploymentStore) Close() error {
	ds.reaperCancel()
	return ds.bus.Close()
}

func (ds *DeploymentStore) reapExpired(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ds.mu.Lock()
			for id, res := range ds.reservations {
				if res.State != deeprag.ReservationExpired && res.Expired() {
					res.State = deeprag.ReservationExpired
					delete(ds.specs, id)
					deeprag.InfoLog("[STORE] Reservation %s expired\n", id)
				}
			}
			ds.mu.Unlock()
		}
	}
}
