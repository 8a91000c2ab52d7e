package server

import (
	"context"

	deeprag "deeprag/engine/core"
)

// LocalReservationist satisfies the core Reservationist interface against
// an in-process DeploymentStore. The deploy pipeline uses it when the
// server and the document networks live in the same process, skipping the
// HTTP round trip.
type LocalReservationist struct {
	store *DeploymentStore
}

func NewLocalReservationist(store *DeploymentStore) *LocalReservationist {
	return &LocalReservationist{store: store}
}

func (lr *LocalReservationist) Reserve(ctx context.Context, lifetimeSeconds float64, nameHint string) (*deeprag.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lr.store.Reserve(lifetimeSeconds, nameHint)
}

func (lr *LocalReservationist) Deploy(ctx context.Context, batch []deeprag.Deployment, confirm bool) (deeprag.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	specs := make(map[string]*deeprag.NetworkSpec, len(batch))
	ids := make([]string, 0, len(batch))
	for _, d := range batch {
		specs[d.Reservation.ID] = d.Spec
		ids = append(ids, d.Reservation.ID)
	}

	if err := lr.store.Deploy(specs); err != nil {
		return nil, err
	}

	if !confirm {
		// Fire-and-forget: the caller's reservations stay pending until
		// somebody verifies availability.
		return nil, nil
	}

	for _, d := range batch {
		d.Reservation.State = deeprag.ReservationDeployed
	}
	return &storeConfirmation{store: lr.store, ids: ids}, nil
}

type storeConfirmation struct {
	store *DeploymentStore
	ids   []string
}

func (c *storeConfirmation) Wait(ctx context.Context) error {
	return c.store.AwaitLive(ctx, c.ids)
}
