package deeprag

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPReservationist implements Reservationist against the deployment
// subsystem's REST API.
type HTTPReservationist struct {
	client *HTTPClient
}

// NewHTTPReservationist creates a client-side reservationist for the server
// at baseURL.
func NewHTTPReservationist(baseURL string) *HTTPReservationist {
	return &HTTPReservationist{client: NewHTTPClient(baseURL)}
}

type reserveRequest struct {
	LifetimeSeconds float64 `json:"lifetimeSeconds"`
	NameHint        string  `json:"nameHint"`
}

type deployRequest struct {
	Deployments map[string]*NetworkSpec `json:"deployments"`
}

// Reserve leases an identifier from the server.
func (hr *HTTPReservationist) Reserve(ctx context.Context, lifetimeSeconds float64, nameHint string) (*Reservation, error) {
	resp, err := hr.client.POST(ctx, "/api/v1/reservations", reserveRequest{
		LifetimeSeconds: lifetimeSeconds,
		NameHint:        nameHint,
	})
	if err != nil {
		return nil, err
	}

	var reservation Reservation
	if err := hr.client.DecodeJSON(resp, &reservation); err != nil {
		return nil, fmt.Errorf("reserve failed: %w", err)
	}
	return &reservation, nil
}

// Deploy posts the whole batch as one request. With confirm=true the server
// holds the request until every member is live, so the returned
// Confirmation is already satisfied when the call returns.
func (hr *HTTPReservationist) Deploy(ctx context.Context, batch []Deployment, confirm bool) (Confirmation, error) {
	request := deployRequest{Deployments: make(map[string]*NetworkSpec, len(batch))}
	for _, deployment := range batch {
		request.Deployments[deployment.Reservation.ID] = deployment.Spec
	}

	path := "/api/v1/deployments"
	if confirm {
		path += "?confirm=true"
	}
	resp, err := hr.client.POST(ctx, path, request)
	if err != nil {
		return nil, err
	}
	if err := hr.client.DecodeJSON(resp, nil); err != nil {
		return nil, fmt.Errorf("deploy failed: %w", err)
	}

	if !confirm {
		// Fire-and-forget: no availability promise, so the local state
		// stays pending until somebody verifies it.
		return nil, nil
	}
	for _, deployment := range batch {
		deployment.Reservation.State = ReservationDeployed
	}
	return satisfiedConfirmation{}, nil
}

// IsLive checks whether a deployed network answers at its address. Used by
// callers that want to re-verify availability after a confirmed deploy.
func (hr *HTTPReservationist) IsLive(ctx context.Context, reservation *Reservation) (bool, error) {
	resp, err := hr.client.GET(ctx, fmt.Sprintf("/api/v1/networks/%s", reservation.ID))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// satisfiedConfirmation is the completion signal of a deploy that was
// confirmed before the call returned.
type satisfiedConfirmation struct{}

func (satisfiedConfirmation) Wait(ctx context.Context) error {
	return ctx.Err()
}
