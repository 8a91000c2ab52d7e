package deeprag

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReservationState tracks a reservation through its lifecycle. There is no
// way back from deployed to pending; re-deployment requires a new
// reservation.
type ReservationState string

const (
	// ReservationPending means the identifier is leased but nothing is
	// reachable at its address yet.
	ReservationPending ReservationState = "pending"
	// ReservationDeployed means the network is confirmed live.
	ReservationDeployed ReservationState = "deployed"
	// ReservationExpired is terminal; the deployment subsystem reclaims the
	// slot, not this process.
	ReservationExpired ReservationState = "expired"
)

// Reservation is a time-leased, externally addressable deployment slot for
// one network specification. It outlives the build process and self-expires
// at ExpirationTime.
type Reservation struct {
	ID              string           `json:"id" yaml:"id"`
	Address         string           `json:"address" yaml:"address"`
	LifetimeSeconds float64          `json:"lifetimeSeconds" yaml:"lifetimeSeconds"`
	ExpirationTime  time.Time        `json:"expirationTime" yaml:"expirationTime"`
	State           ReservationState `json:"state" yaml:"state"`
}

// RemainingSeconds reports how much lease time is left, never negative.
func (r *Reservation) RemainingSeconds() float64 {
	remaining := time.Until(r.ExpirationTime).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the lease deadline has passed.
func (r *Reservation) Expired() bool {
	return time.Now().After(r.ExpirationTime)
}

// Deployment pairs a reservation with the network spec to publish at its
// address.
type Deployment struct {
	Reservation *Reservation
	Spec        *NetworkSpec
}

// Confirmation is the completion signal of a confirmed deploy. Wait returns
// once every member of the batch is live and addressable.
type Confirmation interface {
	Wait(ctx context.Context) error
}

// Reservationist is the interface boundary to the deployment subsystem.
//
// Reserve leases a unique identifier for lifetimeSeconds; the name hint is
// sanitized before use as a prefix, so callers must not assume the returned
// id echoes it verbatim.
//
// Deploy commits the whole batch atomically: either every member becomes
// reachable or the call fails. With confirm=false it returns a nil
// Confirmation and makes no availability promise.
type Reservationist interface {
	Reserve(ctx context.Context, lifetimeSeconds float64, nameHint string) (*Reservation, error)
	Deploy(ctx context.Context, batch []Deployment, confirm bool) (Confirmation, error)
}

// SanitizeNameHint turns a free-form name into an identifier-safe prefix:
// whitespace becomes underscores and the result is lowercased.
func SanitizeNameHint(hint string) string {
	sanitized := strings.ToLower(strings.TrimSpace(hint))
	sanitized = strings.Join(strings.Fields(sanitized), "_")
	if sanitized == "" {
		sanitized = "network"
	}
	return sanitized
}

// NormalizeAddress makes a reservation identifier externally reachable.
// Absolute and rooted addresses pass through untouched; bare identifiers
// get the deployment subsystem's scheme, host and network path prefixed.
func NormalizeAddress(baseURL, idOrAddress string) string {
	if strings.Contains(idOrAddress, "://") || strings.HasPrefix(idOrAddress, "/") {
		return idOrAddress
	}
	return fmt.Sprintf("%s/api/v1/networks/%s", strings.TrimRight(baseURL, "/"), idOrAddress)
}
