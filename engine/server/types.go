package server

import (
	deeprag "deeprag/engine/core"
)

// Config holds server configuration
type Config struct {
	Port  int    `json:"port"`
	Host  string `json:"host"`
	Debug bool   `json:"debug"`

	// DefaultLifetimeSeconds applies when a reservation request omits its
	// own lifetime.
	DefaultLifetimeSeconds float64 `json:"default_lifetime_seconds"`
}

// ReserveRequest is the body of POST /api/v1/reservations.
type ReserveRequest struct {
	LifetimeSeconds float64 `json:"lifetimeSeconds"`
	NameHint        string  `json:"nameHint"`
}

// DeployRequest is the body of POST /api/v1/deployments. Every key must be
// a previously reserved identifier.
type DeployRequest struct {
	Deployments map[string]*deeprag.NetworkSpec `json:"deployments"`
}

// DeployResponse reports the outcome of a batch deploy. BatchID is only
// an audit handle for logs; reservations are addressed by their own ids.
type DeployResponse struct {
	BatchID   string   `json:"batchId"`
	Deployed  []string `json:"deployed"`
	Confirmed bool     `json:"confirmed"`
}

// NetworkRecord is what GET /api/v1/networks/{id} returns for a live
// network.
type NetworkRecord struct {
	Reservation *deeprag.Reservation `json:"reservation"`
	Spec        *deeprag.NetworkSpec `json:"spec"`
}
