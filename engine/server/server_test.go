package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	deeprag "deeprag/engine/core"

	"github.com/stretchr/testify/assert"
)

// Helper to create a test server instance
func setupTestServer() *Server {
	config := Config{Port: 18080, Host: "localhost", Debug: true}
	server := New(config)
	server.setupRoutes()
	return server
}

func testSpec(name string) *deeprag.NetworkSpec {
	return &deeprag.NetworkSpec{
		Name: name,
		Tools: []deeprag.ToolSpec{
			{"name": "front_man", "tools": []any{}},
		},
	}
}

func reserveViaAPI(t *testing.T, s *Server, lifetime float64, hint string) deeprag.Reservation {
	t.Helper()
	body, _ := json.Marshal(ReserveRequest{LifetimeSeconds: lifetime, NameHint: hint})
	req, _ := http.NewRequest("POST", "/api/v1/reservations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var res deeprag.Reservation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "deeprag", resp["server"])
}

func TestReservationAPI(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	res := reserveViaAPI(t, s, 300, "Quantum Papers")

	assert.True(t, strings.HasPrefix(res.ID, "quantum_papers-"), "id %q should carry the sanitized hint prefix", res.ID)
	assert.Equal(t, "http://localhost:18080/api/v1/networks/"+res.ID, res.Address)
	assert.Equal(t, deeprag.ReservationPending, res.State)
	assert.InDelta(t, 300, res.RemainingSeconds(), 5)
}

func TestDeployAndQueryNetwork(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	res := reserveViaAPI(t, s, 300, "manuals")

	body, _ := json.Marshal(DeployRequest{
		Deployments: map[string]*deeprag.NetworkSpec{res.ID: testSpec("manuals")},
	})
	req, _ := http.NewRequest("POST", "/api/v1/deployments?confirm=true", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp DeployResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Confirmed)
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, []string{res.ID}, resp.Deployed)

	// The network is now queryable at its id.
	req, _ = http.NewRequest("GET", "/api/v1/networks/"+res.ID, nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var record NetworkRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, deeprag.ReservationDeployed, record.Reservation.State)
	assert.Equal(t, "manuals", record.Spec.Name)
}

func TestDeployBatchIsAtomic(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	good := reserveViaAPI(t, s, 300, "good")

	body, _ := json.Marshal(DeployRequest{
		Deployments: map[string]*deeprag.NetworkSpec{
			good.ID:        testSpec("good"),
			"never-leased": testSpec("bad"),
		},
	})
	req, _ := http.NewRequest("POST", "/api/v1/deployments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	// The valid member must be untouched by the rejected batch.
	res, _, exists := s.store.Get(good.ID)
	assert.True(t, exists)
	assert.Equal(t, deeprag.ReservationPending, res.State)
}

func TestDeployEmptyBatch(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	body, _ := json.Marshal(DeployRequest{})
	req, _ := http.NewRequest("POST", "/api/v1/deployments", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownNetwork(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	req, _ := http.NewRequest("GET", "/api/v1/networks/no-such-id", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationExpires(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()

	res := reserveViaAPI(t, s, 0.05, "shortlived")
	assert.NoError(t, s.store.Deploy(map[string]*deeprag.NetworkSpec{res.ID: testSpec("shortlived")}))

	// The reaper runs on a one-second tick.
	time.Sleep(1500 * time.Millisecond)

	req, _ := http.NewRequest("GET", "/api/v1/networks/"+res.ID, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	stored, _, exists := s.store.Get(res.ID)
	assert.True(t, exists)
	assert.Equal(t, deeprag.ReservationExpired, stored.State)
}

func TestLocalReservationistConfirmedDeploy(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()
	lr := NewLocalReservationist(s.store)

	ctx := context.Background()
	res, err := lr.Reserve(ctx, 300, "local group")
	assert.NoError(t, err)
	assert.Equal(t, deeprag.ReservationPending, res.State)

	confirmation, err := lr.Deploy(ctx, []deeprag.Deployment{{Reservation: res, Spec: testSpec("local")}}, true)
	assert.NoError(t, err)
	assert.NotNil(t, confirmation)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	assert.NoError(t, confirmation.Wait(waitCtx))
	assert.Equal(t, deeprag.ReservationDeployed, res.State)
}

func TestLocalReservationistFireAndForget(t *testing.T) {
	s := setupTestServer()
	defer s.store.Close()
	lr := NewLocalReservationist(s.store)

	ctx := context.Background()
	res, err := lr.Reserve(ctx, 300, "fire and forget")
	assert.NoError(t, err)

	confirmation, err := lr.Deploy(ctx, []deeprag.Deployment{{Reservation: res, Spec: testSpec("faf")}}, false)
	assert.NoError(t, err)
	assert.Nil(t, confirmation)

	// No availability promise was made to the caller.
	assert.Equal(t, deeprag.ReservationPending, res.State)
}
