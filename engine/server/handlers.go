package server

import (
	"encoding/json"
	"net/http"

	deeprag "deeprag/engine/core"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/health", s.healthCheck).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	reservations := api.PathPrefix("/reservations").Subrouter()
	reservations.HandleFunc("", s.createReservation).Methods("POST")
	reservations.HandleFunc("", s.listReservations).Methods("GET")
	reservations.HandleFunc("", s.handleOptions).Methods("OPTIONS")

	deployments := api.PathPrefix("/deployments").Subrouter()
	deployments.HandleFunc("", s.createDeployment).Methods("POST")
	deployments.HandleFunc("", s.handleOptions).Methods("OPTIONS")

	networks := api.PathPrefix("/networks").Subrouter()
	networks.HandleFunc("/{id}", s.getNetwork).Methods("GET")
	networks.HandleFunc("/{id}", s.handleOptions).Methods("OPTIONS")
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":       "healthy",
		"reservations": len(s.store.ListReservations()),
		"version":      "1.0.0",
		"server":       "deeprag",
	}
	json.NewEncoder(w).Encode(health)
}

func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid reservation request", http.StatusBadRequest)
		return
	}
	if req.LifetimeSeconds <= 0 {
		req.LifetimeSeconds = s.config.DefaultLifetimeSeconds
	}

	res, err := s.store.Reserve(req.LifetimeSeconds, req.NameHint)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(res)
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.store.ListReservations())
}

func (s *Server) createDeployment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid deployment request", http.StatusBadRequest)
		return
	}
	if len(req.Deployments) == 0 {
		http.Error(w, "Deployment batch is empty", http.StatusBadRequest)
		return
	}

	batchID := uuid.New().String()
	if err := s.store.Deploy(req.Deployments); err != nil {
		deeprag.InfoLog("[SERVER] Deploy batch %s rejected: %v\n", batchID, err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	deeprag.InfoLog("[SERVER] Deploy batch %s committed (%d networks)\n", batchID, len(req.Deployments))

	confirm := r.URL.Query().Get("confirm") == "true"
	if confirm {
		ids := make([]string, 0, len(req.Deployments))
		for id := range req.Deployments {
			ids = append(ids, id)
		}
		if err := s.store.AwaitLive(r.Context(), ids); err != nil {
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		}
	}

	deployed := make([]string, 0, len(req.Deployments))
	for id := range req.Deployments {
		deployed = append(deployed, id)
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(DeployResponse{BatchID: batchID, Deployed: deployed, Confirmed: confirm})
}

func (s *Server) getNetwork(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	res, spec, exists := s.store.Get(vars["id"])
	if !exists {
		http.Error(w, "Network not found", http.StatusNotFound)
		return
	}
	if res.State != deeprag.ReservationDeployed || spec == nil {
		http.Error(w, "Network not deployed", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(NetworkRecord{Reservation: res, Spec: spec})
}
