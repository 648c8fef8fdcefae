package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	electionengine "ballotbox/contexts/governance/election-engine"
	electionerrors "ballotbox/contexts/governance/election-engine/domain/errors"
	electionhttp "ballotbox/contexts/governance/election-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotbox/internal/platform/httpserver/docs"
)

// Server is the hosting boundary of the election engine: it authenticates the
// caller identifier (trusted X-User-Id header upstream of this service) and
// maps domain errors onto HTTP statuses. The state machine itself never sees
// the wire encoding.
type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	election electionengine.Module
}

func New(election electionengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		election: election,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/registration", s.handleStartRegistration)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/voting", s.handleStartVoting)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/end", s.handleEndVoting)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/reset", s.handleReset)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/results", s.handleResults)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/voters/{voter_id}", s.handleVoterStatus)
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	var req electionhttp.CreateElectionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}
	resp, err := s.election.Handler.CreateElectionHandler(r.Context(), callerID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartRegistration(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.StartRegistrationHandler(r.Context(), r.PathValue("election_id"), callerID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.RegisterVoterHandler(r.Context(), r.PathValue("election_id"), callerID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	var req electionhttp.StartVotingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.StartVotingHandler(r.Context(), r.PathValue("election_id"), callerID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	var req electionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.CastVoteHandler(r.Context(), r.PathValue("election_id"), callerID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndVoting(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.EndVotingHandler(r.Context(), r.PathValue("election_id"), callerID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.ResetHandler(r.Context(), r.PathValue("election_id"), callerID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.VoterStatusHandler(
		r.Context(),
		r.PathValue("election_id"),
		r.PathValue("voter_id"),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if callerID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return callerID, true
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrUnauthorized):
		writeElectionError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, electionerrors.ErrNotRegistered):
		writeElectionError(w, http.StatusForbidden, "not_registered", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidState):
		writeElectionError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyRegistered):
		writeElectionError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrOutsideVotingWindow):
		writeElectionError(w, http.StatusConflict, "outside_voting_window", err.Error())
	case errors.Is(err, electionerrors.ErrTooEarly):
		writeElectionError(w, http.StatusConflict, "too_early", err.Error())
	case errors.Is(err, electionerrors.ErrConflict):
		writeElectionError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidOption):
		writeElectionError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidDuration):
		writeElectionError(w, http.StatusUnprocessableEntity, "invalid_duration", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidElection):
		writeElectionError(w, http.StatusBadRequest, "invalid_election", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound),
		errors.Is(err, electionerrors.ErrVoterNotFound):
		writeElectionError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
