package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	Options []string `json:"options,omitempty"`
}

type ElectionResponse struct {
	ElectionID       string     `json:"election_id"`
	AdminID          string     `json:"admin_id"`
	Phase            string     `json:"phase"`
	Options          []string   `json:"options"`
	RegisteredVoters int        `json:"registered_voters"`
	BallotsCast      int        `json:"ballots_cast"`
	VotingStartsAt   *time.Time `json:"voting_starts_at,omitempty"`
	VotingEndsAt     *time.Time `json:"voting_ends_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type StartVotingRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

type CastVoteRequest struct {
	Option string `json:"option"`
}

type TallyResponse struct {
	ElectionID       string            `json:"election_id"`
	Phase            string            `json:"phase"`
	VoteCounts       map[string]uint64 `json:"vote_counts"`
	BallotsCast      int               `json:"ballots_cast"`
	RegisteredVoters int               `json:"registered_voters"`
	VotingStartsAt   *time.Time        `json:"voting_starts_at,omitempty"`
	VotingEndsAt     *time.Time        `json:"voting_ends_at,omitempty"`
}

type VoterStatusResponse struct {
	ElectionID string `json:"election_id"`
	VoterID    string `json:"voter_id"`
	Registered bool   `json:"registered"`
	HasVoted   bool   `json:"has_voted"`
}
