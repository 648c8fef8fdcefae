package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ballotbox/contexts/governance/election-engine/application/commands"
	"ballotbox/contexts/governance/election-engine/application/queries"
	"ballotbox/contexts/governance/election-engine/domain/entities"
	httptransport "ballotbox/contexts/governance/election-engine/transport/http"
)

// Handler maps transport DTOs onto use-case commands. The caller identifier
// arrives already authenticated by the hosting server.
type Handler struct {
	Elections commands.ElectionUseCase
	Results   queries.ResultsUseCase
	Logger    *slog.Logger
}

// CreateElectionHandler provisions a new election with the caller as admin.
//
//	@Summary	Create an election
//	@Tags		elections
//	@Param		X-User-Id	header	string	true	"authenticated caller"
//	@Success	200	{object}	http.ElectionResponse
//	@Router		/v1/elections [post]
func (h Handler) CreateElectionHandler(
	ctx context.Context,
	callerID string,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		AdminID: callerID,
		Options: req.Options,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// GetElectionHandler returns the phase/window/admin snapshot.
//
//	@Summary	Describe an election
//	@Tags		elections
//	@Success	200	{object}	http.ElectionResponse
//	@Router		/v1/elections/{election_id} [get]
func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Results.Describe(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// StartRegistrationHandler reopens registration for a new round.
//
//	@Summary	Reopen registration
//	@Tags		elections
//	@Router		/v1/elections/{election_id}/registration [post]
func (h Handler) StartRegistrationHandler(ctx context.Context, electionID string, callerID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.StartRegistration(ctx, commands.TransitionCommand{
		ElectionID: electionID,
		CallerID:   callerID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// RegisterVoterHandler puts the caller on the voter roll.
//
//	@Summary	Register as a voter
//	@Tags		voters
//	@Router		/v1/elections/{election_id}/voters [post]
func (h Handler) RegisterVoterHandler(ctx context.Context, electionID string, callerID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.RegisterVoter(ctx, commands.TransitionCommand{
		ElectionID: electionID,
		CallerID:   callerID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// StartVotingHandler opens the voting window.
//
//	@Summary	Start the voting window
//	@Tags		elections
//	@Router		/v1/elections/{election_id}/voting [post]
func (h Handler) StartVotingHandler(
	ctx context.Context,
	electionID string,
	callerID string,
	req httptransport.StartVotingRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.StartVoting(ctx, commands.StartVotingCommand{
		ElectionID: electionID,
		CallerID:   callerID,
		Duration:   time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// CastVoteHandler records the caller's ballot.
//
//	@Summary	Cast a vote
//	@Tags		voters
//	@Router		/v1/elections/{election_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	electionID string,
	callerID string,
	req httptransport.CastVoteRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CastVote(ctx, commands.CastVoteCommand{
		ElectionID: electionID,
		CallerID:   callerID,
		Option:     req.Option,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// EndVotingHandler finalizes results after the window elapsed.
//
//	@Summary	End voting and finalize results
//	@Tags		elections
//	@Router		/v1/elections/{election_id}/end [post]
func (h Handler) EndVotingHandler(ctx context.Context, electionID string, callerID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.EndVoting(ctx, commands.TransitionCommand{
		ElectionID: electionID,
		CallerID:   callerID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// ResetHandler returns the election to its initial-equivalent state.
//
//	@Summary	Reset an election
//	@Tags		elections
//	@Router		/v1/elections/{election_id}/reset [post]
func (h Handler) ResetHandler(ctx context.Context, electionID string, callerID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Reset(ctx, commands.TransitionCommand{
		ElectionID: electionID,
		CallerID:   callerID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// ResultsHandler returns the read-only tally snapshot. Callable by anyone in
// any phase.
//
//	@Summary	Read the tally
//	@Tags		results
//	@Success	200	{object}	http.TallyResponse
//	@Router		/v1/elections/{election_id}/results [get]
func (h Handler) ResultsHandler(ctx context.Context, electionID string) (httptransport.TallyResponse, error) {
	tally, err := h.Results.Tally(ctx, electionID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{
		ElectionID:       tally.ElectionID,
		Phase:            string(tally.Phase),
		VoteCounts:       tally.VoteCounts,
		BallotsCast:      tally.BallotsCast,
		RegisteredVoters: tally.RegisteredVoters,
		VotingStartsAt:   tally.VotingStartsAt,
		VotingEndsAt:     tally.VotingEndsAt,
	}, nil
}

// VoterStatusHandler reports roll membership and ballot status.
//
//	@Summary	Read one voter's status
//	@Tags		voters
//	@Success	200	{object}	http.VoterStatusResponse
//	@Router		/v1/elections/{election_id}/voters/{voter_id} [get]
func (h Handler) VoterStatusHandler(ctx context.Context, electionID string, voterID string) (httptransport.VoterStatusResponse, error) {
	status, err := h.Results.VoterStatus(ctx, electionID, voterID)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	return httptransport.VoterStatusResponse{
		ElectionID: electionID,
		VoterID:    status.VoterID,
		Registered: status.Registered,
		HasVoted:   status.HasVoted,
	}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:       election.ElectionID,
		AdminID:          election.AdminID,
		Phase:            string(election.Phase),
		Options:          election.Options,
		RegisteredVoters: len(election.RegisteredVoters),
		BallotsCast:      election.BallotsCast(),
		VotingStartsAt:   election.VotingStartsAt,
		VotingEndsAt:     election.VotingEndsAt,
		CreatedAt:        election.CreatedAt,
		UpdatedAt:        election.UpdatedAt,
	}
}
