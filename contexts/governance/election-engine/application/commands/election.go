package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/governance/election-engine/application"
	"ballotbox/contexts/governance/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/election-engine/domain/errors"
	"ballotbox/contexts/governance/election-engine/ports"
)

// CreateElectionCommand provisions a new election aggregate. The caller
// becomes the election admin.
type CreateElectionCommand struct {
	AdminID string
	Options []string
}

// TransitionCommand is the shared input for phase transitions that carry no
// extra parameters (start_registration, end_voting, reset).
type TransitionCommand struct {
	ElectionID string
	CallerID   string
}

// StartVotingCommand opens the voting window for the given duration.
type StartVotingCommand struct {
	ElectionID string
	CallerID   string
	Duration   time.Duration
}

// CastVoteCommand records one ballot for one registered voter.
type CastVoteCommand struct {
	ElectionID string
	CallerID   string
	Option     string
}

// ElectionUseCase orchestrates the six state-machine operations: load the
// aggregate, run the pure transition against the injected clock, persist the
// new snapshot, and append the transition event to the outbox. Guards are
// enforced inside the aggregate, so no partial mutation can reach storage.
type ElectionUseCase struct {
	Elections      ports.ElectionRepository
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	DefaultOptions []string
	Logger         *slog.Logger
}

// CreateElection builds a fresh aggregate in RegistrationOpen. When the
// command carries no option set the configured default ballot is used.
func (uc ElectionUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	adminID := strings.TrimSpace(cmd.AdminID)
	if adminID == "" {
		return entities.Election{}, domainerrors.ErrInvalidElection
	}

	options := cmd.Options
	if len(options) == 0 {
		options = uc.DefaultOptions
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	now := uc.now()
	election, err := entities.NewElection(electionID, adminID, options, now)
	if err != nil {
		logger.Warn("election create validation failed",
			"event", "election_create_validation_failed",
			"module", "governance/election-engine",
			"layer", "application",
			"admin_id", adminID,
		)
		return entities.Election{}, err
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendElectionEvent(ctx, "election.created", election, now, map[string]any{
		"options": election.Options,
	}); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election created",
		"event", "election_created",
		"module", "governance/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"admin_id", election.AdminID,
	)
	return election, nil
}

// StartRegistration reopens registration after a finished or aborted round.
func (uc ElectionUseCase) StartRegistration(ctx context.Context, cmd TransitionCommand) (entities.Election, error) {
	return uc.transition(ctx, cmd, "election.registration_opened", "election_registration_opened",
		func(election *entities.Election, now time.Time) error {
			return election.StartRegistration(cmd.CallerID, now)
		})
}

// RegisterVoter puts the caller on the voter roll.
func (uc ElectionUseCase) RegisterVoter(ctx context.Context, cmd TransitionCommand) (entities.Election, error) {
	return uc.transition(ctx, cmd, "election.voter_registered", "election_voter_registered",
		func(election *entities.Election, now time.Time) error {
			return election.RegisterVoter(cmd.CallerID, now)
		})
}

// StartVoting moves the election into VotingActive with the window
// [now, now+duration].
func (uc ElectionUseCase) StartVoting(ctx context.Context, cmd StartVotingCommand) (entities.Election, error) {
	return uc.transition(ctx, TransitionCommand{ElectionID: cmd.ElectionID, CallerID: cmd.CallerID},
		"election.voting_started", "election_voting_started",
		func(election *entities.Election, now time.Time) error {
			return election.StartVoting(cmd.CallerID, cmd.Duration, now)
		})
}

// CastVote records one ballot for the calling voter.
func (uc ElectionUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Election, error) {
	return uc.transition(ctx, TransitionCommand{ElectionID: cmd.ElectionID, CallerID: cmd.CallerID},
		"election.vote_cast", "election_vote_cast",
		func(election *entities.Election, now time.Time) error {
			return election.CastVote(cmd.CallerID, cmd.Option, now)
		})
}

// EndVoting finalizes results once the window has elapsed.
func (uc ElectionUseCase) EndVoting(ctx context.Context, cmd TransitionCommand) (entities.Election, error) {
	return uc.transition(ctx, cmd, "election.results_finalized", "election_results_finalized",
		func(election *entities.Election, now time.Time) error {
			return election.EndVoting(cmd.CallerID, now)
		})
}

// Reset returns the election to its initial-equivalent state from any phase.
func (uc ElectionUseCase) Reset(ctx context.Context, cmd TransitionCommand) (entities.Election, error) {
	return uc.transition(ctx, cmd, "election.reset", "election_reset",
		func(election *entities.Election, now time.Time) error {
			return election.Reset(cmd.CallerID, now)
		})
}

func (uc ElectionUseCase) transition(
	ctx context.Context,
	cmd TransitionCommand,
	eventType string,
	logEvent string,
	apply func(election *entities.Election, now time.Time) error,
) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	callerID := strings.TrimSpace(cmd.CallerID)
	if electionID == "" || callerID == "" {
		return entities.Election{}, domainerrors.ErrInvalidElection
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Election{}, err
	}

	now := uc.now()
	if err := apply(&election, now); err != nil {
		logger.Warn("election transition rejected",
			"event", logEvent+"_rejected",
			"module", "governance/election-engine",
			"layer", "application",
			"election_id", electionID,
			"caller_id", callerID,
			"phase", string(election.Phase),
			"error", err.Error(),
		)
		return entities.Election{}, err
	}

	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendElectionEvent(ctx, eventType, election, now, map[string]any{
		"caller_id": callerID,
	}); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election transition applied",
		"event", logEvent,
		"module", "governance/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"caller_id", callerID,
		"phase", string(election.Phase),
		"ballots_cast", election.BallotsCast(),
	)
	return election, nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
