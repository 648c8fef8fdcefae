package queries

import (
	"context"
	"strings"

	"ballotbox/contexts/governance/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/election-engine/domain/errors"
	"ballotbox/contexts/governance/election-engine/ports"
)

// ResultsUseCase is the read-only surface of the election engine. Queries
// have no guards, mutate nothing, and always return a detached snapshot, so
// a held result never reflects a later (or partially applied) transition.
type ResultsUseCase struct {
	Elections ports.ElectionRepository
}

// Tally returns the per-option counts together with phase and window.
func (uc ResultsUseCase) Tally(ctx context.Context, electionID string) (entities.TallySnapshot, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.TallySnapshot{}, err
	}
	return election.Tally(), nil
}

// Describe returns a detached copy of the whole aggregate for status reads.
func (uc ResultsUseCase) Describe(ctx context.Context, electionID string) (entities.Election, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	return election.Clone(), nil
}

// VoterStatus reports roll membership and ballot status for one identifier.
func (uc ResultsUseCase) VoterStatus(ctx context.Context, electionID string, voterID string) (entities.VoterStatus, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return entities.VoterStatus{}, domainerrors.ErrVoterNotFound
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.VoterStatus{}, err
	}
	return entities.VoterStatus{
		VoterID:    voterID,
		Registered: election.IsRegistered(voterID),
		HasVoted:   election.HasVoted(voterID),
	}, nil
}
