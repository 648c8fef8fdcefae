package entities

import (
	"strings"
	"time"

	domainerrors "ballotbox/contexts/governance/election-engine/domain/errors"
)

// Phase is the discrete stage of the election lifecycle. Exactly one phase is
// current at any time.
type Phase string

const (
	PhaseRegistrationOpen Phase = "registration_open"
	PhaseVotingActive     Phase = "voting_active"
	PhaseResultsFinalized Phase = "results_finalized"
)

// Election is the aggregate root of the voting state machine. All six
// transitions mutate it through the methods below; every method checks its
// guards in full before touching any field, so a failed call leaves the
// aggregate exactly as it found it.
//
// The aggregate never reads a clock itself. Callers pass the current time in,
// which keeps transitions deterministic and replayable.
type Election struct {
	ElectionID       string
	AdminID          string
	Phase            Phase
	Options          []string
	RegisteredVoters map[string]struct{}
	VotesCast        map[string]struct{}
	VoteCounts       map[string]uint64
	VotingStartsAt   *time.Time
	VotingEndsAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewElection creates an election in RegistrationOpen with a zeroed total
// tally over the closed option set. The admin identity is fixed for the
// lifetime of the aggregate.
func NewElection(electionID string, adminID string, options []string, now time.Time) (Election, error) {
	electionID = strings.TrimSpace(electionID)
	adminID = strings.TrimSpace(adminID)
	if electionID == "" || adminID == "" {
		return Election{}, domainerrors.ErrInvalidElection
	}

	normalized := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return Election{}, domainerrors.ErrInvalidElection
		}
		if _, dup := seen[option]; dup {
			return Election{}, domainerrors.ErrInvalidElection
		}
		seen[option] = struct{}{}
		normalized = append(normalized, option)
	}
	if len(normalized) < 2 {
		return Election{}, domainerrors.ErrInvalidElection
	}

	counts := make(map[string]uint64, len(normalized))
	for _, option := range normalized {
		counts[option] = 0
	}
	return Election{
		ElectionID:       electionID,
		AdminID:          adminID,
		Phase:            PhaseRegistrationOpen,
		Options:          normalized,
		RegisteredVoters: make(map[string]struct{}),
		VotesCast:        make(map[string]struct{}),
		VoteCounts:       counts,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}, nil
}

// StartRegistration opens a fresh registration round after a finished (or
// aborted) election. Calling it while registration is already open is an
// error rather than a no-op, so an accidental double reset is visible.
func (e *Election) StartRegistration(callerID string, now time.Time) error {
	if !e.isAdmin(callerID) {
		return domainerrors.ErrUnauthorized
	}
	if e.Phase == PhaseRegistrationOpen {
		return domainerrors.ErrInvalidState
	}
	e.clearRound(now)
	return nil
}

// RegisterVoter adds the caller to the voter roll while registration is open.
func (e *Election) RegisterVoter(callerID string, now time.Time) error {
	if e.Phase != PhaseRegistrationOpen {
		return domainerrors.ErrInvalidState
	}
	if e.IsRegistered(callerID) {
		return domainerrors.ErrAlreadyRegistered
	}
	e.RegisteredVoters[strings.TrimSpace(callerID)] = struct{}{}
	e.UpdatedAt = now.UTC()
	return nil
}

// StartVoting closes registration and opens the voting window
// [now, now+duration]. Both window bounds are set together.
func (e *Election) StartVoting(callerID string, duration time.Duration, now time.Time) error {
	if !e.isAdmin(callerID) {
		return domainerrors.ErrUnauthorized
	}
	if e.Phase != PhaseRegistrationOpen {
		return domainerrors.ErrInvalidState
	}
	if duration <= 0 {
		return domainerrors.ErrInvalidDuration
	}
	startsAt := now.UTC()
	endsAt := startsAt.Add(duration)
	e.VotingStartsAt = &startsAt
	e.VotingEndsAt = &endsAt
	e.Phase = PhaseVotingActive
	e.UpdatedAt = startsAt
	return nil
}

// CastVote records a single ballot for a registered voter inside the voting
// window. Guards are checked in order of specificity: phase, roll membership,
// double vote, window, option.
func (e *Election) CastVote(callerID string, option string, now time.Time) error {
	if e.Phase != PhaseVotingActive {
		return domainerrors.ErrInvalidState
	}
	if !e.IsRegistered(callerID) {
		return domainerrors.ErrNotRegistered
	}
	if e.HasVoted(callerID) {
		return domainerrors.ErrAlreadyVoted
	}
	at := now.UTC()
	if at.Before(*e.VotingStartsAt) || at.After(*e.VotingEndsAt) {
		return domainerrors.ErrOutsideVotingWindow
	}
	option = strings.TrimSpace(option)
	if !e.HasOption(option) {
		return domainerrors.ErrInvalidOption
	}
	e.VotesCast[strings.TrimSpace(callerID)] = struct{}{}
	e.VoteCounts[option]++
	e.UpdatedAt = at
	return nil
}

// EndVoting finalizes results once the window has elapsed. The window bounds
// are kept so the finalized tally still reports when voting ran.
func (e *Election) EndVoting(callerID string, now time.Time) error {
	if !e.isAdmin(callerID) {
		return domainerrors.ErrUnauthorized
	}
	if e.Phase != PhaseVotingActive {
		return domainerrors.ErrInvalidState
	}
	if !now.UTC().After(*e.VotingEndsAt) {
		return domainerrors.ErrTooEarly
	}
	e.Phase = PhaseResultsFinalized
	e.UpdatedAt = now.UTC()
	return nil
}

// Reset is the admin escape hatch: it returns the election to its
// initial-equivalent state from any phase, mid-election included. Admin
// identity and the option set persist across resets.
func (e *Election) Reset(callerID string, now time.Time) error {
	if !e.isAdmin(callerID) {
		return domainerrors.ErrUnauthorized
	}
	e.clearRound(now)
	return nil
}

func (e *Election) clearRound(now time.Time) {
	e.RegisteredVoters = make(map[string]struct{})
	e.VotesCast = make(map[string]struct{})
	for option := range e.VoteCounts {
		e.VoteCounts[option] = 0
	}
	e.VotingStartsAt = nil
	e.VotingEndsAt = nil
	e.Phase = PhaseRegistrationOpen
	e.UpdatedAt = now.UTC()
}

func (e *Election) isAdmin(callerID string) bool {
	return strings.TrimSpace(callerID) == e.AdminID
}

// IsRegistered reports whether the identifier is on the voter roll.
func (e Election) IsRegistered(voterID string) bool {
	_, ok := e.RegisteredVoters[strings.TrimSpace(voterID)]
	return ok
}

// HasVoted reports whether the identifier already cast a ballot this round.
func (e Election) HasVoted(voterID string) bool {
	_, ok := e.VotesCast[strings.TrimSpace(voterID)]
	return ok
}

// HasOption reports whether the option is part of the closed ballot set.
func (e Election) HasOption(option string) bool {
	_, ok := e.VoteCounts[strings.TrimSpace(option)]
	return ok
}

// VoteCount returns the tally for one option. Unknown options read as zero.
func (e Election) VoteCount(option string) uint64 {
	return e.VoteCounts[strings.TrimSpace(option)]
}

// BallotsCast is the number of voters who have voted this round. It equals
// the sum of all option tallies at all times.
func (e Election) BallotsCast() int {
	return len(e.VotesCast)
}

// Clone returns a deep copy so stored snapshots and query results never share
// mutable map state with a live aggregate.
func (e Election) Clone() Election {
	clone := e
	clone.Options = append([]string(nil), e.Options...)
	clone.RegisteredVoters = make(map[string]struct{}, len(e.RegisteredVoters))
	for voter := range e.RegisteredVoters {
		clone.RegisteredVoters[voter] = struct{}{}
	}
	clone.VotesCast = make(map[string]struct{}, len(e.VotesCast))
	for voter := range e.VotesCast {
		clone.VotesCast[voter] = struct{}{}
	}
	clone.VoteCounts = make(map[string]uint64, len(e.VoteCounts))
	for option, count := range e.VoteCounts {
		clone.VoteCounts[option] = count
	}
	if e.VotingStartsAt != nil {
		startsAt := *e.VotingStartsAt
		clone.VotingStartsAt = &startsAt
	}
	if e.VotingEndsAt != nil {
		endsAt := *e.VotingEndsAt
		clone.VotingEndsAt = &endsAt
	}
	return clone
}

// TallySnapshot is a read-only view of the current results.
type TallySnapshot struct {
	ElectionID       string
	Phase            Phase
	VoteCounts       map[string]uint64
	BallotsCast      int
	RegisteredVoters int
	VotingStartsAt   *time.Time
	VotingEndsAt     *time.Time
}

// Tally snapshots the per-option counts. The snapshot is detached from the
// aggregate, so a later transition never shows through a held result.
func (e Election) Tally() TallySnapshot {
	counts := make(map[string]uint64, len(e.VoteCounts))
	for option, count := range e.VoteCounts {
		counts[option] = count
	}
	snapshot := TallySnapshot{
		ElectionID:       e.ElectionID,
		Phase:            e.Phase,
		VoteCounts:       counts,
		BallotsCast:      len(e.VotesCast),
		RegisteredVoters: len(e.RegisteredVoters),
	}
	if e.VotingStartsAt != nil {
		startsAt := *e.VotingStartsAt
		snapshot.VotingStartsAt = &startsAt
	}
	if e.VotingEndsAt != nil {
		endsAt := *e.VotingEndsAt
		snapshot.VotingEndsAt = &endsAt
	}
	return snapshot
}

// VoterStatus is a read-only view of one identifier's standing.
type VoterStatus struct {
	VoterID    string
	Registered bool
	HasVoted   bool
}
