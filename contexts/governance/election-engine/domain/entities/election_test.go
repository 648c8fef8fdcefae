package entities

import (
	"errors"
	"reflect"
	"testing"
	"time"

	domainerrors "ballotbox/contexts/governance/election-engine/domain/errors"
)

var baseTime = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestElection(t *testing.T) Election {
	t.Helper()
	election, err := NewElection("election-1", "admin-1", []string{"yes", "no"}, baseTime)
	if err != nil {
		t.Fatalf("new election failed: %v", err)
	}
	return election
}

func TestNewElectionInitialState(t *testing.T) {
	election := newTestElection(t)

	if election.Phase != PhaseRegistrationOpen {
		t.Fatalf("expected initial phase registration_open, got %s", election.Phase)
	}
	if election.AdminID != "admin-1" {
		t.Fatalf("expected admin-1, got %s", election.AdminID)
	}
	if len(election.RegisteredVoters) != 0 || len(election.VotesCast) != 0 {
		t.Fatalf("expected empty collections")
	}
	if election.VotingStartsAt != nil || election.VotingEndsAt != nil {
		t.Fatalf("expected unset voting window")
	}
	for _, option := range []string{"yes", "no"} {
		if count := election.VoteCount(option); count != 0 {
			t.Fatalf("expected zero tally for %s, got %d", option, count)
		}
	}
}

func TestNewElectionRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		admin   string
		options []string
	}{
		{"blank admin", "election-1", "  ", []string{"yes", "no"}},
		{"blank id", "", "admin-1", []string{"yes", "no"}},
		{"single option", "election-1", "admin-1", []string{"yes"}},
		{"no options", "election-1", "admin-1", nil},
		{"duplicate option", "election-1", "admin-1", []string{"yes", "yes"}},
		{"blank option", "election-1", "admin-1", []string{"yes", " "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewElection(tc.id, tc.admin, tc.options, baseTime); !errors.Is(err, domainerrors.ErrInvalidElection) {
				t.Fatalf("expected ErrInvalidElection, got %v", err)
			}
		})
	}
}

func TestRegisterVoter(t *testing.T) {
	election := newTestElection(t)

	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !election.IsRegistered("voter-1") {
		t.Fatalf("expected voter-1 registered")
	}

	before := election.Clone()
	err := election.RegisterVoter("voter-1", baseTime.Add(time.Second))
	if !errors.Is(err, domainerrors.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if !reflect.DeepEqual(before, election) {
		t.Fatalf("state changed on rejected registration")
	}
}

func TestRegisterVoterOutsideRegistrationPhase(t *testing.T) {
	election := newTestElection(t)
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}

	if err := election.RegisterVoter("voter-1", baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestStartVotingGuards(t *testing.T) {
	election := newTestElection(t)
	before := election.Clone()

	if err := election.StartVoting("voter-1", time.Minute, baseTime); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := election.StartVoting("admin-1", 0, baseTime); !errors.Is(err, domainerrors.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for zero duration, got %v", err)
	}
	if err := election.StartVoting("admin-1", -time.Second, baseTime); !errors.Is(err, domainerrors.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration for negative duration, got %v", err)
	}
	if !reflect.DeepEqual(before, election) {
		t.Fatalf("state changed after rejected start_voting")
	}
	if election.Phase != PhaseRegistrationOpen {
		t.Fatalf("expected phase still registration_open, got %s", election.Phase)
	}

	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}
	if election.Phase != PhaseVotingActive {
		t.Fatalf("expected voting_active, got %s", election.Phase)
	}
	if election.VotingStartsAt == nil || election.VotingEndsAt == nil {
		t.Fatalf("expected window set")
	}
	if !election.VotingEndsAt.Equal(election.VotingStartsAt.Add(100 * time.Second)) {
		t.Fatalf("expected end = start + duration")
	}

	// Already active: a second start_voting must fail on the state guard.
	if err := election.StartVoting("admin-1", time.Minute, baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCastVoteGuardOrder(t *testing.T) {
	election := newTestElection(t)

	// Phase guard fires first, even for unregistered callers.
	if err := election.CastVote("voter-9", "yes", baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState before voting starts, got %v", err)
	}

	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}

	late := baseTime.Add(150 * time.Second)

	// Roll membership beats the window check: an unregistered caller outside
	// the window still reads NotRegistered.
	if err := election.CastVote("voter-9", "bogus", late); !errors.Is(err, domainerrors.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	if err := election.CastVote("voter-1", "yes", baseTime.Add(10*time.Second)); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	// Double vote beats window and option checks.
	if err := election.CastVote("voter-1", "bogus", late); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	if err := election.RegisterVoter("voter-2", baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected registration closed, got %v", err)
	}
}

func TestCastVoteWindowAndOption(t *testing.T) {
	election := newTestElection(t)
	for _, voter := range []string{"voter-1", "voter-2", "voter-3", "voter-4"} {
		if err := election.RegisterVoter(voter, baseTime); err != nil {
			t.Fatalf("register %s failed: %v", voter, err)
		}
	}
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}
	endsAt := *election.VotingEndsAt

	// Window beats the option check.
	if err := election.CastVote("voter-1", "bogus", endsAt.Add(time.Second)); !errors.Is(err, domainerrors.ErrOutsideVotingWindow) {
		t.Fatalf("expected ErrOutsideVotingWindow, got %v", err)
	}

	if err := election.CastVote("voter-1", "bogus", baseTime.Add(time.Second)); !errors.Is(err, domainerrors.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if election.BallotsCast() != 0 {
		t.Fatalf("expected no ballots after rejected votes, got %d", election.BallotsCast())
	}

	// Both window bounds accept votes.
	if err := election.CastVote("voter-1", "yes", baseTime); err != nil {
		t.Fatalf("vote at window start failed: %v", err)
	}
	if err := election.CastVote("voter-2", "no", endsAt); err != nil {
		t.Fatalf("vote at window end failed: %v", err)
	}
	if err := election.CastVote("voter-3", "yes", baseTime.Add(-time.Second)); !errors.Is(err, domainerrors.ErrOutsideVotingWindow) {
		t.Fatalf("expected ErrOutsideVotingWindow before start, got %v", err)
	}

	if got := election.VoteCount("yes"); got != 1 {
		t.Fatalf("expected 1 yes vote, got %d", got)
	}
	if got := election.VoteCount("no"); got != 1 {
		t.Fatalf("expected 1 no vote, got %d", got)
	}
}

func TestEndVotingGuards(t *testing.T) {
	election := newTestElection(t)

	if err := election.EndVoting("admin-1", baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState before voting, got %v", err)
	}

	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}
	endsAt := *election.VotingEndsAt

	if err := election.EndVoting("voter-1", endsAt.Add(time.Second)); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := election.EndVoting("admin-1", baseTime.Add(5*time.Second)); !errors.Is(err, domainerrors.ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly mid-window, got %v", err)
	}
	// The window is inclusive of its end, so ending exactly at the bound is
	// still too early.
	if err := election.EndVoting("admin-1", endsAt); !errors.Is(err, domainerrors.ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly at window end, got %v", err)
	}
	if election.Phase != PhaseVotingActive {
		t.Fatalf("expected still voting_active, got %s", election.Phase)
	}

	if err := election.EndVoting("admin-1", endsAt.Add(time.Second)); err != nil {
		t.Fatalf("end voting failed: %v", err)
	}
	if election.Phase != PhaseResultsFinalized {
		t.Fatalf("expected results_finalized, got %s", election.Phase)
	}
	if election.VotingStartsAt == nil || election.VotingEndsAt == nil {
		t.Fatalf("expected finalized results to keep the window")
	}
}

func TestFullLifecycleScenario(t *testing.T) {
	election := newTestElection(t)

	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register voter-1 failed: %v", err)
	}
	if err := election.RegisterVoter("voter-2", baseTime); err != nil {
		t.Fatalf("register voter-2 failed: %v", err)
	}
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}

	if err := election.CastVote("voter-1", "yes", baseTime.Add(10*time.Second)); err != nil {
		t.Fatalf("voter-1 vote failed: %v", err)
	}
	if got := election.VoteCount("yes"); got != 1 {
		t.Fatalf("expected yes tally 1, got %d", got)
	}
	if err := election.CastVote("voter-1", "yes", baseTime.Add(11*time.Second)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if err := election.CastVote("voter-3", "yes", baseTime.Add(12*time.Second)); !errors.Is(err, domainerrors.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	late := baseTime.Add(150 * time.Second)
	if err := election.CastVote("voter-2", "yes", late); !errors.Is(err, domainerrors.ErrOutsideVotingWindow) {
		t.Fatalf("expected ErrOutsideVotingWindow, got %v", err)
	}
	if err := election.EndVoting("admin-1", late); err != nil {
		t.Fatalf("end voting failed: %v", err)
	}
	if election.Phase != PhaseResultsFinalized {
		t.Fatalf("expected results_finalized, got %s", election.Phase)
	}
	if got := election.VoteCount("yes"); got != 1 {
		t.Fatalf("expected final yes tally 1, got %d", got)
	}

	assertInvariants(t, election)
}

func TestResetFromEveryPhase(t *testing.T) {
	prepare := map[string]func(t *testing.T, election *Election){
		"registration_open": func(t *testing.T, election *Election) {
			if err := election.RegisterVoter("voter-1", baseTime); err != nil {
				t.Fatalf("register failed: %v", err)
			}
		},
		"voting_active": func(t *testing.T, election *Election) {
			if err := election.RegisterVoter("voter-1", baseTime); err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
				t.Fatalf("start voting failed: %v", err)
			}
			if err := election.CastVote("voter-1", "yes", baseTime.Add(time.Second)); err != nil {
				t.Fatalf("vote failed: %v", err)
			}
		},
		"results_finalized": func(t *testing.T, election *Election) {
			if err := election.RegisterVoter("voter-1", baseTime); err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
				t.Fatalf("start voting failed: %v", err)
			}
			if err := election.EndVoting("admin-1", baseTime.Add(101*time.Second)); err != nil {
				t.Fatalf("end voting failed: %v", err)
			}
		},
	}

	for name, setup := range prepare {
		t.Run(name, func(t *testing.T) {
			election := newTestElection(t)
			setup(t, &election)

			if err := election.Reset("voter-1", baseTime.Add(time.Hour)); !errors.Is(err, domainerrors.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized for non-admin reset, got %v", err)
			}
			if err := election.Reset("admin-1", baseTime.Add(time.Hour)); err != nil {
				t.Fatalf("reset failed: %v", err)
			}

			if election.Phase != PhaseRegistrationOpen {
				t.Fatalf("expected registration_open after reset, got %s", election.Phase)
			}
			if election.AdminID != "admin-1" {
				t.Fatalf("expected admin unchanged, got %s", election.AdminID)
			}
			if len(election.RegisteredVoters) != 0 || len(election.VotesCast) != 0 {
				t.Fatalf("expected cleared collections after reset")
			}
			if election.VotingStartsAt != nil || election.VotingEndsAt != nil {
				t.Fatalf("expected cleared window after reset")
			}
			for _, option := range election.Options {
				if election.VoteCount(option) != 0 {
					t.Fatalf("expected zero tally for %s after reset", option)
				}
			}
		})
	}
}

func TestStartRegistrationGuards(t *testing.T) {
	election := newTestElection(t)

	// Already open: rejected rather than treated as a no-op.
	if err := election.StartRegistration("admin-1", baseTime); !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState while already open, got %v", err)
	}

	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}
	if err := election.EndVoting("admin-1", baseTime.Add(101*time.Second)); err != nil {
		t.Fatalf("end voting failed: %v", err)
	}

	if err := election.StartRegistration("voter-1", baseTime); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := election.StartRegistration("admin-1", baseTime.Add(200*time.Second)); err != nil {
		t.Fatalf("start registration failed: %v", err)
	}
	if election.Phase != PhaseRegistrationOpen {
		t.Fatalf("expected registration_open, got %s", election.Phase)
	}
	if len(election.RegisteredVoters) != 0 {
		t.Fatalf("expected roll cleared for the new round")
	}
}

func TestUnauthorizedOperationsLeaveStateUntouched(t *testing.T) {
	election := newTestElection(t)
	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	before := election.Clone()

	ops := map[string]func() error{
		"start_voting":       func() error { return election.StartVoting("voter-1", time.Minute, baseTime) },
		"end_voting":         func() error { return election.EndVoting("voter-1", baseTime) },
		"reset":              func() error { return election.Reset("voter-1", baseTime) },
		"start_registration": func() error { return election.StartRegistration("voter-1", baseTime) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, domainerrors.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
		if !reflect.DeepEqual(before, election) {
			t.Fatalf("%s: state changed on unauthorized call", name)
		}
	}
}

func TestInvariantsHoldAcrossOperations(t *testing.T) {
	election := newTestElection(t)
	now := baseTime

	steps := []func() error{
		func() error { return election.RegisterVoter("voter-1", now) },
		func() error { return election.RegisterVoter("voter-2", now) },
		func() error { return election.RegisterVoter("voter-2", now) },
		func() error { return election.StartVoting("admin-1", 100*time.Second, now) },
		func() error { return election.CastVote("voter-1", "yes", now.Add(5*time.Second)) },
		func() error { return election.CastVote("voter-2", "no", now.Add(6*time.Second)) },
		func() error { return election.CastVote("voter-2", "no", now.Add(7*time.Second)) },
		func() error { return election.EndVoting("admin-1", now.Add(101*time.Second)) },
		func() error { return election.Reset("admin-1", now.Add(time.Hour)) },
	}
	for i, step := range steps {
		_ = step() // some steps intentionally fail their guards
		assertInvariants(t, election)
		if t.Failed() {
			t.Fatalf("invariant broken after step %d", i)
		}
	}
}

func TestTallySnapshotIsDetached(t *testing.T) {
	election := newTestElection(t)
	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := election.StartVoting("admin-1", 100*time.Second, baseTime); err != nil {
		t.Fatalf("start voting failed: %v", err)
	}

	snapshot := election.Tally()
	if err := election.CastVote("voter-1", "yes", baseTime.Add(time.Second)); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if snapshot.VoteCounts["yes"] != 0 {
		t.Fatalf("snapshot reflected a later vote")
	}
	if snapshot.BallotsCast != 0 {
		t.Fatalf("snapshot ballots changed, got %d", snapshot.BallotsCast)
	}
}

func TestCloneIsolation(t *testing.T) {
	election := newTestElection(t)
	if err := election.RegisterVoter("voter-1", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	clone := election.Clone()
	if err := election.RegisterVoter("voter-2", baseTime); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if clone.IsRegistered("voter-2") {
		t.Fatalf("clone shares roll state with the original")
	}
}

func assertInvariants(t *testing.T, election Election) {
	t.Helper()
	for voter := range election.VotesCast {
		if !election.IsRegistered(voter) {
			t.Fatalf("votes_cast contains unregistered voter %s", voter)
		}
	}
	var total uint64
	for _, count := range election.VoteCounts {
		total += count
	}
	if total != uint64(election.BallotsCast()) {
		t.Fatalf("tally sum %d != ballots cast %d", total, election.BallotsCast())
	}
	bothSet := election.VotingStartsAt != nil && election.VotingEndsAt != nil
	bothUnset := election.VotingStartsAt == nil && election.VotingEndsAt == nil
	if !bothSet && !bothUnset {
		t.Fatalf("voting window half-set")
	}
	if bothSet && !election.VotingEndsAt.After(*election.VotingStartsAt) {
		t.Fatalf("voting window end not after start")
	}
	switch election.Phase {
	case PhaseRegistrationOpen, PhaseVotingActive, PhaseResultsFinalized:
	default:
		t.Fatalf("unknown phase %q", election.Phase)
	}
}
