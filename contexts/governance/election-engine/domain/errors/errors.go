package errors

import "errors"

var (
	ErrUnauthorized        = errors.New("caller is not the election admin")
	ErrInvalidState        = errors.New("operation is not allowed in the current phase")
	ErrAlreadyRegistered   = errors.New("voter is already registered")
	ErrNotRegistered       = errors.New("voter is not registered")
	ErrAlreadyVoted        = errors.New("voter has already cast a ballot")
	ErrOutsideVotingWindow = errors.New("current time is outside the voting window")
	ErrInvalidOption       = errors.New("vote option is not on the ballot")
	ErrInvalidDuration     = errors.New("voting duration must be positive")
	ErrTooEarly            = errors.New("voting window has not ended yet")
	ErrElectionNotFound    = errors.New("election not found")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrInvalidElection     = errors.New("invalid election input")
	ErrConflict            = errors.New("election conflict")
)
