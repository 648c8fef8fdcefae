// Package electionengine implements the election engine inside the
// governance context.
//
// The module owns the deterministic voting state machine: a three-phase
// election lifecycle (registration open, voting active, results finalized)
// with admin-gated transitions, exactly-once voting, and a read-only tally
// surface. Business rules live in the domain/application layers; storage,
// transport, and event plumbing stay behind ports and adapters.
package electionengine
