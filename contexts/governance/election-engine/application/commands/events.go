package commands

import (
	"context"
	"encoding/json"
	"time"

	"ballotbox/contexts/governance/election-engine/domain/entities"
	"ballotbox/contexts/governance/election-engine/ports"
)

func (uc ElectionUseCase) appendElectionEvent(
	ctx context.Context,
	eventType string,
	election entities.Election,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"election_id":  election.ElectionID,
		"admin_id":     election.AdminID,
		"phase":        string(election.Phase),
		"ballots_cast": election.BallotsCast(),
		"occurred_at":  occurredAt.UTC().Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}

	envelope, err := newElectionEnvelope(eventID, eventType, election.ElectionID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func newElectionEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Transition events are partitioned by election so per-election consumers
	// observe transitions in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}
