package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/governance/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/governance/election-engine/domain/errors"
	"ballotbox/contexts/governance/election-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists election aggregates and outbox rows through gorm.
// Each aggregate is one row; collections travel as JSON columns so the
// snapshot is replaced atomically on every save.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models returns the gorm models this adapter owns, for schema migration at
// bootstrap.
func Models() []any {
	return []any{&electionModel{}, &outboxModel{}}
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row, err := electionModelFromEntity(election)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"phase":             row.Phase,
			"options":           row.Options,
			"registered_voters": row.RegisteredVoters,
			"votes_cast":        row.VotesCast,
			"vote_counts":       row.VoteCounts,
			"voting_starts_at":  row.VotingStartsAt,
			"voting_ends_at":    row.VotingEndsAt,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("election_repo_save_failed", create.Error,
			"election_id", strings.TrimSpace(election.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_failed", err)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		election, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, election)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := outboxModel{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      string(payload),
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("election_repo_append_outbox_failed", err,
			"outbox_id", outboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      []byte(row.Payload),
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("election_repo_mark_outbox_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type electionModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	AdminID          string     `gorm:"column:admin_id"`
	Phase            string     `gorm:"column:phase"`
	Options          string     `gorm:"column:options;type:jsonb"`
	RegisteredVoters string     `gorm:"column:registered_voters;type:jsonb"`
	VotesCast        string     `gorm:"column:votes_cast;type:jsonb"`
	VoteCounts       string     `gorm:"column:vote_counts;type:jsonb"`
	VotingStartsAt   *time.Time `gorm:"column:voting_starts_at"`
	VotingEndsAt     *time.Time `gorm:"column:voting_ends_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      string     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func electionModelFromEntity(election entities.Election) (electionModel, error) {
	options, err := json.Marshal(election.Options)
	if err != nil {
		return electionModel{}, fmt.Errorf("encode options: %w", err)
	}
	voters, err := json.Marshal(setToSlice(election.RegisteredVoters))
	if err != nil {
		return electionModel{}, fmt.Errorf("encode registered voters: %w", err)
	}
	ballots, err := json.Marshal(setToSlice(election.VotesCast))
	if err != nil {
		return electionModel{}, fmt.Errorf("encode votes cast: %w", err)
	}
	counts, err := json.Marshal(election.VoteCounts)
	if err != nil {
		return electionModel{}, fmt.Errorf("encode vote counts: %w", err)
	}
	return electionModel{
		ID:               strings.TrimSpace(election.ElectionID),
		AdminID:          election.AdminID,
		Phase:            string(election.Phase),
		Options:          string(options),
		RegisteredVoters: string(voters),
		VotesCast:        string(ballots),
		VoteCounts:       string(counts),
		VotingStartsAt:   election.VotingStartsAt,
		VotingEndsAt:     election.VotingEndsAt,
		CreatedAt:        election.CreatedAt,
		UpdatedAt:        election.UpdatedAt,
	}, nil
}

func (m electionModel) toEntity() (entities.Election, error) {
	var options []string
	if err := json.Unmarshal([]byte(m.Options), &options); err != nil {
		return entities.Election{}, fmt.Errorf("decode options: %w", err)
	}
	var voters []string
	if err := json.Unmarshal([]byte(m.RegisteredVoters), &voters); err != nil {
		return entities.Election{}, fmt.Errorf("decode registered voters: %w", err)
	}
	var ballots []string
	if err := json.Unmarshal([]byte(m.VotesCast), &ballots); err != nil {
		return entities.Election{}, fmt.Errorf("decode votes cast: %w", err)
	}
	counts := make(map[string]uint64)
	if err := json.Unmarshal([]byte(m.VoteCounts), &counts); err != nil {
		return entities.Election{}, fmt.Errorf("decode vote counts: %w", err)
	}
	return entities.Election{
		ElectionID:       m.ID,
		AdminID:          m.AdminID,
		Phase:            entities.Phase(m.Phase),
		Options:          options,
		RegisteredVoters: sliceToSet(voters),
		VotesCast:        sliceToSet(ballots),
		VoteCounts:       counts,
		VotingStartsAt:   m.VotingStartsAt,
		VotingEndsAt:     m.VotingEndsAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func setToSlice(set map[string]struct{}) []string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	return items
}

func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock supplies wall-clock time to production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues aggregate and event identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
