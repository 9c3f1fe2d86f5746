package scylladb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/mint"
	"github.com/gocql/gocql"
)

const timelinePageSize = 100

// TimelineRepository implements mint.TimelineStore on ScyllaDB
type TimelineRepository struct {
	session *gocql.Session
	logger  Logger
}

// NewTimelineRepository creates a new ScyllaDB repository for transitions
func NewTimelineRepository(session *gocql.Session, logger Logger) *TimelineRepository {
	return &TimelineRepository{
		session: session,
		logger:  logger,
	}
}

// Append records a transition; failures are also indexed by wallet and stage
func (r *TimelineRepository) Append(ctx context.Context, t mint.Transition) error {
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`
		INSERT INTO mint_transitions (session_id, at, id, from_state, to_state, stage, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.SessionID, at, gocql.UUIDFromTime(at), string(t.From), string(t.To), string(t.Stage), t.Message)

	if t.To == mint.StateFailed && t.Stage != "" {
		batch.Query(`
			INSERT INTO mint_failures_by_wallet (wallet_address, stage, at, session_id, message)
			VALUES (?, ?, ?, ?, ?)
		`, strings.ToLower(t.WalletAddress), string(t.Stage), at, t.SessionID, t.Message)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		r.logger.LogError("Error appending transition", map[string]interface{}{
			"error":     err.Error(),
			"sessionID": t.SessionID,
			"to":        t.To,
		})
		return fmt.Errorf("failed to append transition: %w", err)
	}
	return nil
}

// List returns the transitions of a session in the order they happened
func (r *TimelineRepository) List(ctx context.Context, sessionID string) ([]mint.Transition, error) {
	query := `
		SELECT from_state, to_state, stage, message, at
		FROM mint_transitions
		WHERE session_id = ?
	`
	iter := r.session.Query(query, sessionID).WithContext(ctx).PageSize(timelinePageSize).Iter()

	var transitions []mint.Transition
	scanner := iter.Scanner()
	for scanner.Next() {
		var from, to, stage, message string
		var at time.Time
		if err := scanner.Scan(&from, &to, &stage, &message, &at); err != nil {
			iter.Close()
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		transitions = append(transitions, mint.Transition{
			SessionID: sessionID,
			From:      mint.State(from),
			To:        mint.State(to),
			Stage:     mint.Stage(stage),
			Message:   message,
			At:        at,
		})
	}
	if err := scanner.Err(); err != nil {
		r.logger.LogError("Error listing transitions", map[string]interface{}{
			"error":     err.Error(),
			"sessionID": sessionID,
		})
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	return transitions, nil
}

// ListFailures returns the most recent failures of wallet's sessions
// recorded at stage
func (r *TimelineRepository) ListFailures(ctx context.Context, wallet string, stage mint.Stage, limit int) ([]mint.Transition, error) {
	if limit <= 0 {
		limit = timelinePageSize
	}
	wallet = strings.ToLower(wallet)
	query := `
		SELECT session_id, message, at
		FROM mint_failures_by_wallet
		WHERE wallet_address = ? AND stage = ?
		LIMIT ?
	`
	iter := r.session.Query(query, wallet, string(stage), limit).WithContext(ctx).Iter()

	var failures []mint.Transition
	scanner := iter.Scanner()
	for scanner.Next() {
		t := mint.Transition{To: mint.StateFailed, Stage: stage, WalletAddress: wallet}
		if err := scanner.Scan(&t.SessionID, &t.Message, &t.At); err != nil {
			iter.Close()
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	return failures, nil
}

var _ mint.TimelineStore = (*TimelineRepository)(nil)
