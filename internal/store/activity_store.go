package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roundup/internal/models"
)

// ActivityStore keeps the per-user activity feed: signups, logins and every money movement,
// each with its details as a JSON document.
type ActivityStore struct {
	db DB
}

type ActivityInput struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    models.ActivityDetails
}

type activityRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Details    []byte    `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}

func NewActivityStore(db DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Record(ctx context.Context, tx Execer, input ActivityInput) error {
	details, err := json.Marshal(input.Details)
	if err != nil {
		return fmt.Errorf("encode activity details: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, action, entity_type, entity_id, details)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5)
	`, input.UserID, input.Action, input.EntityType, input.EntityID, string(details))
	return err
}

// ListByUser returns the user's activity newest first.
func (s *ActivityStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error) {
	var rows []activityRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	activity := make([]models.Activity, 0, len(rows))
	for _, row := range rows {
		entry := models.Activity{
			ID:         row.ID,
			UserID:     row.UserID,
			Action:     row.Action,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			CreatedAt:  row.CreatedAt,
		}
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode activity %s: %w", row.ID, err)
			}
		}
		activity = append(activity, entry)
	}
	return activity, nil
}
