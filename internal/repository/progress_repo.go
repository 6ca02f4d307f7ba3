package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/pkg/outbox"
)

// ProgressRepository stores one progress document per (user, project).
type ProgressRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
}

func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db, outbox: outbox.NewRepository(db)}
}

func decodeProgress(doc []byte) (*model.UserProgress, error) {
	var u model.UserProgress
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &u, nil
}

// Get returns nil, nil when the user has no progress for the project.
func (r *ProgressRepository) Get(ctx context.Context, userID, projectID string) (*model.UserProgress, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `
		SELECT document FROM user_progress WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("get progress", err)
	}
	return decodeProgress(doc)
}

// Save upserts the whole document.
func (r *ProgressRepository) Save(ctx context.Context, u *model.UserProgress) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO user_progress (user_id, project_id, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, project_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`, u.UserID, u.ProjectID, doc, u.UpdatedAt)
	return apperrors.Persistence("save progress", err)
}

// Update locks the document, lets fn mutate it and writes it back together
// with the events fn returns. fn sees nil when no document exists.
func (r *ProgressRepository) Update(ctx context.Context, userID, projectID string, fn func(u *model.UserProgress) (*model.UserProgress, []*outbox.Event, error)) (*model.UserProgress, error) {
	var result *model.UserProgress
	err := observe(ctx, "update", "user_progress", func(ctx context.Context) error {
		tx, err := r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		var current *model.UserProgress
		var doc []byte
		err = tx.QueryRow(ctx, `
			SELECT document FROM user_progress
			WHERE user_id = $1 AND project_id = $2
			FOR UPDATE
		`, userID, projectID).Scan(&doc)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return err
		default:
			if current, err = decodeProgress(doc); err != nil {
				return err
			}
		}

		next, events, err := fn(current)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode progress: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_progress (user_id, project_id, document, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, project_id) DO UPDATE
			SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
		`, userID, projectID, encoded, next.UpdatedAt)
		if err != nil {
			return err
		}
		for _, e := range events {
			if err := outbox.InsertEventInTx(ctx, tx, r.outbox, e); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.Persistence("update progress", err)
	}
	return result, nil
}
