package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/pkg/outbox"
)

// ProjectRepository stores projects with their phase data as a JSONB
// document.
type ProjectRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, outbox: outbox.NewRepository(db), logger: logger}
}

const projectColumns = `id, user_id, name, description, industry, target_market, stage, data, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var (
		p     model.Project
		stage string
		data  []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Industry, &p.TargetMarket,
		&stage, &data, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Stage = model.Stage(stage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return nil, fmt.Errorf("decode project data: %w", err)
		}
	}
	if p.Data == nil {
		p.Data = map[string]model.PhaseData{}
	}
	return &p, nil
}

// Create inserts the project, its initial progress document and the given
// outbox events in one transaction.
func (r *ProjectRepository) Create(ctx context.Context, p *model.Project, initial *model.UserProgress, events []*outbox.Event) error {
	data, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("encode project data: %w", err)
	}
	doc, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	err = observe(ctx, "insert", "projects", func(ctx context.Context) error {
		return inTx(ctx, r.db, r.outbox, events, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO projects (`+projectColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, p.ID, p.UserID, p.Name, p.Description, p.Industry, p.TargetMarket,
				string(p.Stage), data, p.CreatedAt, p.UpdatedAt)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO user_progress (user_id, project_id, document, updated_at)
				VALUES ($1, $2, $3, $4)
			`, initial.UserID, initial.ProjectID, doc, initial.UpdatedAt)
			return err
		})
	})
	if err != nil {
		return apperrors.Persistence("create project", err)
	}

	r.logger.Info("Project created",
		zap.String("project_id", p.ID),
		zap.String("user_id", p.UserID),
	)
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, notFound("get project", err)
	}
	return p, nil
}

// ListByUser returns the user's projects, most recently updated first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]*model.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Persistence("list projects", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperrors.Persistence("list projects", err)
		}
		projects = append(projects, p)
	}
	return projects, apperrors.Persistence("list projects", rows.Err())
}

// UpdatePhaseData replaces one data section with jsonb_set. Concurrent
// writers to the same section are last-write-wins.
func (r *ProjectRepository) UpdatePhaseData(ctx context.Context, id, section string, data model.PhaseData, now time.Time, events []*outbox.Event) (*model.Project, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode phase data: %w", err)
	}

	var updated *model.Project
	err = observe(ctx, "update", "projects", func(ctx context.Context) error {
		return inTx(ctx, r.db, r.outbox, events, func(tx pgx.Tx) error {
			p, err := scanProject(tx.QueryRow(ctx, `
				UPDATE projects
				SET data = jsonb_set(data, ARRAY[$2::text], $3::jsonb, true), updated_at = $4
				WHERE id = $1
				RETURNING `+projectColumns,
				id, section, raw, now))
			updated = p
			return err
		})
	})
	if err != nil {
		return nil, notFound("update project phase data", err)
	}
	return updated, nil
}

// Delete removes the project; its progress goes with it.
func (r *ProjectRepository) Delete(ctx context.Context, id string, events []*outbox.Event) error {
	errMissing := errors.New("no rows deleted")
	err := inTx(ctx, r.db, r.outbox, events, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errMissing
		}
		return nil
	})
	if errors.Is(err, errMissing) {
		return fmt.Errorf("delete project %s: %w", id, apperrors.ErrNotFound)
	}
	return apperrors.Persistence("delete project", err)
}
