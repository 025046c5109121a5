package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
)

func (s *Store) SaveRetrospective(ctx context.Context, r models.Retrospective) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO retrospectives (id, workspace_id, retro_type, content, date_label, created_at, used_model)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET content = excluded.content, used_model = excluded.used_model`,
		r.ID, r.WorkspaceID, r.RetroType, r.Content, r.DateLabel, r.CreatedAt, r.UsedModel,
	)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func (s *Store) GetRetrospective(ctx context.Context, workspaceID, retroType, dateLabel string) (models.Retrospective, error) {
	var r models.Retrospective
	err := s.db.QueryRowContext(ctx,
		`SELECT id, workspace_id, retro_type, content, date_label, created_at, used_model
		 FROM retrospectives WHERE workspace_id = $1 AND retro_type = $2 AND date_label = $3`,
		workspaceID, retroType, dateLabel,
	).Scan(&r.ID, &r.WorkspaceID, &r.RetroType, &r.Content, &r.DateLabel, &r.CreatedAt, &r.UsedModel)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Retrospective{}, coreerrors.New(coreerrors.NotFound, "retrospective not found")
	}
	if err != nil {
		return models.Retrospective{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return r, nil
}

func (s *Store) ListRetrospectives(ctx context.Context, workspaceID string) ([]models.Retrospective, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace_id, retro_type, content, date_label, created_at, used_model
		 FROM retrospectives WHERE workspace_id = $1 ORDER BY date_label DESC`, workspaceID)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.Retrospective
	for rows.Next() {
		var r models.Retrospective
		if err := rows.Scan(&r.ID, &r.WorkspaceID, &r.RetroType, &r.Content, &r.DateLabel, &r.CreatedAt, &r.UsedModel); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, r)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}
