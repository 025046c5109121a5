package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
)

func (s *Store) GetUser(ctx context.Context) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, nickname, created_at FROM users WHERE id = 1`).
		Scan(&u.ID, &u.Nickname, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, coreerrors.New(coreerrors.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, nickname, created_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET nickname = excluded.nickname`,
		u.Nickname, u.CreatedAt,
	)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func (s *Store) CheckUserExists(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE id = 1`).Scan(&count); err != nil {
		return false, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return count > 0, nil
}
