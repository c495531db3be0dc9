package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens persists refresh token state. A token is valid iff it
// exists, is not revoked and has not expired.
type RefreshTokens interface {
	Create(ctx context.Context, record *RefreshToken) (*RefreshToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *RefreshToken) (*RefreshToken, error)
	FindActive(ctx context.Context, token string) (*RefreshToken, error)
	FindActiveTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeTx(ctx context.Context, tx bun.IDB, token string) (bool, error)
}

type refreshTokens struct {
	db *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	return &refreshTokens{db: db}
}

func (r *refreshTokens) Create(ctx context.Context, record *RefreshToken) (*RefreshToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx bun.IDB, record *RefreshToken) (*RefreshToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *refreshTokens) FindActive(ctx context.Context, token string) (*RefreshToken, error) {
	return r.FindActiveTx(ctx, r.db, token)
}

func (r *refreshTokens) FindActiveTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	record := &RefreshToken{}

	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.is_revoked = ?", false).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return record, nil
}

// ConsumeTx flips revoked on an active token and reports whether this
// caller won. The conditional update means two concurrent rotations of
// the same token cannot both succeed.
func (r *refreshTokens) ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	record, err := r.FindActiveTx(ctx, tx, token)
	if err != nil {
		return nil, err
	}

	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("is_revoked = ?", true).
		Where("token = ?", token).
		Where("is_revoked = ?", false).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		// another rotation got here first
		return nil, ErrInvalidRefreshToken
	}

	record.Revoked = true

	return record, nil
}

func (r *refreshTokens) Revoke(ctx context.Context, token string) (bool, error) {
	return r.RevokeTx(ctx, r.db, token)
}

func (r *refreshTokens) RevokeTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("is_revoked = ?", true).
		Where("token = ?", token).
		Where("is_revoked = ?", false).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
