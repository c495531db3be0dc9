package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EmailVerifications persists OTP records. Issuing a new code for a
// user invalidates earlier unused codes, so at most one code per user
// is outstanding at any time.
type EmailVerifications interface {
	Issue(ctx context.Context, userID uuid.UUID, code string) (*EmailVerification, error)
	IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*EmailVerification, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (bool, error)
}

type emailVerifications struct {
	db *bun.DB
}

var _ EmailVerifications = (*emailVerifications)(nil)

func NewEmailVerificationsRepository(db *bun.DB) EmailVerifications {
	return &emailVerifications{db: db}
}

func (r *emailVerifications) Issue(ctx context.Context, userID uuid.UUID, code string) (*EmailVerification, error) {
	return r.IssueTx(ctx, r.db, userID, code)
}

func (r *emailVerifications) IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*EmailVerification, error) {
	// a fresh code supersedes anything still pending for the user
	_, err := tx.NewUpdate().
		Model((*EmailVerification)(nil)).
		Set("is_used = ?", true).
		Where("user_id = ?", userID).
		Where("is_used = ?", false).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	record := &EmailVerification{
		ID:        uuid.New(),
		UserID:    userID,
		OTPCode:   code,
		ExpiresAt: time.Now().Add(OTPExpiry),
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

// ConsumeTx marks the matching unused, unexpired record as used. It
// returns false, never an error, when no record matches; callers must
// not learn which predicate failed.
func (r *emailVerifications) ConsumeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (bool, error) {
	record := &EmailVerification{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.otp_code = ?", code).
		Where("?TableAlias.is_used = ?", false).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	res, err := tx.NewUpdate().
		Model((*EmailVerification)(nil)).
		Set("is_used = ?", true).
		Where("id = ?", record.ID).
		Where("is_used = ?", false).
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
