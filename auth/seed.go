package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Built in SuperAdmin account, created on schema sync so a fresh
// database has an identity that can reach the role gated endpoints.
const (
	SuperAdminID       = "11111111-1111-1111-1111-111111111111"
	SuperAdminEmail    = "superadmin@polling.com"
	superAdminName     = "Super Admin"
	superAdminPassword = "superadmin123"
)

// EnsureSuperAdmin inserts the built in SuperAdmin account unless it
// already exists. Safe to run on every startup.
func EnsureSuperAdmin(ctx context.Context, db *bun.DB) error {
	id := uuid.MustParse(SuperAdminID)

	exists, err := db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exists(ctx)

	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	hash, salt, err := HashPassword(superAdminPassword)
	if err != nil {
		return err
	}

	user := &User{
		ID:            id,
		FullName:      superAdminName,
		Email:         SuperAdminEmail,
		PasswordHash:  hash,
		PasswordSalt:  salt,
		Role:          RoleSuperAdmin,
		EmailVerified: true,
	}

	_, err = db.NewInsert().Model(user).Exec(ctx)

	return err
}
