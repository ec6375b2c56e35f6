package identity

import (
	"context"
	stderrors "errors"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/config"
	"github.com/intern-assistant/platform/internal/shared/errors"
)

// seedUser is one roster entry created at startup if absent.
type seedUser struct {
	username    string
	displayName string
	password    string
	role        auth.Role
}

// Seed creates the admin account and the demo roster. It is idempotent:
// every insert is guarded by an existence check, so restarting the
// process never duplicates accounts. A failure here is fatal to the
// caller; the service must not serve from a half-seeded store.
func Seed(ctx context.Context, repo *Repository, cfg config.SeedConfig) error {
	roster := []seedUser{
		{cfg.AdminUser, "Admin", cfg.AdminPass, auth.RoleAdmin},
		{"e.sude", "E. Sude", "1234", auth.RoleIntern},
		{"a.yilmaz", "A. Yılmaz", "1234", auth.RoleIntern},
		{"m.demir", "M. Demir", "1234", auth.RoleIntern},
		{"burcin.hoca", "B. Hoca", "1234", auth.RoleSupervisor},
	}

	for _, entry := range roster {
		_, err := repo.FindByUsername(ctx, entry.username)
		if err == nil {
			continue
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return err
		}

		hash, err := auth.HashPassword(entry.password)
		if err != nil {
			return errors.Wrap(err, "failed to hash seed password")
		}
		user := &User{
			Username:     entry.username,
			DisplayName:  entry.displayName,
			PasswordHash: hash,
			Role:         entry.role,
		}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
	}

	return nil
}
