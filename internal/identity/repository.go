package identity

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/intern-assistant/platform/internal/shared/auth"
	"github.com/intern-assistant/platform/internal/shared/errors"
)

// Repository provides database operations for users
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new identity repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user
func (r *Repository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// FindByUsername retrieves a user by case-normalized username
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(username)).
		First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("user", username)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// FindIdentity resolves a token subject to a caller identity.
// Implements auth.UserLookup.
func (r *Repository) FindIdentity(ctx context.Context, username string) (*auth.Identity, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// FindByNameOrUsername resolves an author filter value: username match
// wins, display name is the fallback. A miss is reported as not found
// so callers can narrow to an empty result set instead of broadening.
func (r *Repository) FindByNameOrUsername(ctx context.Context, name string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("username = ?", name).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to resolve author")
	}

	err = r.db.WithContext(ctx).Where("display_name = ?", name).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("user", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve author")
	}
	return &user, nil
}

// DisplayNames returns the id -> display name map used to resolve
// visit authors.
func (r *Repository) DisplayNames(ctx context.Context) (map[uint]string, error) {
	var users []User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names, nil
}
