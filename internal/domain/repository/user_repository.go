package repository

import (
	"context"

	"github.com/rosterhq/roster/internal/domain/entity"
)

// UserPatch carries the mutable fields of an update. A nil field means
// "unchanged"; the store bumps updated_at even for an empty patch.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserRepository defines the store operations for users. Implementations
// map store-level failures onto the domain sentinels and never expose the
// password hash through read projections.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, q ListQuery) ([]entity.User, int64, error)
	Update(ctx context.Context, id string, patch UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id string) (*entity.User, error)
	CountByStatus(ctx context.Context) (total int64, active int64, err error)
}
