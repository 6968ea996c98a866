package repository

import (
	"context"

	"github.com/fastygo/regioncheck/domain"
)

// UserRepository lists every user the upstream source knows about, in the
// order the source returns them.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
}
