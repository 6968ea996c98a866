package jsonplaceholder

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/repository"
)

type userRepository struct {
	client *Client
}

// NewUserRepository returns an upstream-backed implementation of UserRepository.
func NewUserRepository(client *Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.client.fetch(ctx, ResourceUsers, r.client.baseURL+"/"+ResourceUsers, func(body []byte) error {
		var err error
		users, err = ParseUsers(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	// A malformed email does not disqualify the record.
	for _, u := range users {
		if !ValidEmail(u.Email) {
			r.client.logger.Warn("user has malformed email",
				zap.Int("user_id", u.ID),
				zap.String("email", u.Email))
		}
	}
	return users, nil
}
