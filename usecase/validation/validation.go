package validation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/repository"
)

// UseCase selects the users inside the configured region and checks their
// todo completion rate against the threshold. It holds no state between
// calls; every run refetches from the repositories.
type UseCase struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	criteria domain.Criteria
	logger   *zap.Logger
}

func New(users repository.UserRepository, tasks repository.TaskRepository, criteria domain.Criteria, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		tasks:    tasks,
		criteria: criteria,
		logger:   logger,
	}
}

func (uc *UseCase) Criteria() domain.Criteria {
	return uc.criteria
}

// WithCriteria returns a use case sharing the same repositories but judging
// by different criteria.
func (uc *UseCase) WithCriteria(criteria domain.Criteria) *UseCase {
	return New(uc.users, uc.tasks, criteria, uc.logger)
}

// InRegionUsers fetches all users and keeps those inside the region, in
// source order.
func (uc *UseCase) InRegionUsers(ctx context.Context) ([]domain.User, error) {
	all, err := uc.users.List(ctx)
	if err != nil {
		return nil, err
	}
	inRegion := domain.FilterUsers(all, uc.criteria.Region)
	uc.logger.Info("users selected by region",
		zap.Int("in_region", len(inRegion)),
		zap.Int("total", len(all)))
	return inRegion, nil
}

// FindUser looks a user up by id among all users, in or out of the region.
func (uc *UseCase) FindUser(ctx context.Context, id int) (domain.User, error) {
	all, err := uc.users.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range all {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// ValidateUser fetches the user's todos and judges their completion rate.
// Fetch errors are returned unchanged.
func (uc *UseCase) ValidateUser(ctx context.Context, user domain.User) (domain.UserResult, error) {
	tasks, err := uc.tasks.List(ctx, repository.ForUser(user.ID))
	if err != nil {
		return domain.UserResult{}, err
	}

	percentage := domain.CompletionPercentage(tasks)
	result := domain.UserResult{
		UserID:               user.ID,
		UserName:             user.Name,
		Username:             user.Username,
		Coordinates:          user.Coordinates(),
		TotalTodos:           len(tasks),
		CompletedTodos:       domain.CountCompleted(tasks),
		CompletionPercentage: percentage,
		Passed:               uc.criteria.Passes(percentage),
	}

	uc.logger.Info("user validated",
		zap.Int("user_id", user.ID),
		zap.String("user_name", user.Name),
		zap.Int("completed", result.CompletedTodos),
		zap.Int("total", result.TotalTodos),
		zap.Float64("percentage", percentage),
		zap.Bool("passed", result.Passed))
	return result, nil
}

// ValidateAll validates every in-region user one after another. The run
// fails as a whole if any user fails or if the region is empty.
func (uc *UseCase) ValidateAll(ctx context.Context) (*domain.Summary, error) {
	users, err := uc.InRegionUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		uc.logger.Warn("no users found in region")
		return domain.NewSummary(nil), nil
	}

	results := make([]domain.UserResult, 0, len(users))
	for _, user := range users {
		result, err := uc.ValidateUser(ctx, user)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return uc.summarize(results), nil
}

// ValidateAllConcurrent fetches per-user todos with up to workers requests in
// flight. Results keep source order, so the summary equals ValidateAll's.
// The first fetch error cancels the remaining work and is returned.
func (uc *UseCase) ValidateAllConcurrent(ctx context.Context, workers int) (*domain.Summary, error) {
	if workers <= 0 {
		workers = 1
	}
	users, err := uc.InRegionUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		uc.logger.Warn("no users found in region")
		return domain.NewSummary(nil), nil
	}

	results := make([]domain.UserResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			result, err := uc.ValidateUser(gctx, user)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uc.summarize(results), nil
}

func (uc *UseCase) summarize(results []domain.UserResult) *domain.Summary {
	summary := domain.NewSummary(results)
	uc.logger.Info("validation summary",
		zap.Int("passed", summary.PassedUsers),
		zap.Int("total", summary.TotalUsers),
		zap.Float64("threshold", uc.criteria.Threshold),
		zap.Bool("overall_result", summary.OverallResult))
	return summary
}
