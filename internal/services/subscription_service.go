package services

import (
	"context"
	"errors"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// AuthorDetail is a followed author with a preview of their recipes.
type AuthorDetail struct {
	models.User
	IsSubscribed bool
	RecipesCount int64
	Recipes      []models.Recipe
}

type SubscriptionService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	recipes repositories.RecipeRepository
}

func NewSubscriptionService(users repositories.UserRepository, follows repositories.FollowRepository, recipes repositories.RecipeRepository) *SubscriptionService {
	return &SubscriptionService{users: users, follows: follows, recipes: recipes}
}

// Subscribe makes followerID follow authorID and returns the author with up
// to recipesLimit recipes. A negative limit returns all of them.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, authorID uint, recipesLimit int) (*AuthorDetail, error) {
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if followerID == authorID {
		return nil, apperrors.Validation("you cannot subscribe to yourself")
	}
	err = s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, AuthorID: authorID})
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, apperrors.Conflict("already subscribed to this author")
	case errors.Is(err, models.ErrSelfFollow):
		return nil, apperrors.Validation("you cannot subscribe to yourself")
	case err != nil:
		return nil, err
	}
	metrics.RelationMutations.WithLabelValues("follow", "add").Inc()

	detail, err := s.withRecipes(ctx, *author, recipesLimit)
	if err != nil {
		return nil, err
	}
	detail.IsSubscribed = true
	return detail, nil
}

// Unsubscribe removes the subscription if it exists. It only fails when the
// author does not exist.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, authorID uint) error {
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}
	if err := s.follows.DeleteFollow(ctx, followerID, authorID); err != nil {
		return err
	}
	metrics.RelationMutations.WithLabelValues("follow", "remove").Inc()
	return nil
}

// Subscriptions lists one page of the authors followerID follows.
func (s *SubscriptionService) Subscriptions(ctx context.Context, followerID uint, offset, limit, recipesLimit int) ([]AuthorDetail, int64, error) {
	authors, total, err := s.follows.ListFollowing(ctx, followerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]AuthorDetail, 0, len(authors))
	for _, author := range authors {
		detail, err := s.withRecipes(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		detail.IsSubscribed = true
		result = append(result, *detail)
	}
	return result, total, nil
}

func (s *SubscriptionService) withRecipes(ctx context.Context, author models.User, recipesLimit int) (*AuthorDetail, error) {
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	recipes := []models.Recipe{}
	if recipesLimit != 0 {
		if recipes, err = s.recipes.ListByAuthor(ctx, author.ID, recipesLimit); err != nil {
			return nil, err
		}
	}
	return &AuthorDetail{User: author, RecipesCount: count, Recipes: recipes}, nil
}

func (s *SubscriptionService) author(ctx context.Context, id uint) (*models.User, error) {
	author, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return author, nil
}
