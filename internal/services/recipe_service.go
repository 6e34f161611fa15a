// Package services holds the domain rules that sit between the HTTP handlers
// and the repositories.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/storage"
)

// RecipeDetail is a recipe together with the flags that depend on who is
// looking at it. All flags are false for anonymous viewers.
type RecipeDetail struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeService implements the recipe read and write paths.
type RecipeService struct {
	recipes     repositories.RecipeRepository
	tags        repositories.TagRepository
	ingredients repositories.IngredientRepository
	favorites   repositories.RecipeRelationRepository
	cart        repositories.RecipeRelationRepository
	follows     repositories.FollowRepository
	images      storage.ImageStore
}

func NewRecipeService(
	recipes repositories.RecipeRepository,
	tags repositories.TagRepository,
	ingredients repositories.IngredientRepository,
	favorites repositories.RecipeRelationRepository,
	cart repositories.RecipeRelationRepository,
	follows repositories.FollowRepository,
	images storage.ImageStore,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		favorites:   favorites,
		cart:        cart,
		follows:     follows,
		images:      images,
	}
}

// writeSet is a validated recipe write request.
type writeSet struct {
	lines  []models.RecipeIngredient
	tagIDs []uint
	image  *storage.Image
}

// validateWrite checks every domain rule of a create or update request and
// reports all failing fields at once. excludeID is the recipe being updated,
// zero on create.
func (s *RecipeService) validateWrite(ctx context.Context, req *models.RecipeWriteRequest, excludeID uint) (*writeSet, error) {
	details := map[string]string{}
	set := &writeSet{}

	req.Name = plainText(req.Name)
	req.Text = plainText(req.Text)
	if req.Name == "" {
		details["name"] = "name must contain text"
	}
	if req.Text == "" {
		details["text"] = "text must not be empty"
	}

	if len(req.Ingredients) == 0 {
		details["ingredients"] = "at least one ingredient is required"
	} else {
		seen := make(map[uint]bool, len(req.Ingredients))
		ids := make([]uint, 0, len(req.Ingredients))
		for _, item := range req.Ingredients {
			if seen[item.ID] {
				details["ingredients"] = fmt.Sprintf("ingredient %d is listed more than once", item.ID)
				break
			}
			if item.Amount < 1 {
				details["ingredients"] = fmt.Sprintf("amount of ingredient %d must be at least 1", item.ID)
				break
			}
			seen[item.ID] = true
			ids = append(ids, item.ID)
			set.lines = append(set.lines, models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount})
		}
		if _, failed := details["ingredients"]; !failed {
			found, err := s.ingredients.GetIngredientsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			if missing := missingIDs(ids, ingredientIDs(found)); len(missing) > 0 {
				details["ingredients"] = fmt.Sprintf("unknown ingredient ids %v", missing)
			}
		}
	}

	if len(req.Tags) == 0 {
		details["tags"] = "at least one tag is required"
	} else {
		seen := make(map[uint]bool, len(req.Tags))
		for _, id := range req.Tags {
			if seen[id] {
				details["tags"] = fmt.Sprintf("tag %d is listed more than once", id)
				break
			}
			seen[id] = true
			set.tagIDs = append(set.tagIDs, id)
		}
		if _, failed := details["tags"]; !failed {
			found, err := s.tags.GetTagsByIDs(ctx, set.tagIDs)
			if err != nil {
				return nil, err
			}
			if missing := missingIDs(set.tagIDs, tagIDs(found)); len(missing) > 0 {
				details["tags"] = fmt.Sprintf("unknown tag ids %v", missing)
			}
		}
	}

	if req.CookingTime < 1 {
		details["cooking_time"] = "cooking time must be at least 1 minute"
	}

	if req.Name != "" {
		taken, err := s.recipes.NameTaken(ctx, req.Name, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			details["name"] = "a recipe with this name already exists"
		}
	}

	switch {
	case req.Image != "":
		img, err := storage.DecodeDataURI(req.Image)
		if err != nil {
			details["image"] = err.Error()
		}
		set.image = img
	case excludeID == 0:
		details["image"] = "image is required"
	}

	if len(details) > 0 {
		return nil, apperrors.ValidationWithDetails("invalid recipe", details)
	}
	return set, nil
}

// Create stores the image, then the recipe with its lines and tags. The
// image is removed again if the database write fails.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *models.RecipeWriteRequest) (*RecipeDetail, error) {
	set, err := s.validateWrite(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	key := storage.NewImageKey(set.image.Extension)
	if err := s.images.Save(ctx, key, set.image.ContentType, set.image.Data); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       key,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe, set.lines, set.tagIDs); err != nil {
		s.discardImage(ctx, key)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ValidationWithDetails("invalid recipe", map[string]string{
				"name": "a recipe with this name already exists",
			})
		}
		return nil, err
	}
	metrics.RecipeWrites.WithLabelValues("create").Inc()
	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")

	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces every field and ingredient line of the recipe. Only the
// author may update; the image is kept unless a new one is sent.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, req *models.RecipeWriteRequest) (*RecipeDetail, error) {
	existing, err := s.authorOnly(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	set, err := s.validateWrite(ctx, req, recipeID)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:          recipeID,
		Name:        req.Name,
		Image:       existing.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if set.image != nil {
		recipe.Image = storage.NewImageKey(set.image.Extension)
		if err := s.images.Save(ctx, recipe.Image, set.image.ContentType, set.image.Data); err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
	}

	if err := s.recipes.UpdateRecipe(ctx, recipe, set.lines, set.tagIDs); err != nil {
		if recipe.Image != existing.Image {
			s.discardImage(ctx, recipe.Image)
		}
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperrors.ValidationWithDetails("invalid recipe", map[string]string{
				"name": "a recipe with this name already exists",
			})
		case repositories.IsNotFound(err):
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, err
	}
	if recipe.Image != existing.Image {
		s.discardImage(ctx, existing.Image)
	}
	metrics.RecipeWrites.WithLabelValues("update").Inc()

	return s.Get(ctx, userID, recipeID)
}

// Delete removes the recipe, everything that references it and its image.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	existing, err := s.authorOnly(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("recipe not found")
		}
		return err
	}
	s.discardImage(ctx, existing.Image)
	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	logging.Info().Uint("recipe_id", recipeID).Msg("recipe deleted")
	return nil
}

// Get loads one recipe as seen by viewerID (zero for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uint) (*RecipeDetail, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, err
	}
	details, err := s.decorate(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns one page of recipes as seen by viewerID. The favorited and
// in-cart filters only apply to authenticated viewers.
func (s *RecipeService) List(ctx context.Context, viewerID uint, filter models.RecipeFilter) ([]RecipeDetail, int64, error) {
	if viewerID == 0 {
		filter.FavoritedBy = 0
		filter.InShoppingCartOf = 0
	}
	recipes, total, err := s.recipes.ListRecipes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.decorate(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// decorate computes the viewer-relative flags with one query per relation.
// Anonymous viewers get all-false flags without touching the database.
func (s *RecipeService) decorate(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeDetail, error) {
	details := make([]RecipeDetail, len(recipes))
	for i := range recipes {
		details[i].Recipe = recipes[i]
	}
	if viewerID == 0 || len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs = append(authorIDs, r.AuthorID)
	}
	favorited, err := s.favorites.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := s.follows.FollowedAuthorIDs(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].IsFavorited = favorited[details[i].ID]
		details[i].IsInShoppingCart = inCart[details[i].ID]
		details[i].AuthorSubscribed = followed[details[i].AuthorID]
	}
	return details, nil
}

func (s *RecipeService) authorOnly(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, apperrors.Forbidden("only the author can change this recipe")
	}
	return recipe, nil
}

func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to delete recipe image")
	}
}

func ingredientIDs(items []models.Ingredient) []uint {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func tagIDs(items []models.Tag) []uint {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// missingIDs returns the members of want absent from have, in want order.
func missingIDs(want, have []uint) []uint {
	present := make(map[uint]bool, len(have))
	for _, id := range have {
		present[id] = true
	}
	var missing []uint
	for _, id := range want {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
