package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecipeRelationRepositories(t *testing.T) {
	cases := []struct {
		name    string
		newRepo func(db *gorm.DB) RecipeRelationRepository
	}{
		{
			name:    "favorites",
			newRepo: func(db *gorm.DB) RecipeRelationRepository { return NewPostgresFavoriteRepository(db) },
		},
		{
			name:    "shopping cart",
			newRepo: func(db *gorm.DB) RecipeRelationRepository { return NewPostgresShoppingCartRepository(db) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			repo := tc.newRepo(db)
			ctx := context.Background()

			author := testutil.CreateUser(t, db, "author")
			user := testutil.CreateUser(t, db, "user")
			soup := testutil.CreateRecipe(t, db, author, "Soup", nil)
			cake := testutil.CreateRecipe(t, db, author, "Cake", nil)

			require.NoError(t, repo.Add(ctx, user.ID, soup.ID))
			assert.ErrorIs(t, repo.Add(ctx, user.ID, soup.ID), ErrDuplicate)

			ok, err := repo.Exists(ctx, user.ID, soup.ID)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = repo.Exists(ctx, user.ID, cake.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			among, err := repo.RecipeIDsAmong(ctx, user.ID, []uint{soup.ID, cake.ID})
			require.NoError(t, err)
			assert.Equal(t, map[uint]bool{soup.ID: true}, among)

			count, err := repo.CountByRecipe(ctx, soup.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)

			require.NoError(t, repo.Remove(ctx, user.ID, soup.ID))
			assert.True(t, IsNotFound(repo.Remove(ctx, user.ID, soup.ID)))
			assert.True(t, IsNotFound(repo.Remove(ctx, user.ID, cake.ID)))

			empty, err := repo.RecipeIDsAmong(ctx, user.ID, nil)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestShoppingCartRepository_AggregateIngredients(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresShoppingCartRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	user := testutil.CreateUser(t, db, "user")
	eggs := testutil.CreateIngredient(t, db, "eggs", "pcs")
	milk := testutil.CreateIngredient(t, db, "milk", "l")
	milkMl := testutil.CreateIngredient(t, db, "milk", "ml")
	flour := testutil.CreateIngredient(t, db, "flour", "g")

	pancakes := testutil.CreateRecipe(t, db, author, "Pancakes", map[uint]int{eggs.ID: 2, milk.ID: 1})
	omelette := testutil.CreateRecipe(t, db, author, "Omelette", map[uint]int{eggs.ID: 3})
	latte := testutil.CreateRecipe(t, db, author, "Latte", map[uint]int{milkMl.ID: 200})
	testutil.CreateRecipe(t, db, author, "Bread", map[uint]int{flour.ID: 500})

	items, err := repo.AggregateIngredients(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items, "empty cart yields an empty list")

	require.NoError(t, repo.Add(ctx, user.ID, pancakes.ID))
	require.NoError(t, repo.Add(ctx, user.ID, omelette.ID))

	items, err = repo.AggregateIngredients(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "eggs", MeasurementUnit: "pcs", Total: 5},
		{Name: "milk", MeasurementUnit: "l", Total: 1},
	}, items)

	require.NoError(t, repo.Add(ctx, user.ID, latte.ID))
	items, err = repo.AggregateIngredients(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, models.ShoppingListItem{Name: "milk", MeasurementUnit: "ml", Total: 200}, items[2],
		"the same name under another unit stays a separate line")

	other, err := repo.AggregateIngredients(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	assert.ErrorIs(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, AuthorID: alice.ID}), models.ErrSelfFollow)

	require.NoError(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, AuthorID: bob.ID}))
	require.NoError(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, AuthorID: carol.ID}))
	assert.ErrorIs(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, AuthorID: bob.ID}), ErrDuplicate)

	ok, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok, "subscriptions are directed")

	followed, err := repo.FollowedAuthorIDs(ctx, alice.ID, []uint{alice.ID, bob.ID, carol.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{bob.ID: true, carol.ID: true}, followed)

	users, total, err := repo.ListFollowing(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, "carol", users[0].Username)

	page, total, err := repo.ListFollowing(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)

	require.NoError(t, repo.DeleteFollow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.DeleteFollow(ctx, alice.ID, bob.ID), "deleting twice is harmless")
	ok, err = repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
