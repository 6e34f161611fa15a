package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_ListIngredientsByPrefix(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCatalogRepository(db)
	ctx := context.Background()

	for _, ing := range []struct{ name, unit string }{
		{"sugar", "g"},
		{"Salt", "g"},
		{"salt", "pinch"},
		{"milk", "ml"},
		{"100%_juice", "ml"},
	} {
		testutil.CreateIngredient(t, db, ing.name, ing.unit)
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: []string{"100%_juice", "Salt", "milk", "salt", "sugar"}},
		{prefix: "sa", want: []string{"Salt", "salt"}},
		{prefix: "SU", want: []string{"sugar"}},
		{prefix: "alt", want: []string{}},
		{prefix: "100%", want: []string{"100%_juice"}},
		{prefix: "1_", want: []string{}},
	}

	for _, tt := range tests {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			got, err := repo.ListIngredients(ctx, tt.prefix)
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, ing := range got {
				names[i] = ing.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCatalogRepository_Tags(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCatalogRepository(db)
	ctx := context.Background()

	breakfast := testutil.CreateTag(t, db, "breakfast", "#E26C2D")
	lunch := testutil.CreateTag(t, db, "lunch", "#49B64E")

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)

	tag, err := repo.GetTagByID(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "#49B64E", tag.Color)

	_, err = repo.GetTagByID(ctx, 999)
	assert.True(t, IsNotFound(err))

	found, err := repo.GetTagsByIDs(ctx, []uint{lunch.ID, breakfast.ID, 999})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	created, err := repo.CreateTagIfMissing(ctx, &models.Tag{Name: "Breakfast again", Color: "#000000", Slug: "breakfast"})
	require.NoError(t, err)
	assert.False(t, created)

	dinner := &models.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"}
	created, err = repo.CreateTagIfMissing(ctx, dinner)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, dinner.ID)

	for _, dup := range []models.Tag{
		{Name: "Other", Color: "#8775D2", Slug: "other"},
		{Name: "lunch", Color: "#111111", Slug: "midday"},
	} {
		tag := dup
		created, err = repo.CreateTagIfMissing(ctx, &tag)
		require.NoError(t, err)
		assert.False(t, created, "%s collides on name or color", dup.Slug)
	}
	tags, err = repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestCatalogRepository_InTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCatalogRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.InTransaction(ctx, func(store CatalogStore) error {
		if _, err := store.CreateIngredientIfMissing(ctx, &models.Ingredient{Name: "salt", MeasurementUnit: "g"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	all, err := repo.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.InTransaction(ctx, func(store CatalogStore) error {
		_, err := store.CreateTagIfMissing(ctx, &models.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"})
		return err
	}))
	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestCatalogRepository_CreateIngredientIfMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCatalogRepository(db)
	ctx := context.Background()

	existing := testutil.CreateIngredient(t, db, "salt", "g")

	dup := &models.Ingredient{Name: "salt", MeasurementUnit: "g"}
	created, err := repo.CreateIngredientIfMissing(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, dup.ID)

	created, err = repo.CreateIngredientIfMissing(ctx, &models.Ingredient{Name: "salt", MeasurementUnit: "pinch"})
	require.NoError(t, err)
	assert.True(t, created, "same name with another unit is a new ingredient")

	got, err := repo.GetIngredientsByIDs(ctx, []uint{existing.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "g", got[0].MeasurementUnit)
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "Chef@Example.com", Username: "chef", FirstName: "C", LastName: "F", Password: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))

	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{
		Email: "other@example.com", Username: "chef", FirstName: "O", LastName: "F", Password: "hash",
	}), ErrDuplicate)

	byEmail, err := repo.GetUserByEmail(ctx, "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.True(t, IsNotFound(err))

	require.NoError(t, repo.IncrementTokenVersion(ctx, user.ID))
	reloaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TokenVersion)
	assert.True(t, IsNotFound(repo.IncrementTokenVersion(ctx, 999)))

	testutil.CreateUser(t, db, "second")
	users, total, err := repo.ListUsers(ctx, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, "second", users[0].Username)
}
