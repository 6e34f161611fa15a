package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query string
		want  Page
	}{
		{"", Page{Number: 1, Size: 6}},
		{"?page=3&limit=10", Page{Number: 3, Size: 10}},
		{"?page=0&limit=-1", Page{Number: 1, Size: 6}},
		{"?page=x&limit=y", Page{Number: 1, Size: 6}},
		{"?limit=1000", Page{Number: 1, Size: maxPageSize}},
		{"?page=9223372036854775807", Page{Number: maxPage, Size: 6}},
		{"?page=99999999999999999999&limit=100", Page{Number: maxPage, Size: maxPageSize}},
		{"?page=-99999999999999999999", Page{Number: 1, Size: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := newContext("/api/recipes" + tt.query)
			assert.Equal(t, tt.want, pageParams(c, 6))
		})
	}
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
}

func TestPaginatedKeepsOtherParams(t *testing.T) {
	c, rec := newContext("/api/recipes?tags=lunch&tags=dinner&limit=2")
	require.NoError(t, paginated(c, Page{Number: 1, Size: 2}, 5, []int{1, 2}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.Count)
	require.NotNil(t, body.Next)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=2&tags=lunch&tags=dinner", *body.Next)
	assert.Nil(t, body.Previous)
}

func TestPaginatedPastEnd(t *testing.T) {
	c, _ := newContext("/api/recipes?page=4")
	err := paginated(c, Page{Number: 4, Size: 6}, 7, []int{})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)

	c, _ = newContext("/api/recipes?page=9223372036854775807&limit=100")
	huge := pageParams(c, 6)
	assert.Positive(t, huge.Offset())
	err = paginated(c, huge, 7, []int{})
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)

	// The last partial page still answers.
	c, rec := newContext("/api/recipes?page=2")
	require.NoError(t, paginated(c, Page{Number: 2, Size: 6}, 7, []int{7}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The first page of an empty listing is fine.
	c, rec = newContext("/api/recipes")
	require.NoError(t, paginated(c, Page{Number: 1, Size: 6}, 0, []int{}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecipesLimit(t *testing.T) {
	for query, want := range map[string]int{
		"":                  -1,
		"?recipes_limit=3":  3,
		"?recipes_limit=0":  0,
		"?recipes_limit=-2": -1,
		"?recipes_limit=ab": -1,
	} {
		c, _ := newContext("/api/users/subscriptions" + query)
		assert.Equal(t, want, recipesLimit(c), query)
	}
}

func TestMediaURL(t *testing.T) {
	c, _ := newContext("/api/recipes/1")
	assert.Equal(t, "http://example.com/media/recipes/images/a.png", mediaURL(c, "/media/", "recipes/images/a.png"))
	assert.Equal(t, "https://cdn.example.org/m/recipes/images/a.png", mediaURL(c, "https://cdn.example.org/m", "recipes/images/a.png"))
	assert.Empty(t, mediaURL(c, "/media/", ""))
}

func TestRespondError(t *testing.T) {
	c, _ := newContext("/")

	err := respondError(c, apperrors.ValidationWithDetails("bad", map[string]string{"name": "taken"}))
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, echo.Map{"message": "bad", "details": map[string]string{"name": "taken"}}, he.Message)

	err = respondError(c, apperrors.Conflict("already"))
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)

	err = respondError(c, errors.New("boom"))
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, "Internal server error", he.Message)
}

func TestParseID(t *testing.T) {
	c, _ := newContext("/")
	c.SetParamNames("id")

	c.SetParamValues("12")
	id, err := parseID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"0", "-1", "abc"} {
		c.SetParamValues(bad)
		_, err := parseID(c, "id")
		assert.Error(t, err, bad)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	c, rec := newContext("/health")
	require.NoError(t, NewHealthHandler(fakePinger{}).HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)

	c, rec = newContext("/health")
	require.NoError(t, NewHealthHandler(fakePinger{err: errors.New("refused")}).HealthCheck(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}
