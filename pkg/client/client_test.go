package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/birlikkoshan/todo-serverless/internal/app"
	"github.com/birlikkoshan/todo-serverless/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", ":memory:")

	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := app.New(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close(context.Background())
	})
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL + "/api/")
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := c.Create(ctx, "Buy milk")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.UpdatedAt)

	require.NoError(t, c.Toggle(ctx, created.ID))
	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.UpdatedAt)

	got.Description = "Buy oat milk"
	require.NoError(t, c.Update(ctx, got))
	got, err = c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Description)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientErrorTaxonomy(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Create(ctx, strings.Repeat("x", 101))
	assert.ErrorIs(t, err, ErrBadRequest)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "100")

	err = c.Update(ctx, Todo{ID: "", Description: "x"})
	assert.Error(t, err)

	assert.ErrorIs(t, c.Toggle(ctx, "missing"), ErrNotFound)
}

func TestClientSendsAPIKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithAPIKey("k1"), WithHTTPClient(srv.Client())).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k1", got)
}

func TestAPIErrorUnwrap(t *testing.T) {
	assert.ErrorIs(t, &APIError{Status: 404}, ErrNotFound)
	assert.ErrorIs(t, &APIError{Status: 409}, ErrConflict)
	assert.ErrorIs(t, &APIError{Status: 504}, ErrServer)
	assert.ErrorIs(t, &APIError{Status: 400}, ErrBadRequest)
	assert.Equal(t, "todo api: 500 Internal Server Error", (&APIError{Status: 500}).Error())
}
