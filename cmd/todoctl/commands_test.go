package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/birlikkoshan/todo-serverless/internal/app"
	"github.com/birlikkoshan/todo-serverless/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) string {
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
	return srv.URL + "/api"
}

func run(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTodoctlFlow(t *testing.T) {
	api := newAPI(t)

	out, err := run(t, api, "add", "Buy", "milk")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	_, err = run(t, api, "toggle", id)
	require.NoError(t, err)

	out, err = run(t, api, "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Buy milk")

	_, err = run(t, api, "update", id, "Buy", "bread", "--not-done")
	require.NoError(t, err)
	out, err = run(t, api, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ]")
	assert.Contains(t, out, "Buy bread")

	_, err = run(t, api, "rm", id)
	require.NoError(t, err)
	_, err = run(t, api, "get", id)
	assert.Error(t, err)
}

func TestTodoctlRejectsLongDescription(t *testing.T) {
	api := newAPI(t)
	_, err := run(t, api, "add", strings.Repeat("y", 101))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100")
}
