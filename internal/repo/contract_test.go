package repo

import (
	"context"
	"testing"
	"time"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTodoRepoContract exercises the behavior every TodoRepo backend must share.
func runTodoRepoContract(t *testing.T, r TodoRepo) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 30, 0, 123456000, time.UTC)

	t.Run("empty list", func(t *testing.T) {
		list, err := r.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("create then get", func(t *testing.T) {
		in := dom.Todo{ID: "a1", Description: "Buy milk", CreatedAt: created}
		require.NoError(t, r.Create(ctx, in))

		got, err := r.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, "Buy milk", got.Description)
		assert.False(t, got.IsCompleted)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("create duplicate id", func(t *testing.T) {
		err := r.Create(ctx, dom.Todo{ID: "a1", Description: "other", CreatedAt: created})
		assert.ErrorIs(t, err, ErrAlreadyExists)

		got, err := r.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Description)
	})

	t.Run("save overwrites", func(t *testing.T) {
		updated := created.Add(time.Hour)
		require.NoError(t, r.Save(ctx, dom.Todo{
			ID: "a1", Description: "Buy oat milk", IsCompleted: true,
			CreatedAt: created, UpdatedAt: &updated,
		}))

		got, err := r.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Description)
		assert.True(t, got.IsCompleted)
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, updated.Equal(*got.UpdatedAt))
	})

	t.Run("save inserts missing", func(t *testing.T) {
		require.NoError(t, r.Save(ctx, dom.Todo{ID: "b2", Description: "Walk dog", CreatedAt: created}))

		list, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := r.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, r.Delete(ctx, "a1"))
		_, err := r.GetByID(ctx, "a1")
		assert.ErrorIs(t, err, ErrNotFound)

		// missing id is still a success
		require.NoError(t, r.Delete(ctx, "a1"))
	})
}
