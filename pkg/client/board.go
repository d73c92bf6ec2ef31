package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultReloadDelay is how long Board waits after a failed mutation before
// refetching the list.
const DefaultReloadDelay = 1500 * time.Millisecond

// Board is a local view of the todo list with optimistic mutations: local state
// changes first, then the request is sent. When a request fails the local copy
// is discarded and, after ReloadDelay, the whole list is fetched again.
type Board struct {
	c           *Client
	ReloadDelay time.Duration

	mu        sync.Mutex
	items     []Todo
	reloadErr error
	wg        sync.WaitGroup
}

func NewBoard(c *Client) *Board {
	return &Board{c: c, ReloadDelay: DefaultReloadDelay}
}

// Load replaces the local list with the server's.
func (b *Board) Load(ctx context.Context) error {
	list, err := b.c.List(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.items = list
	b.mu.Unlock()
	return nil
}

// Items returns a copy of the local list.
func (b *Board) Items() []Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Todo, len(b.items))
	copy(out, b.items)
	return out
}

// Wait blocks until scheduled reloads have finished and returns the error of
// the last reload that failed, if any.
func (b *Board) Wait() error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloadErr
}

func (b *Board) Toggle(ctx context.Context, id string) error {
	b.mutate(func(items []Todo) []Todo {
		for i := range items {
			if items[i].ID == id {
				items[i].IsCompleted = !items[i].IsCompleted
			}
		}
		return items
	})
	return b.settle(ctx, "update todo", b.c.Toggle(ctx, id))
}

func (b *Board) Remove(ctx context.Context, id string) error {
	b.mutate(func(items []Todo) []Todo {
		out := items[:0]
		for _, t := range items {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	return b.settle(ctx, "delete todo", b.c.Delete(ctx, id))
}

// Edit replaces the description of id.
func (b *Board) Edit(ctx context.Context, id, description string) error {
	var updated Todo
	found := false
	b.mutate(func(items []Todo) []Todo {
		for i := range items {
			if items[i].ID == id {
				items[i].Description = description
				updated, found = items[i], true
			}
		}
		return items
	})
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.settle(ctx, "update todo", b.c.Update(ctx, updated))
}

// Add creates a todo. The new item appears locally once the server has assigned its ID.
func (b *Board) Add(ctx context.Context, description string) (Todo, error) {
	t, err := b.c.Create(ctx, description)
	if err != nil {
		return Todo{}, b.settle(ctx, "add todo", err)
	}
	b.mutate(func(items []Todo) []Todo { return append(items, t) })
	return t, nil
}

func (b *Board) mutate(fn func([]Todo) []Todo) {
	b.mu.Lock()
	b.items = fn(b.items)
	b.mu.Unlock()
}

// reload refetches the list. When that fails too the local list is dropped,
// since it still carries the rejected optimistic change.
func (b *Board) reload(ctx context.Context) {
	list, err := b.c.List(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.items = nil
		b.reloadErr = fmt.Errorf("reload todos: %w", err)
		return
	}
	b.items = list
	b.reloadErr = nil
}

// settle schedules a full reload when err is non-nil and reports the failure.
func (b *Board) settle(ctx context.Context, action string, err error) error {
	if err == nil {
		return nil
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		select {
		case <-time.After(b.ReloadDelay):
		case <-ctx.Done():
			return
		}
		b.reload(context.WithoutCancel(ctx))
	}()
	return fmt.Errorf("failed to %s, please try again: %w", action, err)
}
