package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/birlikkoshan/todo-serverless/internal/cache"
	dom "github.com/birlikkoshan/todo-serverless/internal/domain"
	"github.com/birlikkoshan/todo-serverless/internal/repo"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrBadRequest       = errors.New("bad request")
	ErrIDMismatch       = fmt.Errorf("%w: ID mismatch", ErrBadRequest)
	ErrConflict         = errors.New("todo already exists")
	ErrStoreUnavailable = errors.New("todo store unavailable")
	ErrTimeout          = errors.New("request timed out")
	ErrCanceled         = errors.New("request canceled")
)

const (
	listFlightKey     = "list"
	listFlightTimeout = 30 * time.Second
)

// TodoService implements CRUD + toggle over todos.
//
// Toggle is a read-modify-write without a version check: two concurrent
// toggles of one todo can both read the same state, and the later write wins.
type TodoService struct {
	repo     repo.TodoRepo
	cache    *cache.TodoCache
	sf       singleflight.Group
	validate *validator.Validate
	now      func() time.Time
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return &TodoService{repo: r, cache: c, validate: v, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *TodoService) WithClock(now func() time.Time) *TodoService {
	s.now = now
	return s
}

func (s *TodoService) List(ctx context.Context) ([]dom.Todo, error) {
	if s.cache == nil {
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, s.storeErr(ctx, "list", err)
		}
		return list, nil
	}
	// The shared load must not die with whichever caller started it; each
	// caller still gives up on its own context.
	ch := s.sf.DoChan(listFlightKey, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listFlightTimeout)
		defer cancel()
		return s.loadList(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, s.storeErr(ctx, "list", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, s.storeErr(ctx, "list", res.Err)
		}
		return res.Val.([]dom.Todo), nil
	}
}

// loadList serves the list from the cache, refilling it from the store on a miss.
func (s *TodoService) loadList(ctx context.Context) ([]dom.Todo, error) {
	if list, err := s.cache.GetList(ctx); err == nil && list != nil {
		return list, nil
	} else if err != nil {
		log.Printf("todo cache read: %v", err)
	}
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		log.Printf("todo cache generation: %v", genErr)
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		if _, err := s.cache.SetList(ctx, gen, list); err != nil {
			log.Printf("todo cache write: %v", err)
		}
	}
	return list, nil
}

func (s *TodoService) Get(ctx context.Context, id string) (dom.Todo, error) {
	if err := requireID(id); err != nil {
		return dom.Todo{}, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, s.storeErr(ctx, "get", err)
	}
	return t, nil
}

// Create validates t, fills in ID and CreatedAt when missing and persists it.
func (s *TodoService) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	if err := s.validateTodo(t); err != nil {
		return dom.Todo{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.stamp()
	} else {
		t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Microsecond)
	}
	t.UpdatedAt = nil

	if err := s.repo.Create(ctx, t); err != nil {
		return dom.Todo{}, s.storeErr(ctx, "create", err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Update overwrites the todo stored under id with t. The record is created if
// absent. CreatedAt of an existing record is kept; UpdatedAt is set to now.
func (s *TodoService) Update(ctx context.Context, id string, t dom.Todo) error {
	if err := requireID(id); err != nil {
		return err
	}
	if t.ID != id {
		return ErrIDMismatch
	}
	if err := s.validateTodo(t); err != nil {
		return err
	}

	prev, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		t.CreatedAt = prev.CreatedAt
	case errors.Is(err, repo.ErrNotFound):
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.stamp()
		} else {
			t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Microsecond)
		}
		prev = dom.Todo{CreatedAt: t.CreatedAt}
	default:
		return s.storeErr(ctx, "update", err)
	}
	now := s.nextStamp(prev)
	t.UpdatedAt = &now

	if err := s.repo.Save(ctx, t); err != nil {
		return s.storeErr(ctx, "update", err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Delete removes the todo. A missing id is not an error.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeErr(ctx, "delete", err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Toggle flips IsCompleted and stamps UpdatedAt. Returns the stored todo.
func (s *TodoService) Toggle(ctx context.Context, id string) (dom.Todo, error) {
	if err := requireID(id); err != nil {
		return dom.Todo{}, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, s.storeErr(ctx, "toggle", err)
	}
	t = t.Toggled(s.nextStamp(t))
	if err := s.repo.Save(ctx, t); err != nil {
		return dom.Todo{}, s.storeErr(ctx, "toggle", err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) validateTodo(t dom.Todo) error {
	err := s.validate.Struct(t)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "notblank":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	return nil
}

// stamp is the current time as stored: UTC, microsecond precision.
func (s *TodoService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextStamp returns a mutation time strictly after everything already recorded
// on prev, so UpdatedAt never goes backwards when clocks are coarse or skewed.
func (s *TodoService) nextStamp(prev dom.Todo) time.Time {
	now := s.stamp()
	floor := prev.CreatedAt
	if prev.UpdatedAt != nil && prev.UpdatedAt.After(floor) {
		floor = *prev.UpdatedAt
	}
	if !now.After(floor) {
		now = floor.Add(time.Microsecond)
	}
	return now
}

// storeErr maps repository failures onto the service error taxonomy.
func (s *TodoService) storeErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrAlreadyExists):
		return ErrConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %s: %v", ErrCanceled, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("todo cache invalidate: %v", err)
	}
}
