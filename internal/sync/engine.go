// Package sync keeps a local mirror of the caller's task list in step with
// the server. Mutations other than the completion toggle are pessimistic:
// the request goes out first and a full refetch follows on success. The
// toggle flips the cache immediately and reconciles by refetching if the
// push fails, which also absorbs concurrent changes made elsewhere.
package sync

import (
	"context"
	"errors"
	"sort"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/domain"
	"taskboard/internal/validation"
)

// API is the slice of client.Client the engine uses; tests substitute a
// fake.
type API interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft client.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, fields map[string]any) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Filter selects which cached tasks are visible.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// State is the view lifecycle.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

// Status labels derived from the completed flag.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// TaskView is a cached task plus its derived status label.
type TaskView struct {
	domain.Task
	Status string
}

// Engine is the client-side cache and its reconciliation rules. It is not
// safe for concurrent use; callers sequence operations, matching the
// one-outstanding-mutation usage model.
type Engine struct {
	api    API
	now    func() time.Time
	state  State
	tasks  []TaskView
	filter Filter

	lastErr   string
	loggedOut bool
}

func NewEngine(api API) *Engine {
	return &Engine{
		api:    api,
		now:    time.Now,
		state:  StateLoading,
		filter: FilterAll,
	}
}

// Refresh replaces the whole cache with the server's list. On any failure
// the cache is cleared rather than left stale, and a 401 flips the engine
// into the logged-out state.
func (e *Engine) Refresh(ctx context.Context) error {
	e.state = StateLoading

	tasks, err := e.api.ListTasks(ctx)
	if err != nil {
		e.tasks = nil
		e.state = StateFailed
		e.noteError(err)
		return err
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toView(t))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })

	e.tasks = views
	e.state = StateLoaded
	e.lastErr = ""
	return nil
}

// ToggleCompleted flips the task's completion optimistically, then pushes a
// partial update carrying only the completed flag. A failed push discards
// the optimistic flip by refetching the authoritative list.
func (e *Engine) ToggleCompleted(ctx context.Context, id int64) error {
	var completed bool
	found := false
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			completed = !e.tasks[i].Completed
			e.tasks[i].Completed = completed
			e.tasks[i].Status = statusLabel(completed)
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}

	if _, err := e.api.UpdateTask(ctx, id, map[string]any{"completed": completed}); err != nil {
		e.noteError(err)
		_ = e.Refresh(ctx)
		return err
	}
	return nil
}

// Create sends the draft and refetches on success. Nothing is added to the
// cache locally; the server assigns the id.
func (e *Engine) Create(ctx context.Context, draft client.TaskDraft) error {
	if _, err := e.api.CreateTask(ctx, draft); err != nil {
		e.noteError(err)
		return err
	}
	return e.Refresh(ctx)
}

// Edit sends a partial update and refetches on success.
func (e *Engine) Edit(ctx context.Context, id int64, fields map[string]any) error {
	if _, err := e.api.UpdateTask(ctx, id, fields); err != nil {
		e.noteError(err)
		return err
	}
	return e.Refresh(ctx)
}

// Delete removes the task and refetches. A 404 also refetches: the task is
// gone either way, the cache just found out late.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	if err := e.api.DeleteTask(ctx, id); err != nil {
		e.noteError(err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			_ = e.Refresh(ctx)
		}
		return err
	}
	return e.Refresh(ctx)
}

func (e *Engine) SetFilter(f Filter) {
	e.filter = f
}

func (e *Engine) Filter() Filter    { return e.filter }
func (e *Engine) State() State      { return e.state }
func (e *Engine) LastError() string { return e.lastErr }
func (e *Engine) LoggedOut() bool   { return e.loggedOut }
func (e *Engine) Tasks() []TaskView { return e.tasks }

// Visible applies the current filter over the full cache.
func (e *Engine) Visible() []TaskView {
	if e.filter == FilterAll {
		return e.tasks
	}
	want := string(e.filter)
	out := make([]TaskView, 0, len(e.tasks))
	for _, t := range e.tasks {
		if t.Status == want {
			out = append(out, t)
		}
	}
	return out
}

// ActiveCount is the number of not-yet-completed tasks in the cache.
func (e *Engine) ActiveCount() int {
	n := 0
	for _, t := range e.tasks {
		if t.Status == StatusActive {
			n++
		}
	}
	return n
}

// Overdue reports whether the task's deadline lies strictly before the
// start of the current local day. Completed tasks are never overdue, and an
// unparseable deadline does not count.
func (e *Engine) Overdue(t TaskView) bool {
	if t.Completed || t.Deadline == "" {
		return false
	}
	day, month, year, ok := validation.ParseDate(t.Deadline)
	if !ok {
		return false
	}

	now := e.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deadline := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	return deadline.Before(todayStart)
}

func (e *Engine) noteError(err error) {
	e.lastErr = err.Error()
	if errors.Is(err, domain.ErrUnauthenticated) {
		e.loggedOut = true
		e.tasks = nil
		e.state = StateFailed
	}
}

func toView(t domain.Task) TaskView {
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	return TaskView{Task: t, Status: statusLabel(t.Completed)}
}

func statusLabel(completed bool) string {
	if completed {
		return StatusCompleted
	}
	return StatusActive
}

// NextFilter cycles all -> active -> completed -> all, for UIs with a
// single filter key.
func NextFilter(f Filter) Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}
