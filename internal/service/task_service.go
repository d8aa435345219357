package service

import (
	"context"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/validation"
)

// TaskRepository is the persistence surface the service needs. The id+owner
// pair in Update and Delete is the whole ownership check: there is no
// find-then-compare step that could leak existence.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, id, ownerID int64, patch validation.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// UserRepository is consumed by the auth handlers.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TaskService validates payloads and runs owner-scoped CRUD against the
// repository.
type TaskService struct {
	tasks TaskRepository
}

func NewTaskService(tasks TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns every task owned by ownerID, newest id first.
func (s *TaskService) List(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

// Create validates the payload in create mode and persists a new task owned
// by ownerID. Omitted optional fields get their defaults; completed is
// always false at birth, whatever the payload says.
func (s *TaskService) Create(ctx context.Context, ownerID int64, body []byte) (domain.Task, error) {
	patch, err := s.parse(body, false)
	if err != nil {
		return domain.Task{}, err
	}

	t := domain.Task{
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(*patch.Title),
		Priority: domain.PriorityMedium,
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Deadline != nil {
		t.Deadline = *patch.Deadline
	}

	if err := s.tasks.Create(ctx, &t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// Update validates the payload in update mode and applies only the fields it
// carries. ErrNotFound when ownerID owns no task with this id.
func (s *TaskService) Update(ctx context.Context, ownerID, id int64, body []byte) (domain.Task, error) {
	patch, err := s.parse(body, true)
	if err != nil {
		return domain.Task{}, err
	}
	return s.tasks.Update(ctx, id, ownerID, patch)
}

// Delete removes the task; ErrNotFound when absent or not owned, on the
// first call and on every call after.
func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.tasks.Delete(ctx, id, ownerID)
}

func (s *TaskService) parse(body []byte, isUpdate bool) (validation.TaskPatch, error) {
	fields, err := validation.DecodePayload(body)
	if err != nil {
		return validation.TaskPatch{}, &domain.ValidationError{Details: []string{err.Error()}}
	}
	if details := validation.ValidatePayload(fields, isUpdate); details != nil {
		return validation.TaskPatch{}, &domain.ValidationError{Details: details}
	}
	return validation.BuildPatch(fields), nil
}
