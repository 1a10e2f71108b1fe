package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasktrack/internal/common"
	"tasktrack/internal/domain/model"
	"tasktrack/internal/domain/repository"
	"tasktrack/internal/platform/cache"

	"github.com/google/uuid"
)

// TaskService orchestrates task CRUD. Every operation is scoped to the
// calling user's id; the repository makes another user's task look exactly
// like a missing one.
type TaskService struct {
	taskRepo  repository.TaskRepository
	listCache *cache.TaskListCache
}

func NewTaskService(taskRepo repository.TaskRepository, listCache *cache.TaskListCache) *TaskService {
	return &TaskService{taskRepo: taskRepo, listCache: listCache}
}

// TaskInput is the full mutable field set of a task. Create and Update both
// consume it wholesale: an omitted field takes its default, never the prior
// stored value.
type TaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Completed   bool    `json:"completed"`
}

// parseDueDate accepts RFC 3339 or a bare calendar date, which is what the
// browser date input submits.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (in *TaskInput) validate() (model.TaskPriority, *time.Time, error) {
	fields := map[string]string{}

	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}

	priority := model.PriorityLow
	if in.Priority != "" {
		priority = model.TaskPriority(in.Priority)
		if !model.ValidPriority(priority) {
			fields["priority"] = "priority must be Low, Medium or High"
		}
	}

	var dueDate *time.Time
	if in.DueDate != nil && *in.DueDate != "" {
		parsed, err := parseDueDate(*in.DueDate)
		if err != nil {
			fields["dueDate"] = "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD"
		} else {
			dueDate = &parsed
		}
	}

	if len(fields) > 0 {
		return "", nil, common.NewValidationError(fields)
	}
	return priority, dueDate, nil
}

// List returns the user's tasks in insertion order. Filtering and sorting by
// due date or priority is the caller's concern.
func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	if tasks, ok := s.listCache.Get(ctx, userID); ok {
		return tasks, nil
	}

	tasks, err := s.taskRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	s.listCache.Set(ctx, userID, tasks)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (*model.Task, error) {
	priority, dueDate, err := input.validate()
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    priority,
		DueDate:     dueDate,
		Completed:   input.Completed,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.listCache.Invalidate(ctx, userID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByOwnerAndID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces the full mutable field set from input. This is a deliberate
// replace-not-merge contract: updating only the title resets priority,
// description, dueDate and completed to their defaults.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, input TaskInput) (*model.Task, error) {
	priority, dueDate, err := input.validate()
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          taskID,
		OwnerID:     userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    priority,
		DueDate:     dueDate,
		Completed:   input.Completed,
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx, userID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.taskRepo.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.listCache.Invalidate(ctx, userID)
	return nil
}
