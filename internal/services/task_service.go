package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knagato/taskflow-api/internal/constants"
	"github.com/knagato/taskflow-api/internal/models"
	"github.com/knagato/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title cannot be more than 100 characters")
	ErrDescriptionTooLong = errors.New("description cannot be more than 500 characters")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
)

// TaskService handles task business logic. Every operation is scoped to
// the owner's identity; a task of another owner is indistinguishable
// from a missing one.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Tag      string
	Search   string
	Page     int
	PageSize int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	Tags        []string
	IsImportant bool
}

// UpdateTaskInput represents a merge-patch update. Nil fields keep their
// prior value.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	Tags        *[]string
	IsImportant *bool
}

// ListTasks returns the owner's tasks matching the filters, newest first
func (s *TaskService) ListTasks(ownerID uuid.UUID, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !models.ValidStatus(*input.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if input.Priority != nil && !models.ValidPriority(*input.Priority) {
		return nil, 0, ErrInvalidPriority
	}

	filter := repository.TaskFilter{
		Status:   input.Status,
		Priority: input.Priority,
		Tag:      input.Tag,
		Search:   input.Search,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(ownerID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns one of the owner's tasks
func (s *TaskService) GetTask(ownerID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ownerID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task for the owner with validated fields and
// documented defaults
func (s *TaskService) CreateTask(ownerID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if len(input.Title) > constants.MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(input.Description) > constants.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !models.ValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.Tags == nil {
		input.Tags = []string{}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		IsImportant: input.IsImportant,
		OwnerID:     ownerID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask merge-patches one of the owner's tasks
func (s *TaskService) UpdateTask(ownerID, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		if len(*input.Title) > constants.MaxTitleLength {
			return nil, ErrTitleTooLong
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if len(*input.Description) > constants.MaxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.IsImportant != nil {
		task.IsImportant = *input.IsImportant
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes one of the owner's tasks
func (s *TaskService) DeleteTask(ownerID, taskID uuid.UUID) error {
	if err := s.taskRepo.Delete(ownerID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Stats aggregates counts for the owner's tasks. A user with zero tasks
// gets a zero completion rate, not an error.
func (s *TaskService) Stats(ownerID uuid.UUID) (*repository.TaskStats, error) {
	stats, err := s.taskRepo.Stats(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return stats, nil
}
