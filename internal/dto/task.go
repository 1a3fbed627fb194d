package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/knagato/taskflow-api/internal/models"
	"github.com/knagato/taskflow-api/internal/repository"
	"github.com/knagato/taskflow-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	Tags        []string            `json:"tags"`
	IsImportant bool                `json:"is_important"`
	OwnerID     uuid.UUID           `json:"owner_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskListResponse represents a list of tasks, with pagination metadata
// when the caller asked for a bounded page.
type TaskListResponse struct {
	Tasks      []TaskDTO                 `json:"tasks"`
	Count      int64                     `json:"count"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// TaskStatsDTO represents the aggregate counts for one owner
type TaskStatsDTO struct {
	CountsByStatus map[models.TaskStatus]int64 `json:"counts_by_status"`
	TotalTasks     int64                       `json:"total_tasks"`
	CompletedTasks int64                       `json:"completed_tasks"`
	ImportantTasks int64                       `json:"important_tasks"`
	CompletionRate float64                     `json:"completion_rate"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Tags:        tags,
		IsImportant: task.IsImportant,
		OwnerID:     task.OwnerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, total int64, pagination *utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Count:      total,
		Pagination: pagination,
	}
}

// ToTaskStatsDTO converts repository stats to TaskStatsDTO
func ToTaskStatsDTO(stats repository.TaskStats) TaskStatsDTO {
	counts := stats.CountsByStatus
	if counts == nil {
		counts = map[models.TaskStatus]int64{}
	}

	return TaskStatsDTO{
		CountsByStatus: counts,
		TotalTasks:     stats.TotalTasks,
		CompletedTasks: stats.CompletedTasks,
		ImportantTasks: stats.ImportantTasks,
		CompletionRate: stats.CompletionRate,
	}
}
