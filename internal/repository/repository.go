package repository

import (
	"github.com/google/uuid"
	"github.com/knagato/taskflow-api/internal/models"
)

// TaskFilter holds the optional, conjunctive filters for listing tasks.
type TaskFilter struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Tag      string
	Search   string
	Page     int
	PageSize int
}

// TaskStats aggregates per-owner task counts.
type TaskStats struct {
	CountsByStatus map[models.TaskStatus]int64
	TotalTasks     int64
	CompletedTasks int64
	ImportantTasks int64
	CompletionRate float64
}

// TaskRepository defines the interface for task data access.
// Every method takes the owner's ID so that scoping cannot be skipped:
// a task belonging to another owner behaves exactly like a missing one.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task owned by ownerID
	FindByID(ownerID, id uuid.UUID) (*models.Task, error)

	// List retrieves the owner's tasks, newest first, with optional filters
	List(ownerID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error)

	// Update persists changes to a task
	Update(task *models.Task) error

	// Delete removes a task owned by ownerID; gorm.ErrRecordNotFound when absent
	Delete(ownerID, id uuid.UUID) error

	// Stats aggregates counts for the owner's tasks
	Stats(ownerID uuid.UUID) (*TaskStats, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(email string) (*models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error

	// UpdateLastLogin stamps the user's last successful authentication
	UpdateLastLogin(id uuid.UUID) error
}
