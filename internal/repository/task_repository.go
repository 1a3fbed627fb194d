package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/knagato/taskflow-api/internal/database"
	"github.com/knagato/taskflow-api/internal/models"
	"github.com/knagato/taskflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task owned by ownerID. A task belonging to another
// owner is reported as gorm.ErrRecordNotFound, never as forbidden.
func (r *GormTaskRepository) FindByID(ownerID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("owner_id = ? AND id = ?", ownerID, id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves the owner's tasks with filtering, newest first
func (r *GormTaskRepository) List(ownerID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.owner_id = ?", ownerID)

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array; membership is a match on the
		// quoted element within the serialized column.
		query = query.Where("tasks.tags LIKE ?", `%"`+filter.Tag+`"%`)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists changes to a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task owned by ownerID
func (r *GormTaskRepository) Delete(ownerID, id uuid.UUID) error {
	result := r.db.Where("owner_id = ? AND id = ?", ownerID, id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Stats aggregates counts for the owner's tasks
func (r *GormTaskRepository) Stats(ownerID uuid.UUID) (*TaskStats, error) {
	type statusCount struct {
		Status models.TaskStatus
		Count  int64
	}

	var rows []statusCount
	err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &TaskStats{
		CountsByStatus: make(map[models.TaskStatus]int64, len(rows)),
	}
	for _, row := range rows {
		stats.CountsByStatus[row.Status] = row.Count
		stats.TotalTasks += row.Count
		if row.Status == models.TaskStatusCompleted {
			stats.CompletedTasks = row.Count
		}
	}

	err = r.db.Model(&models.Task{}).
		Where("owner_id = ? AND is_important = ?", ownerID, true).
		Count(&stats.ImportantTasks).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}

	return stats, nil
}
