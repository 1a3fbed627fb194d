package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knagato/taskflow-api/internal/database"
	"github.com/knagato/taskflow-api/internal/dto"
	"github.com/knagato/taskflow-api/internal/logger"
	"github.com/knagato/taskflow-api/internal/middleware"
	"github.com/knagato/taskflow-api/internal/models"
	"github.com/knagato/taskflow-api/internal/repository"
	"github.com/knagato/taskflow-api/internal/services"
	"github.com/knagato/taskflow-api/internal/token"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type taskEnvelope struct {
	Success bool        `json:"success"`
	Data    dto.TaskDTO `json:"data"`
}

type taskListEnvelope struct {
	Success bool                 `json:"success"`
	Data    dto.TaskListResponse `json:"data"`
}

type statsEnvelope struct {
	Success bool             `json:"success"`
	Data    dto.TaskStatsDTO `json:"data"`
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	tokens      *token.Manager
	rateLimiter *middleware.RateLimiter
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	suite.authService = services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	suite.tokens = token.NewManager("test-secret", time.Hour)
	suite.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	suite.router = NewRouter(
		NewAuthHandler(suite.authService, suite.tokens),
		NewTaskHandler(taskService),
		middleware.RequireAuth(suite.tokens, suite.authService),
		suite.rateLimiter.Middleware(),
		logger.New(io.Discard),
	)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	suite.rateLimiter.Stop()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// registerUser creates a user and returns it with a valid bearer token
func (suite *TaskHandlerTestSuite) registerUser(name, email string) (*models.User, string) {
	user, err := suite.authService.Register(services.RegisterInput{
		Name: name, Email: email, Password: "supersecret",
	})
	suite.Require().NoError(err)

	bearer, err := suite.tokens.Issue(user.ID)
	suite.Require().NoError(err)

	return user, bearer
}

// createTask creates a task over the API and returns the response DTO
func (suite *TaskHandlerTestSuite) createTask(bearer string, payload map[string]any) dto.TaskDTO {
	w := doJSON(suite.T(), suite.router, http.MethodPost, "/api/tasks", payload, bearer)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response taskEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.Data
}

// listTasks fetches the task list over the API
func (suite *TaskHandlerTestSuite) listTasks(bearer, query string) dto.TaskListResponse {
	w := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks"+query, nil, bearer)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response taskListEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.Data
}

func (suite *TaskHandlerTestSuite) TestCreateTaskDefaults() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	task := suite.createTask(bearer, map[string]any{"title": "Draft proposal"})

	suite.Equal("Draft proposal", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal([]string{}, task.Tags)
	suite.False(task.IsImportant)
	suite.Nil(task.DueDate)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskValidation() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	w := doJSON(suite.T(), suite.router, http.MethodPost, "/api/tasks", map[string]any{
		"description": "no title",
	}, bearer)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(suite.T(), suite.router, http.MethodPost, "/api/tasks", map[string]any{
		"title": "bad status", "status": "nonsense",
	}, bearer)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(suite.T(), suite.router, http.MethodPost, "/api/tasks", map[string]any{
		"title": "bad priority", "priority": "urgent",
	}, bearer)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListFilters() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	suite.createTask(bearer, map[string]any{
		"title": "Write the report", "status": "completed", "priority": "high",
		"tags": []string{"work", "writing"},
	})
	suite.createTask(bearer, map[string]any{
		"title": "Buy groceries", "priority": "low",
		"tags": []string{"errands"},
	})
	suite.createTask(bearer, map[string]any{
		"title": "Plan trip", "description": "Write an itinerary", "status": "in-progress",
	})

	list := suite.listTasks(bearer, "")
	suite.Len(list.Tasks, 3)
	suite.EqualValues(3, list.Count)
	suite.Nil(list.Pagination)

	list = suite.listTasks(bearer, "?status=completed")
	suite.Len(list.Tasks, 1)
	suite.Equal("Write the report", list.Tasks[0].Title)

	list = suite.listTasks(bearer, "?priority=low")
	suite.Len(list.Tasks, 1)
	suite.Equal("Buy groceries", list.Tasks[0].Title)

	list = suite.listTasks(bearer, "?tag=writing")
	suite.Len(list.Tasks, 1)
	suite.Equal("Write the report", list.Tasks[0].Title)

	// Case-insensitive substring match on title or description.
	list = suite.listTasks(bearer, "?search=WRITE")
	suite.Len(list.Tasks, 2)

	// Filters are conjunctive.
	list = suite.listTasks(bearer, "?search=write&status=in-progress")
	suite.Len(list.Tasks, 1)
	suite.Equal("Plan trip", list.Tasks[0].Title)

	w := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks?status=bogus", nil, bearer)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListOrdering() {
	user, bearer := suite.registerUser("Ann", "a@x.com")

	for i, title := range []string{"oldest", "middle", "newest"} {
		task := &models.Task{
			Title:     title,
			Status:    models.TaskStatusTodo,
			Priority:  models.TaskPriorityMedium,
			OwnerID:   user.ID,
			CreatedAt: time.Now().Add(time.Duration(i-3) * time.Hour),
		}
		suite.Require().NoError(suite.db.Create(task).Error)
	}

	list := suite.listTasks(bearer, "")
	suite.Require().Len(list.Tasks, 3)
	suite.Equal("newest", list.Tasks[0].Title)
	suite.Equal("middle", list.Tasks[1].Title)
	suite.Equal("oldest", list.Tasks[2].Title)
}

func (suite *TaskHandlerTestSuite) TestListPagination() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	for i := 0; i < 5; i++ {
		suite.createTask(bearer, map[string]any{"title": fmt.Sprintf("task %d", i)})
	}

	list := suite.listTasks(bearer, "?page=2&limit=2")
	suite.Len(list.Tasks, 2)
	suite.Require().NotNil(list.Pagination)
	suite.Equal(2, list.Pagination.Page)
	suite.Equal(2, list.Pagination.Limit)
	suite.EqualValues(5, list.Pagination.Total)

	// Without pagination params the listing stays unbounded.
	list = suite.listTasks(bearer, "")
	suite.Len(list.Tasks, 5)
	suite.Nil(list.Pagination)
}

func (suite *TaskHandlerTestSuite) TestGetTaskCrossUserNotFound() {
	_, annBearer := suite.registerUser("Ann", "a@x.com")
	_, bobBearer := suite.registerUser("Bob", "b@x.com")

	task := suite.createTask(annBearer, map[string]any{"title": "Ann's task"})

	// The owner sees it.
	w := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/"+task.ID.String(), nil, annBearer)
	suite.Equal(http.StatusOK, w.Code)

	// Another identity gets the same response as for a missing ID.
	crossUser := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/"+task.ID.String(), nil, bobBearer)
	suite.Equal(http.StatusNotFound, crossUser.Code)

	missing := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/00000000-0000-0000-0000-000000000001", nil, bobBearer)
	suite.Equal(http.StatusNotFound, missing.Code)
	suite.JSONEq(crossUser.Body.String(), missing.Body.String())
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskMergePatch() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	task := suite.createTask(bearer, map[string]any{
		"title":    "Draft proposal",
		"priority": "high",
		"tags":     []string{"work"},
	})

	w := doJSON(suite.T(), suite.router, http.MethodPut, "/api/tasks/"+task.ID.String(), map[string]any{
		"status": "completed",
	}, bearer)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response taskEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	suite.Equal(models.TaskStatusCompleted, response.Data.Status)
	// Omitted fields keep their prior values.
	suite.Equal("Draft proposal", response.Data.Title)
	suite.Equal(models.TaskPriorityHigh, response.Data.Priority)
	suite.Equal([]string{"work"}, response.Data.Tags)
	suite.False(response.Data.IsImportant)
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskCrossUser() {
	_, annBearer := suite.registerUser("Ann", "a@x.com")
	_, bobBearer := suite.registerUser("Bob", "b@x.com")

	task := suite.createTask(annBearer, map[string]any{"title": "Ann's task"})

	w := doJSON(suite.T(), suite.router, http.MethodPut, "/api/tasks/"+task.ID.String(), map[string]any{
		"title": "hijacked",
	}, bobBearer)
	suite.Equal(http.StatusNotFound, w.Code)

	// The task is untouched.
	list := suite.listTasks(annBearer, "")
	suite.Require().Len(list.Tasks, 1)
	suite.Equal("Ann's task", list.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	task := suite.createTask(bearer, map[string]any{"title": "Draft proposal"})

	w := doJSON(suite.T(), suite.router, http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, bearer)
	suite.Equal(http.StatusOK, w.Code)

	list := suite.listTasks(bearer, "")
	suite.Empty(list.Tasks)

	// Deleting again reports not found.
	w = doJSON(suite.T(), suite.router, http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, bearer)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestStatsEmpty() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	w := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/stats", nil, bearer)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response statsEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	suite.EqualValues(0, response.Data.TotalTasks)
	suite.EqualValues(0, response.Data.CompletedTasks)
	suite.EqualValues(0, response.Data.ImportantTasks)
	suite.Zero(response.Data.CompletionRate)
	suite.Empty(response.Data.CountsByStatus)
}

func (suite *TaskHandlerTestSuite) TestStatsCounts() {
	_, bearer := suite.registerUser("Ann", "a@x.com")

	suite.createTask(bearer, map[string]any{"title": "one", "priority": "high"})
	suite.createTask(bearer, map[string]any{"title": "two", "priority": "medium"})
	suite.createTask(bearer, map[string]any{"title": "three", "priority": "low"})

	w := doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/stats", nil, bearer)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response statsEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.EqualValues(3, response.Data.TotalTasks)
	suite.EqualValues(0, response.Data.CompletedTasks)
	suite.Zero(response.Data.CompletionRate)

	// Complete one and mark one important.
	list := suite.listTasks(bearer, "")
	suite.Require().Len(list.Tasks, 3)
	doJSON(suite.T(), suite.router, http.MethodPut, "/api/tasks/"+list.Tasks[0].ID.String(), map[string]any{
		"status": "completed", "is_important": true,
	}, bearer)

	w = doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/stats", nil, bearer)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	suite.EqualValues(3, response.Data.TotalTasks)
	suite.EqualValues(1, response.Data.CompletedTasks)
	suite.EqualValues(1, response.Data.ImportantTasks)
	suite.InDelta(33.33, response.Data.CompletionRate, 0.01)
	suite.EqualValues(1, response.Data.CountsByStatus[models.TaskStatusCompleted])
	suite.EqualValues(2, response.Data.CountsByStatus[models.TaskStatusTodo])

	// Stats are owner-scoped.
	_, bobBearer := suite.registerUser("Bob", "b@x.com")
	w = doJSON(suite.T(), suite.router, http.MethodGet, "/api/tasks/stats", nil, bobBearer)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.EqualValues(0, response.Data.TotalTasks)
}

func (suite *TaskHandlerTestSuite) TestEndToEndFlow() {
	// Register, login, create with defaults, filter, delete.
	w := doJSON(suite.T(), suite.router, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "Secret1",
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = doJSON(suite.T(), suite.router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "Secret1",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var auth authEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &auth))
	bearer := auth.Data.Token

	task := suite.createTask(bearer, map[string]any{"title": "Draft proposal"})
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal([]string{}, task.Tags)

	list := suite.listTasks(bearer, "?status=todo")
	suite.Require().Len(list.Tasks, 1)
	suite.Equal(task.ID, list.Tasks[0].ID)

	w = doJSON(suite.T(), suite.router, http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, bearer)
	suite.Equal(http.StatusOK, w.Code)

	list = suite.listTasks(bearer, "")
	suite.Empty(list.Tasks)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
