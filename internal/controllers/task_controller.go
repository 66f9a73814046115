package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard-be/internal/models"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
	"taskboard-be/internal/service"
)

const (
	taskNotFound      = "Task not found."
	tasksDefaultLimit = 100
)

type TaskController struct {
	taskService service.TaskService
}

func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// List handles GET /api/tasks
func (tc *TaskController) List(c *gin.Context) {
	q, err := query.Parse(listParams(c), repository.TaskFields, tasksDefaultLimit)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	if q.Count {
		n, err := tc.taskService.Count(c.Request.Context(), q.Filter)
		if err != nil {
			respondError(c, err, taskNotFound)
			return
		}
		respond(c, http.StatusOK, messageOK, n)
		return
	}

	tasks, err := tc.taskService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}
	project(c, http.StatusOK, q.Projection, tasks)
}

// Create handles POST /api/tasks
func (tc *TaskController) Create(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	task, err := tc.taskService.Create(c.Request.Context(), req.Entity())
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}
	respond(c, http.StatusCreated, "Task created.", task)
}

// Get handles GET /api/tasks/:id
func (tc *TaskController) Get(c *gin.Context) {
	projection, err := query.ParseSelect(c.Query("select"), repository.TaskFields)
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	task, err := tc.taskService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}
	project(c, http.StatusOK, projection, task)
}

// Update handles PUT /api/tasks/:id
func (tc *TaskController) Update(c *gin.Context) {
	var req models.UpdateTaskRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, err, taskNotFound)
		return
	}

	task, err := tc.taskService.Update(c.Request.Context(), c.Param("id"), req.Patch())
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}
	respond(c, http.StatusOK, "Task updated.", task)
}

// Delete handles DELETE /api/tasks/:id
func (tc *TaskController) Delete(c *gin.Context) {
	task, err := tc.taskService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, taskNotFound)
		return
	}
	respond(c, http.StatusOK, "Task deleted.", task)
}
