package models

import "taskboard-be/internal/entities"

// CreateTaskRequest represents the request body for POST /api/tasks
type CreateTaskRequest struct {
	Name             string     `json:"name" form:"name" binding:"required"`
	Description      string     `json:"description" form:"description"`
	Deadline         *Timestamp `json:"deadline" form:"deadline" binding:"required"`
	Completed        bool       `json:"completed" form:"completed"`
	AssignedUser     string     `json:"assignedUser" form:"assignedUser"`
	AssignedUserName string     `json:"assignedUserName" form:"assignedUserName"`
}

func (r *CreateTaskRequest) Entity() *entities.Task {
	task := &entities.Task{
		Name:             r.Name,
		Description:      r.Description,
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser,
		AssignedUserName: r.AssignedUserName,
	}
	if r.Deadline != nil {
		task.Deadline = r.Deadline.Time
	}
	return task
}

// UpdateTaskRequest represents the request body for PUT /api/tasks/:id
type UpdateTaskRequest struct {
	Name             *string    `json:"name" form:"name" binding:"omitempty,min=1"`
	Description      *string    `json:"description" form:"description"`
	Deadline         *Timestamp `json:"deadline" form:"deadline"`
	Completed        *bool      `json:"completed" form:"completed"`
	AssignedUser     *string    `json:"assignedUser" form:"assignedUser"`
	AssignedUserName *string    `json:"assignedUserName" form:"assignedUserName"`
}

func (r *UpdateTaskRequest) Patch() entities.TaskPatch {
	return entities.TaskPatch{
		Name:             r.Name,
		Description:      r.Description,
		Deadline:         r.Deadline.Value(),
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser,
		AssignedUserName: r.AssignedUserName,
	}
}
