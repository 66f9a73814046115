package models

import "taskboard-be/internal/entities"

// CreateUserRequest represents the request body for POST /api/users
type CreateUserRequest struct {
	Name         string   `json:"name" form:"name" binding:"required"`
	Email        string   `json:"email" form:"email" binding:"required"`
	PendingTasks []string `json:"pendingTasks" form:"pendingTasks"`
}

func (r *CreateUserRequest) Entity() *entities.User {
	return &entities.User{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: r.PendingTasks,
	}
}

// UpdateUserRequest represents the request body for PUT /api/users/:id.
// Absent fields are left unchanged; dateCreated is never bound.
type UpdateUserRequest struct {
	Name         *string   `json:"name" form:"name" binding:"omitempty,min=1"`
	Email        *string   `json:"email" form:"email" binding:"omitempty,min=1"`
	PendingTasks *[]string `json:"pendingTasks" form:"pendingTasks"`
}

func (r *UpdateUserRequest) Patch() entities.UserPatch {
	return entities.UserPatch{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: r.PendingTasks,
	}
}
