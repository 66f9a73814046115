package entities

import "time"

const UnassignedUserName = "unassigned"

// Task represents a task document. AssignedUser is empty when the task is unassigned.
type Task struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	Completed        bool      `json:"completed"`
	AssignedUser     string    `json:"assignedUser"`
	AssignedUserName string    `json:"assignedUserName"`
	DateCreated      time.Time `json:"dateCreated"`
}

// Pending reports whether the task belongs in its assignee's pendingTasks.
func (t *Task) Pending() bool {
	return t.AssignedUser != "" && !t.Completed
}

type TaskPatch struct {
	Name             *string
	Description      *string
	Deadline         *time.Time
	Completed        *bool
	AssignedUser     *string
	AssignedUserName *string
}

func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline.UTC()
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.AssignedUser != nil {
		t.AssignedUser = *p.AssignedUser
	}
	if p.AssignedUserName != nil {
		t.AssignedUserName = *p.AssignedUserName
	}
}
