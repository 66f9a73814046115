package entities

import "time"

// User represents a user document. PendingTasks mirrors the ids of tasks
// assigned to this user that are not completed; the store does not enforce it.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PendingTasks []string  `json:"pendingTasks"`
	DateCreated  time.Time `json:"dateCreated"`
}

// UserPatch holds the fields present in an update request. Nil means "leave as is".
type UserPatch struct {
	Name         *string
	Email        *string
	PendingTasks *[]string
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PendingTasks != nil {
		u.PendingTasks = append([]string{}, (*p.PendingTasks)...)
	}
}
