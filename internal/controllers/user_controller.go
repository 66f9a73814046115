package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard-be/internal/models"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
	"taskboard-be/internal/service"
)

const userNotFound = "User not found."

// usersDefaultLimit of 0 returns every matching user.
const usersDefaultLimit = 0

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

// List handles GET /api/users
func (uc *UserController) List(c *gin.Context) {
	q, err := query.Parse(listParams(c), repository.UserFields, usersDefaultLimit)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	if q.Count {
		n, err := uc.userService.Count(c.Request.Context(), q.Filter)
		if err != nil {
			respondError(c, err, userNotFound)
			return
		}
		respond(c, http.StatusOK, messageOK, n)
		return
	}

	users, err := uc.userService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	project(c, http.StatusOK, q.Projection, users)
}

// Create handles POST /api/users
func (uc *UserController) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, err, userNotFound)
		return
	}

	user, err := uc.userService.Create(c.Request.Context(), req.Entity())
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	respond(c, http.StatusCreated, "User created.", user)
}

// Get handles GET /api/users/:id
func (uc *UserController) Get(c *gin.Context) {
	projection, err := query.ParseSelect(c.Query("select"), repository.UserFields)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}

	user, err := uc.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	project(c, http.StatusOK, projection, user)
}

// Update handles PUT /api/users/:id
func (uc *UserController) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, err, userNotFound)
		return
	}

	user, err := uc.userService.Update(c.Request.Context(), c.Param("id"), req.Patch())
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	respond(c, http.StatusOK, "User updated.", user)
}

// Delete handles DELETE /api/users/:id. The user's pending tasks are unassigned.
func (uc *UserController) Delete(c *gin.Context) {
	user, err := uc.userService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	respond(c, http.StatusOK, "User deleted. Its pending tasks were unassigned.", user)
}
