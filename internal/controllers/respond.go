package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskboard-be/internal/models"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
	"taskboard-be/internal/service"
)

const messageOK = "OK"

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, models.Envelope{Message: message, Data: data})
}

// respondError maps a service or store error onto the status codes of the API.
// notFound is the message used for missing documents and malformed ids.
func respondError(c *gin.Context, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(c, http.StatusBadRequest, "Validation Error: "+verr.Error(), models.NoData)
	case errors.Is(err, repository.ErrDuplicateKey):
		respond(c, http.StatusBadRequest, "Email already exists.", models.NoData)
	case errors.Is(err, query.ErrBadRequest):
		respond(c, http.StatusBadRequest, err.Error(), models.NoData)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		respond(c, http.StatusNotFound, notFound, models.NoData)
	default:
		_ = c.Error(err)
		respond(c, http.StatusInternalServerError, err.Error(), models.NoData)
	}
}

// bindBody binds a JSON or form-encoded body and runs its binding tags.
// Decode and tag failures are both reported as validation errors.
func bindBody(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		return &service.ValidationError{Problems: bindProblems(err)}
	}
	return nil
}

func bindProblems(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := wireName(fe.Field())
		switch fe.Tag() {
		case "required":
			problems = append(problems, field+" is required")
		case "min":
			problems = append(problems, field+" cannot be empty")
		default:
			problems = append(problems, field+" is invalid")
		}
	}
	return problems
}

// wireName turns a Go field name into its JSON name (AssignedUser -> assignedUser).
func wireName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func listParams(c *gin.Context) query.Params {
	return query.Params{
		Where:  c.Query("where"),
		Sort:   c.Query("sort"),
		Select: c.Query("select"),
		Skip:   c.Query("skip"),
		Limit:  c.Query("limit"),
		Count:  c.Query("count"),
	}
}

// project renders data through the select projection, if any.
func project(c *gin.Context, status int, p query.Projection, data any) {
	shaped, err := p.ApplyTo(data)
	if err != nil {
		respondError(c, err, "")
		return
	}
	respond(c, status, messageOK, shaped)
}
