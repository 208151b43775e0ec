package controllers

import (
	"errors"
	"net/http"

	"equiplend/app"
	"equiplend/db"
	"equiplend/lending"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Srv struct {
	Repo    *db.Repo
	Lending *lending.Service
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Repo: a.Repo, Lending: a.Lending}
}

// writeError maps domain errors onto HTTP. Store failures stay 500 and
// are not masked.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, db.ErrEquipmentUnavailable),
		errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrStudentSuspended),
		errors.Is(err, db.ErrAlreadyReturned),
		errors.Is(err, lending.ErrNoEquipment),
		errors.Is(err, lending.ErrEndDateNotFuture),
		errors.Is(err, lending.ErrEmptyReason):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// actor resolves the acting staff member for audit rows. Authentication
// lives in front of this service; it forwards the name in a header.
func actor(c *gin.Context) string {
	if v := c.GetHeader("X-Staff-Name"); v != "" {
		return v
	}
	return "staff"
}
