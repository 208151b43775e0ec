package controllers

import (
	"net/http"
	"strconv"
	"time"

	"equiplend/app"
	"equiplend/db"
	"equiplend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

func (ec *EquipmentController) CreateEquipment(c *gin.Context) {
	var in struct {
		Code     string `json:"code" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	eq := &models.Equipment{
		ID:       uuid.NewString(),
		Code:     in.Code,
		Name:     in.Name,
		Category: in.Category,
		Status:   models.EquipmentAvailable,
	}
	if err := ec.Repo.CreateEquipment(c.Request.Context(), eq); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

// ListEquipment is the staff inventory view: every item joined with its
// current open loan and an SQL-computed overdue flag.
func (ec *EquipmentController) ListEquipment(c *gin.Context) {
	q := db.EquipmentQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ec.Repo.ListEquipmentWithCurrentLoan(c.Request.Context(), q, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ec *EquipmentController) SetStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !models.ValidEquipmentStatus(in.Status) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown status"})
		return
	}
	eq, err := ec.Repo.SetEquipmentStatus(c.Request.Context(), c.Param("id"), in.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}
