package controllers

import (
	"net/http"
	"time"

	"equiplend/app"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

func (lc *LoanController) CreateLoans(c *gin.Context) {
	var in struct {
		StudentID       string   `json:"studentId" binding:"required"`
		EquipmentIDs    []string `json:"equipmentIds" binding:"required"`
		DurationMinutes int      `json:"durationMinutes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loans, err := lc.Lending.CreateLoans(c.Request.Context(), in.StudentID, in.EquipmentIDs, in.DurationMinutes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loans": loans})
}

func (lc *LoanController) Return(c *gin.Context) {
	loan, err := lc.Lending.ReturnLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (lc *LoanController) EditDueDate(c *gin.Context) {
	var in struct {
		DueAt time.Time `json:"dueAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	loan, err := lc.Lending.EditLoanDueDate(c.Request.Context(), c.Param("id"), in.DueAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (lc *LoanController) Delete(c *gin.Context) {
	if err := lc.Lending.DeleteLoan(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (lc *LoanController) ListLoans(c *gin.Context) {
	ls, err := lc.Repo.ListLoans(c.Request.Context(),
		c.Query("studentId"), c.Query("equipmentId"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

func (lc *LoanController) RefreshOverdue(c *gin.Context) {
	n, err := lc.Lending.RefreshOverdue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"flagged": n})
}
