package controllers

import (
	"net/http"
	"strconv"
	"time"

	"equiplend/app"
	"equiplend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudentController struct{ *Srv }

func NewStudentController(s *Srv) *StudentController { return &StudentController{Srv: s} }

func (sc *StudentController) CreateStudent(c *gin.Context) {
	var in struct {
		StudentNo string `json:"studentNo" binding:"required"`
		Name      string `json:"name" binding:"required"`
		ClassYear string `json:"classYear"`
		House     string `json:"house"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	st := &models.Student{
		ID:        uuid.NewString(),
		StudentNo: in.StudentNo,
		Name:      in.Name,
		ClassYear: in.ClassYear,
		House:     in.House,
	}
	if err := sc.Repo.CreateStudent(c.Request.Context(), st); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (sc *StudentController) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := sc.Repo.ListStudents(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetStudent runs lazy expiry before answering, so a lapsed suspension is
// never shown as active.
func (sc *StudentController) GetStudent(c *gin.Context) {
	st, err := sc.Lending.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	entries, err := sc.Repo.BlacklistEntries(c.Request.Context(), st.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"student": st, "blacklistEntries": entries})
}

func (sc *StudentController) Suspend(c *gin.Context) {
	var in struct {
		EndDate time.Time `json:"endDate" binding:"required"`
		Reason  string    `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	st, err := sc.Lending.Suspend(c.Request.Context(), c.Param("id"), in.EndDate, in.Reason, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (sc *StudentController) Unsuspend(c *gin.Context) {
	st, err := sc.Lending.Unsuspend(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (sc *StudentController) ListStudentLoans(c *gin.Context) {
	ls, err := sc.Repo.ListLoans(c.Request.Context(), c.Param("id"), "", c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

func (sc *StudentController) SuspensionHistory(c *gin.Context) {
	rows, err := sc.Repo.SuspensionLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"log": rows})
}
