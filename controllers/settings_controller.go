package controllers

import (
	"net/http"

	"equiplend/app"
	"equiplend/models"

	"github.com/gin-gonic/gin"
)

type SettingsController struct{ *Srv }

func NewSettingsController(s *Srv) *SettingsController { return &SettingsController{Srv: s} }

func (sc *SettingsController) GetSettings(c *gin.Context) {
	s, err := sc.Repo.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var in models.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	// Loan durations are bounded to 5..480 minutes.
	if in.MinLoanMinutes < 5 || in.MaxLoanMinutes > 480 ||
		in.MinLoanMinutes > in.MaxLoanMinutes ||
		in.DefaultLoanMinutes < in.MinLoanMinutes ||
		in.DefaultLoanMinutes > in.MaxLoanMinutes {
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": "loan duration bounds out of range"})
		return
	}
	if in.RetentionDays <= 0 {
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": "retention days must be positive"})
		return
	}
	if err := sc.Repo.UpdateSettings(c.Request.Context(), &in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}
