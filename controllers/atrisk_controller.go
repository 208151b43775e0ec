package controllers

import (
	"net/http"

	"equiplend/app"

	"github.com/gin-gonic/gin"
)

type AtRiskController struct{ *Srv }

func NewAtRiskController(s *Srv) *AtRiskController { return &AtRiskController{Srv: s} }

func (ac *AtRiskController) ListAtRisk(c *gin.Context) {
	rows, err := ac.Lending.EvaluateAtRisk(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"students": rows})
}

func (ac *AtRiskController) Dismiss(c *gin.Context) {
	count, err := ac.Lending.DismissWarning(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "lateCount": count})
}
