package routes

import (
	"equiplend/app"
	"equiplend/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	studentCtl := controllers.NewStudentController(s)
	equipCtl := controllers.NewEquipmentController(s)
	loanCtl := controllers.NewLoanController(s)
	atRiskCtl := controllers.NewAtRiskController(s)
	settingsCtl := controllers.NewSettingsController(s)

	// ------------------------------
	// Students & suspensions
	// ------------------------------
	students := r.Group("/api/students")
	{
		students.POST("", studentCtl.CreateStudent)
		students.GET("", studentCtl.ListStudents) // ?q=&page=&size=
		students.GET("/:id", studentCtl.GetStudent)
		students.GET("/:id/loans", studentCtl.ListStudentLoans)
		students.GET("/:id/suspensions", studentCtl.SuspensionHistory)
		students.POST("/:id/suspend", studentCtl.Suspend)
		students.POST("/:id/unsuspend", studentCtl.Unsuspend)
	}

	// ------------------------------
	// Equipment inventory
	// ------------------------------
	equipment := r.Group("/api/equipment")
	{
		equipment.POST("", equipCtl.CreateEquipment)
		equipment.GET("", equipCtl.ListEquipment) // ?q=&status=&category=&page=&size=
		equipment.PATCH("/:id/status", equipCtl.SetStatus)
	}

	// ------------------------------
	// Loan lifecycle
	// ------------------------------
	loans := r.Group("/api/loans")
	{
		loans.POST("", loanCtl.CreateLoans)
		loans.GET("", loanCtl.ListLoans) // ?status=open|active|overdue|returned&studentId=&equipmentId=
		loans.POST("/:id/return", loanCtl.Return)
		loans.PATCH("/:id/due", loanCtl.EditDueDate)
		loans.DELETE("/:id", loanCtl.Delete)
		loans.POST("/refresh-overdue", loanCtl.RefreshOverdue)
	}

	// ------------------------------
	// At-risk escalation
	// ------------------------------
	atRisk := r.Group("/api/at-risk")
	{
		atRisk.GET("", atRiskCtl.ListAtRisk)
		atRisk.POST("/:id/dismiss", atRiskCtl.Dismiss)
	}

	// ------------------------------
	// Settings (singleton)
	// ------------------------------
	settings := r.Group("/api/settings")
	{
		settings.GET("", settingsCtl.GetSettings)
		settings.PUT("", settingsCtl.UpdateSettings)
	}
}
