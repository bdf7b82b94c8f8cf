package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-market/internal/auth"
	"course-market/internal/services"
)

type DashboardHandler struct {
	credits *services.CreditService
}

func NewDashboardHandler(db *gorm.DB, frontendURL string) *DashboardHandler {
	return &DashboardHandler{
		credits: services.NewCreditService(db, frontendURL),
	}
}

// GetDashboard returns credits, referral stats and the shareable link
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Unauthorized",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	dashboard, err := h.credits.GetDashboard(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
