package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"course-market/internal/auth"
	"course-market/internal/services"
)

type PurchaseHandler struct {
	purchases *services.PurchaseService
}

func NewPurchaseHandler(db *gorm.DB) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: services.NewPurchaseService(db),
	}
}

// InitiatePurchase creates a pending purchase for a course
func (h *PurchaseHandler) InitiatePurchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Unauthorized",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	var req struct {
		CourseID   uint            `json:"courseId" binding:"required"`
		CourseName string          `json:"courseName" binding:"required"`
		Amount     decimal.Decimal `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	purchase, err := h.purchases.InitiatePurchase(userID, req.CourseID, req.CourseName, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"purchaseId": purchase.ID,
		"courseName": purchase.CourseName,
		"amount":     purchase.Amount,
		"status":     purchase.Status,
	})
}

// PayPurchase settles a pending purchase with the submitted card details
func (h *PurchaseHandler) PayPurchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Unauthorized",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	purchaseID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "Invalid purchase id",
			"statusCode": http.StatusBadRequest,
		})
		return
	}

	var req struct {
		CardNumber string `json:"cardNumber" binding:"required"`
		Expiry     string `json:"expiry" binding:"required"`
		CVV        string `json:"cvv" binding:"required"`
		CardHolder string `json:"cardHolder" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	purchase, err := h.purchases.ProcessPurchase(uint(purchaseID), userID, services.PaymentDetails{
		CardNumber: req.CardNumber,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
		CardHolder: req.CardHolder,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment successful",
		"purchase": gin.H{
			"id":              purchase.ID,
			"courseName":      purchase.CourseName,
			"amount":          purchase.Amount,
			"status":          purchase.Status,
			"isFirstPurchase": purchase.IsFirstPurchase,
		},
	})
}

// GetPurchases lists the authenticated user's purchases, newest first
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Unauthorized",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	purchases, err := h.purchases.GetUserPurchases(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchases)
}
