package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-market/internal/auth"
	"course-market/internal/models"
	"course-market/internal/services"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		users: services.NewUserService(db),
	}
}

type userPayload struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode"`
	Credits      int    `json:"credits"`
}

func toUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
		Credits:      user.Credits,
	}
}

func issueTokens(c *gin.Context, user *models.User, status int) {
	accessToken, err := auth.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"user":         toUserPayload(user),
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Register creates a new account, optionally attached to a referrer
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
		ReferralCode string `json:"referralCode"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.users.Register(services.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	issueTokens(c, user, http.StatusCreated)
}

// Login verifies credentials and issues tokens
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	issueTokens(c, user, http.StatusOK)
}

// Refresh exchanges a refresh token for a fresh token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	claims, err := auth.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Invalid or expired refresh token",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	issueTokens(c, user, http.StatusOK)
}

// Logout acknowledges the logout; tokens are stateless
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "Unauthorized",
			"statusCode": http.StatusUnauthorized,
		})
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserPayload(user))
}
