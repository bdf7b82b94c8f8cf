package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"course-market/internal/auth"
	"course-market/internal/services"
)

type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		courses: services.NewCourseService(db),
	}
}

// GetCourses returns one page of the active course catalog
func (h *CourseHandler) GetCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	category := c.Query("category")

	// Anonymous browsing is allowed; userID 0 skips the purchase flags
	userID, _ := auth.GetUserID(c)

	result, err := h.courses.GetAllCourses(page, limit, category, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLatestCourses returns the most recently added courses
func (h *CourseHandler) GetLatestCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))

	userID, _ := auth.GetUserID(c)

	courses, err := h.courses.GetLatestCourses(limit, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourseByID returns a single active course
func (h *CourseHandler) GetCourseByID(c *gin.Context) {
	courseID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "Invalid course id",
			"statusCode": http.StatusBadRequest,
		})
		return
	}

	userID, _ := auth.GetUserID(c)

	course, err := h.courses.GetCourseByID(uint(courseID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}
