package services

import (
	"math"

	"gorm.io/gorm"

	"course-market/internal/models"
)

// CourseService serves the read-only course catalog
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new CourseService
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CourseWithPurchase is a catalog entry annotated with whether the
// requesting user already owns it. userID 0 means anonymous.
type CourseWithPurchase struct {
	models.Course
	IsPurchased bool `json:"isPurchased"`
}

// CoursePage is one page of the catalog
type CoursePage struct {
	Courses    []CourseWithPurchase `json:"courses"`
	Pagination Pagination           `json:"pagination"`
}

// GetAllCourses returns one page of active courses, newest first, optionally
// filtered by category
func (s *CourseService) GetAllCourses(page, limit int, category string, userID uint) (*CoursePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	query := s.db.Model(&models.Course{}).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var courses []models.Course
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, err
	}

	annotated, err := s.addPurchaseStatus(courses, userID)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &CoursePage{
		Courses: annotated,
		Pagination: Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalItems:      total,
			Limit:           limit,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}

// GetCourseByID returns one active course
func (s *CourseService) GetCourseByID(courseID, userID uint) (*CourseWithPurchase, error) {
	var course models.Course
	err := s.db.Where("id = ? AND is_active = ?", courseID, true).First(&course).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Message: "Course not found or has been removed"}
	}
	if err != nil {
		return nil, err
	}

	annotated, err := s.addPurchaseStatus([]models.Course{course}, userID)
	if err != nil {
		return nil, err
	}
	return &annotated[0], nil
}

// GetLatestCourses returns the most recently added active courses
func (s *CourseService) GetLatestCourses(limit int, userID uint) ([]CourseWithPurchase, error) {
	if limit < 1 {
		limit = 4
	}

	var courses []models.Course
	if err := s.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, err
	}

	return s.addPurchaseStatus(courses, userID)
}

func (s *CourseService) addPurchaseStatus(courses []models.Course, userID uint) ([]CourseWithPurchase, error) {
	annotated := make([]CourseWithPurchase, 0, len(courses))

	owned := make(map[uint]bool)
	if userID != 0 && len(courses) > 0 {
		ids := make([]uint, 0, len(courses))
		for _, course := range courses {
			ids = append(ids, course.ID)
		}

		var purchases []models.Purchase
		if err := s.db.Where("user_id = ? AND status = ? AND course_id IN ?",
			userID, models.PurchaseStatusPaid, ids).
			Find(&purchases).Error; err != nil {
			return nil, err
		}
		for _, purchase := range purchases {
			owned[purchase.CourseID] = true
		}
	}

	for _, course := range courses {
		annotated = append(annotated, CourseWithPurchase{
			Course:      course,
			IsPurchased: owned[course.ID],
		})
	}

	return annotated, nil
}
