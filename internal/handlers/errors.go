package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-market/internal/services"
)

// respondError maps service error kinds to HTTP status codes. Unknown errors
// become opaque 500s.
func respondError(c *gin.Context, err error) {
	var (
		notFound     *services.NotFoundError
		invalidState *services.InvalidStateError
		validation   *services.ValidationError
		duplicate    *services.DuplicateReferralError
	)

	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again later"

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		message = notFound.Message
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		message = validation.Message
	case errors.As(err, &invalidState):
		status = http.StatusBadRequest
		message = invalidState.Message
	case errors.As(err, &duplicate):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidReferralCode):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Printf("Error: %v", err)
	}

	c.JSON(status, gin.H{
		"message":    message,
		"statusCode": status,
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message":    "Validation error",
		"errors":     err.Error(),
		"statusCode": http.StatusBadRequest,
	})
}
