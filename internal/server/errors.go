package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/domain"
)

// statusFor maps an error to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrStale):
		return http.StatusConflict
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch domain.TypeOf(err) {
	case domain.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case domain.ErrorTypeDecodeFailure:
		return http.StatusUnprocessableEntity
	case domain.ErrorTypeRecognitionFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) gin.H {
	body := gin.H{"error": app.UserMessage(err)}
	if t := domain.TypeOf(err); t != "" {
		body["type"] = t
	}
	return body
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, errorBody(err))
}
