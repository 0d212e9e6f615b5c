package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

const (
	ErrBadRequestCode = "BAD_REQUEST"
	ErrNotFoundCode   = "NOT_FOUND"
	ErrInternalCode   = "INTERNAL_ERROR"
)

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequestCode
	case http.StatusNotFound:
		return ErrNotFoundCode
	default:
		return ErrInternalCode
	}
}

func respondError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorInfo{Code: errorCode(status), Message: message})
}

// respondServiceError maps blog errors onto HTTP statuses. Internal failures
// are logged and replaced with a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		var notFound *blog.NotFoundError
		if errors.As(err, &notFound) {
			respondError(c, http.StatusNotFound, notFound.Error(), err)
			return
		}
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, blog.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error", err)
	}
}
