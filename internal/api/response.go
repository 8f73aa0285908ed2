package api

import (
	"errors"
	"net/http"

	"office-attendance/internal/dataset"
	"office-attendance/internal/report"
	"office-attendance/internal/service"
	"office-attendance/internal/stats"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Error sends an error response.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Code: code, Message: message})
}

// BadRequest sends a 400 bad request response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Fail maps a service error onto a status code.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, stats.ErrInvalidWindow),
		errors.Is(err, stats.ErrUnknownSegment),
		errors.Is(err, report.ErrUnknownFormat):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrEmployeeNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, dataset.ErrBadgeLogUnavailable):
		Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		Error(c, http.StatusInternalServerError, err.Error())
	}
}
