package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data as JSON with the given status.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// SuccessResponse writes a 200 JSON response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ErrorMessageResponse writes {"error": message}.
func ErrorMessageResponse(c echo.Context, statusCode int, message string) error {
	return DataResponse(c, statusCode, ErrorResponse{Error: message})
}

// InternalServerErrorResponse writes a 500 error.
func InternalServerErrorResponse(c echo.Context, message string) error {
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}
	return ErrorMessageResponse(c, http.StatusInternalServerError, message)
}

// AppErrorResponse writes an application error. Errors that are not an
// *AppError become a 500 carrying err.Error().
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorMessageResponse(c, appErr.Status, appErr.Message)
	}
	return InternalServerErrorResponse(c, err.Error())
}

// ErrorHandler renders errors returned by handlers and echo itself (404,
// 405, 413) in the {"error": ...} shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = ErrorMessageResponse(c, he.Code, msg)
		return
	}
	_ = AppErrorResponse(c, err)
}
