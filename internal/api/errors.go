package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"task-manager/internal/apperr"
)

const msgInternal = "Internal server error"

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.BadRequest, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every handler error as {"message": ...}. Details of
// unexpected errors are only exposed outside production.
func errorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err, production)
		if status >= http.StatusInternalServerError {
			log.Printf("[error] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Printf("[error] write error response: %v", werr)
		}
	}
}

func renderError(err error, production bool) (int, errorResponse) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := statusFor(appErr.Kind)
		if status == http.StatusInternalServerError {
			return status, internalBody(err, production)
		}
		return status, errorResponse{Message: appErr.Message}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, internalBody(err, production)
		}
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = fmt.Sprint(httpErr.Message)
		}
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorResponse{Message: msg}
	}

	return http.StatusInternalServerError, internalBody(err, production)
}

func internalBody(err error, production bool) errorResponse {
	if production {
		return errorResponse{Message: msgInternal}
	}
	return errorResponse{Message: msgInternal, Error: err.Error()}
}
