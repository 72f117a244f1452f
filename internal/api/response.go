package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"storefront-service/internal/entity"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPage          = 1_000_000 // keeps (page-1)*limit far from overflow
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode    int         `json:"statusCode"`
	StatusMessage string      `json:"statusMessage"`
	Data          interface{} `json:"data"`
}

// ErrorHandler is installed as echo's HTTPErrorHandler so handlers and
// middleware can simply return errors.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message, data := resolveError(err)
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{StatusCode: code, StatusMessage: message, Data: data})
	}
	if writeErr != nil {
		logger.Error().Err(writeErr).Msg("Error writing error response")
	}
}

func resolveError(err error) (int, string, interface{}) {
	var validationErr *entity.ValidationError
	var productErr *entity.ProductError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, "validation failed", validationErr.Fields
	case errors.As(err, &productErr):
		return http.StatusBadRequest, productErr.Error(), nil
	case errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrOrderNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, entity.ErrDuplicateRequest):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, entity.ErrPersistence):
		return http.StatusInternalServerError, err.Error(), nil
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = fmt.Sprint(httpErr.Message)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			msg = "internal server error"
		}
		return httpErr.Code, msg, nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

// paginationParams reads page and limit, defaulting to 1 and 10. page is capped
// at maxPage and limit at 100.
func paginationParams(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
