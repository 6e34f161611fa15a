package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/labstack/echo/v4"
)

// respondError turns a service error into the HTTP error echo renders.
// Domain errors keep their message and details; anything else is logged and
// hidden behind a 500.
func respondError(c echo.Context, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Code == apperrors.CodeInternal {
			logging.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
		}
		body := echo.Map{"message": appErr.Message}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		return echo.NewHTTPError(appErr.HTTPStatus(), body)
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	logging.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, err)
	}
	return nil
}

func parseID(c echo.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return uint(id), nil
}
