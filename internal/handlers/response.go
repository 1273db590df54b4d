package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nanogram/backend/internal/middleware"
	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
	"github.com/anonto42/nanogram/backend/pkg/validators"
)

// RouteAuth carries the two authentication modes routes are registered with.
type RouteAuth struct {
	Required echo.MiddlewareFunc
	Optional echo.MiddlewareFunc
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondWithMeta(c echo.Context, status int, data, meta interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "meta": meta})
}

func pageMeta(p models.Pagination) echo.Map {
	return echo.Map{"page": p.Page, "limit": p.Limit}
}

// getUserIDFromContext returns the authenticated viewer, or "" when anonymous.
func getUserIDFromContext(c echo.Context) string {
	return middleware.UserID(c)
}

// bindAndValidate decodes the JSON body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.InvalidArgument("invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return apperror.InvalidArgument(validators.FormatValidationError(err))
	}
	return nil
}

func pagination(c echo.Context, defaultLimit int) models.Pagination {
	return models.ParsePagination(c.QueryParam("page"), c.QueryParam("limit"), defaultLimit)
}

// HTTPErrorHandler renders every error as {success:false, error:{code, message}}.
// Internal failures are logged here and reported without detail.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, message := describe(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		body := echo.Map{
			"success": false,
			"error":   echo.Map{"code": code, "message": message},
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Warn("writing error response failed", zap.Error(werr))
		}
	}
}

func describe(err error) (int, string, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		} else if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			message = http.StatusText(he.Code)
		}
		return he.Code, statusCode(he.Code), message
	}

	appErr := apperror.Wrap(err)
	return apperror.StatusCode(appErr), appErr.Code(), appErr.Message
}

// statusCode names a bare HTTP status the way AppError codes are named.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusInternalServerError:
		return "INTERNAL"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
