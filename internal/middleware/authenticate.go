package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "userID"

// ViewerResolver maps a bearer token to a local user id.
type ViewerResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// ChainResolver tries each resolver in order and returns the first success.
type ChainResolver []ViewerResolver

func (c ChainResolver) Resolve(ctx context.Context, token string) (string, error) {
	err := error(apperror.Unauthorized("invalid token"))
	for i, r := range c {
		id, rerr := r.Resolve(ctx, token)
		if rerr == nil {
			return id, nil
		}
		// the first resolver is the primary scheme; report its error
		if i == 0 {
			err = rerr
		}
	}
	return "", err
}

// Authenticate reads "Authorization: Bearer <token>" and stores the viewer id
// under UserIDKey. With optional set, a request without the header passes
// through anonymously; a header that is present but invalid is always rejected.
func Authenticate(resolver ViewerResolver, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if optional {
					return next(c)
				}
				return apperror.Unauthorized("missing Authorization header")
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return apperror.Unauthorized("Authorization header must be in Bearer format")
			}

			userID, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthorized) {
					return err
				}
				return apperror.Unauthorized("invalid token")
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or "" for an anonymous request.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
