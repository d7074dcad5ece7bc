package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core/user"
)

// staffMiddleware restricts an endpoint to callers that may manage grades.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			caller, err := getContextCaller(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context caller")
			}
			if err := caller.CanManageGrades(); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// adminMiddleware restricts an endpoint to administrators.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			caller, err := getContextCaller(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context caller")
			}
			if caller.Role != user.RoleAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
