package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ChristopherDeLaRosa/academia/core/academic"
)

type academicApi struct {
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *academic.Service) {
	api := &academicApi{svc: svc}

	g.GET("/courses/:id", api.getCourse, jwt)
	g.GET("/sections/:id", api.getSection, jwt)
	g.GET("/students/:id", api.getStudent, jwt)
}

func (api *academicApi) getCourse(ctx echo.Context) error {
	crs, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *academicApi) getSection(ctx echo.Context) error {
	sec, err := api.svc.GetSection(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sec)
}

// getStudent applies the same capability check as the student reports.
func (api *academicApi) getStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := caller.CanViewStudent(ctx.Param("id")); err != nil {
		return err
	}

	std, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}
