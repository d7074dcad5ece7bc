package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ChristopherDeLaRosa/academia/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := &reportApi{svc: svc}

	sg := g.Group("/students/:id", jwt)
	sg.GET("/averages", api.studentAverages)
	sg.GET("/history", api.studentHistory)

	g.GET("/sections/:id/acta", api.sectionActa, jwt, staffMiddleware())
}

func (api *reportApi) studentAverages(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.StudentCourseAverages(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reportApi) studentHistory(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.BuildStudentHistory(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reportApi) sectionActa(ctx echo.Context) error {
	res, err := api.svc.BuildSectionActa(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
