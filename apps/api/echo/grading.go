package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core/grading"
)

type gradingApi struct {
	svc      *grading.Service
	validate *validator.Validate
}

func registerGradingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grading.Service, validate *validator.Validate) {
	api := &gradingApi{svc: svc, validate: validate}
	staff := staffMiddleware()

	cg := g.Group("/courses/:id/rubrics", jwt)
	cg.GET("", api.listRubrics)
	cg.POST("", api.createRubric, staff)

	rg := g.Group("/rubrics/:id", jwt, staff)
	rg.PUT("", api.updateRubric)
	rg.DELETE("", api.deleteRubric)

	g.POST("/sections/:id/rubrics/:rubricId/grades", api.bulkUpsertGrades, jwt, staff)
	g.PUT("/grades/:id", api.updateGrade, jwt, staff)
}

type RubricListResponse struct {
	CourseID    string           `json:"course_id"`
	WeightTotal float64          `json:"weight_total"`
	Rubrics     []grading.Rubric `json:"rubrics"`
}

func (api *gradingApi) listRubrics(ctx echo.Context) error {
	rubrics, err := api.svc.ListRubrics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var total float64
	for _, rub := range rubrics {
		total += rub.Weight
	}
	return ctx.JSON(http.StatusOK, RubricListResponse{
		CourseID:    ctx.Param("id"),
		WeightTotal: total,
		Rubrics:     rubrics,
	})
}

func (api *gradingApi) createRubric(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	data := new(grading.NewRubric)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding new rubric")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rub, err := api.svc.CreateRubric(ctx.Request().Context(), caller.ID, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rub)
}

func (api *gradingApi) updateRubric(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetRubric(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	data := new(grading.UpdateRubric)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding rubric update")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	rub, err := api.svc.UpdateRubric(ctx.Request().Context(), caller.ID, orig.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rub)
}

func (api *gradingApi) deleteRubric(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteRubric(ctx.Request().Context(), caller.ID, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type BulkGradeRequest struct {
	Rows []grading.BulkRow `json:"rows"`
}

type BulkGradeResponse struct {
	SectionID string              `json:"section_id"`
	RubricID  string              `json:"rubric_id"`
	Applied   int                 `json:"applied"`
	Rejected  int                 `json:"rejected"`
	Results   []grading.RowResult `json:"results"`
}

func (api *gradingApi) bulkUpsertGrades(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	data := new(BulkGradeRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding grade rows")
	}

	results, err := api.svc.BulkIngest(ctx.Request().Context(), caller.ID, ctx.Param("id"), ctx.Param("rubricId"), data.Rows)
	if err != nil {
		return err
	}

	resp := BulkGradeResponse{
		SectionID: ctx.Param("id"),
		RubricID:  ctx.Param("rubricId"),
		Results:   results,
	}
	for _, res := range results {
		if res.Applied {
			resp.Applied++
		} else {
			resp.Rejected++
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

type UpdateGradeRequest struct {
	Score float64 `json:"score" validate:"min=0,max=100"`
	Note  *string `json:"note"`
}

func (api *gradingApi) updateGrade(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}

	data := new(UpdateGradeRequest)
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding grade update")
	}
	if err := api.validate.StructCtx(ctx.Request().Context(), data); err != nil {
		return err
	}

	entry, err := api.svc.UpdateEntry(ctx.Request().Context(), caller.ID, ctx.Param("id"), data.Score, data.Note)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entry)
}
