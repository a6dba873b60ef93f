package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core/cohort"
)

type cohortApi struct {
	svc cohort.Service
}

func registerCohortAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc cohort.Service) {
	api := cohortApi{svc: svc}

	cg := g.Group("/cohorts", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, adminMiddleware())
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *cohortApi) query(ctx echo.Context) error {
	cohorts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []cohort.Cohort{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *cohortApi) create(ctx echo.Context) error {
	var data cohort.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cohortApi) update(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data cohort.UpdateCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}
	if err := data.Validate(ctx.Request().Context(), c, api.svc); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
