package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/user"
)

type assignmentApi struct {
	svc     assignment.Service
	userSvc user.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc assignment.Service, userSvc user.Service) {
	api := assignmentApi{svc: svc, userSvc: userSvc}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.GET("/:id/stats", api.stats)

	cg := g.Group("/completions", jwt)
	cg.GET("", api.queryCompletions)
	cg.POST("/toggle", api.toggleCompletion)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	assignments, err := api.svc.QueryVisible(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.GetByID(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(ctx.Request().Context(), orig, api.svc); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), usr, orig.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	stats, err := api.svc.GetStats(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *assignmentApi) queryCompletions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	completions, err := api.svc.ListCompletions(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying completions")
	}
	if completions == nil {
		completions = []assignment.Completion{}
	}
	return ctx.JSON(http.StatusOK, completions)
}

func (api *assignmentApi) toggleCompletion(ctx echo.Context) error {
	var data ToggleCompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleCompletionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	completed, err := api.svc.Toggle(ctx.Request().Context(), claims.Subject, data.AssignmentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ToggleCompletionResponse{Completed: completed})
}
