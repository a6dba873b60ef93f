package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core/group"
)

type groupApi struct {
	svc group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, adminMiddleware())
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update, adminMiddleware())
	gg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

// query returns all groups for admins, the caller's own groups otherwise.
func (api *groupApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var groups []group.Group
	if claims.IsAdmin {
		groups, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		groups, err = api.svc.QueryForUser(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *groupApi) update(ctx echo.Context) error {
	g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(ctx.Request().Context(), g, api.svc); err != nil {
		return err
	}

	g, err = api.svc.Update(ctx.Request().Context(), g.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}
