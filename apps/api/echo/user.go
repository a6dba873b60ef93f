package echoapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
)

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.GET("/roles", api.queryRoles)
	ag.GET("", api.query, adminMiddleware())
	ag.POST("", api.create, adminMiddleware())
	ag.PUT("/:id", api.update, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.FullName, data.Role)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if usr.Status == user.StatusArchived {
		return errAccountDeactivated
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	sortUsers(users, ordering.Orderings)

	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(ctx.Request().Context(), usr, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	var data DestroyMultipleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if data.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// the requester is silently filtered out of the id list
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if _, err := api.svc.BulkDelete(ctx.Request().Context(), claims.Subject, data.IDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// sortUsers applies the requested orderings in-place; unknown fields are
// ignored. Default is creation order as returned by the store.
func sortUsers(users []user.User, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		var less func(a, b user.User) bool
		switch ord.Field {
		case "email":
			less = func(a, b user.User) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) }
		case "full_name":
			less = func(a, b user.User) bool { return strings.ToLower(a.FullName) < strings.ToLower(b.FullName) }
		case "role":
			less = func(a, b user.User) bool { return user.RolePriority(a.Role) < user.RolePriority(b.Role) }
		case "created_at":
			less = func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
		case "last_login":
			less = func(a, b user.User) bool { return a.LastLogin.Before(b.LastLogin) }
		default:
			continue
		}
		sort.SliceStable(users, func(a, b int) bool {
			if ord.Ascending {
				return less(users[a], users[b])
			}
			return less(users[b], users[a])
		})
	}
}
