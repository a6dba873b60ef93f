package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/codebox/didyoudoit/core"
)

var orderingParam = "ordering"

// Ordering binds the "ordering" query param ("-created_at,email" style).
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Shared request/response bindings.

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		User  interface{} `json:"user,omitempty"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	DestroyMultipleRequest struct {
		IDs []string `json:"ids" query:"id"`
	}

	ToggleCompletionRequest struct {
		AssignmentID string `json:"assignment_id" validate:"required"`
	}

	ToggleCompletionResponse struct {
		Completed bool `json:"completed"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	lr.FullName = core.CleanString(lr.FullName)
	return core.Validate.Struct(lr)
}

func (tr *ToggleCompletionRequest) Validate() error {
	tr.AssignmentID = core.CleanString(tr.AssignmentID)
	return core.Validate.Struct(tr)
}
