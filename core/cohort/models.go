package cohort

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core"
)

// Cohort is a time-boxed training program owning zero or more groups.
// Archiving it (IsActive=false) archives every group it owns.
type Cohort struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewCohort contains information needed to create a new Cohort.
type NewCohort struct {
	Name      string    `json:"name" validate:"required"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
	IsActive  *bool     `json:"is_active"`
}

func (nc *NewCohort) Validate(ctx context.Context, svc Validator) error {
	nc.Name = core.CleanString(nc.Name)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nc.Name)
}

// UpdateCohort defines what information may be provided to modify an existing Cohort.
type UpdateCohort struct {
	Name      string    `json:"name"`
	StartDate null.Time `json:"start_date"`
	EndDate   null.Time `json:"end_date"`
	IsActive  *bool     `json:"is_active"`
}

func (uc *UpdateCohort) Validate(ctx context.Context, orig Cohort, svc Validator) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if !uc.StartDate.Valid {
		uc.StartDate = orig.StartDate
	}
	if !uc.EndDate.Valid {
		uc.EndDate = orig.EndDate
	}

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uc.Name, orig)
}

// Validator is the slice of Service the model validators need.
type Validator interface {
	CheckUniqueness(ctx context.Context, name string, excluded ...Cohort) error
}
