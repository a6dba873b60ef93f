package group

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core"
)

// Statuses. Cohort archiving cascades these; see cohort.Service.
const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

// Group is an audience assignments can target. A group owned by a cohort
// (CohortID set) is a bootcamp group; its assignments are homework.
type Group struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CohortID    null.String `json:"cohort_id"`
	Status      string      `json:"status"`

	// MemberIDs holds the member user ids when loaded with them.
	MemberIDs   []string `json:"member_ids,omitempty"`
	MemberCount int      `json:"member_count"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (g *Group) IsCohortLinked() bool {
	return g.CohortID.Valid
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	CohortID    null.String `json:"cohort_id"`
	MemberIDs   []string    `json:"member_ids"`
}

func (ng *NewGroup) Validate(ctx context.Context, svc Validator) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	return svc.CheckCohort(ctx, ng.CohortID)
}

// UpdateGroup defines what information may be provided to modify an existing
// Group. A nil MemberIDs leaves the membership untouched; an empty slice
// removes every member.
type UpdateGroup struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	CohortID    null.String `json:"cohort_id"`
	Status      string      `json:"status" validate:"omitempty,groupstatus"`
	MemberIDs   []string    `json:"member_ids"`
}

func (ug *UpdateGroup) Validate(ctx context.Context, orig Group, svc Validator) error {
	name := core.CleanString(ug.Name)
	if name != "" {
		ug.Name = name
	} else {
		ug.Name = orig.Name
	}
	if ug.Description == nil {
		ug.Description = &orig.Description
	}
	if ug.Status == "" {
		ug.Status = orig.Status
	}
	if !ug.CohortID.Valid {
		ug.CohortID = orig.CohortID
	}

	if err := core.Validate.Struct(ug); err != nil {
		return err
	}
	return svc.CheckCohort(ctx, ug.CohortID)
}

// Validator is the slice of Service the model validators need.
type Validator interface {
	// CheckCohort verifies that a non-null cohort id references an existing cohort.
	CheckCohort(ctx context.Context, cohortID null.String) error
}
