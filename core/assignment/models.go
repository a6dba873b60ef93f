package assignment

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/codebox/didyoudoit/core"
)

// Content types.
const (
	TypeVideo    = "VIDEO"
	TypePDF      = "PDF"
	TypeLink     = "LINK"
	TypeDocument = "DOCUMENT"
)

// Scopes. A global assignment implicitly targets every active user.
const (
	ScopeGlobal   = "GLOBAL"
	ScopeTargeted = "TARGETED"
)

var AllTypes = []string{TypeVideo, TypePDF, TypeLink, TypeDocument}

func IsValidType(typ string) bool {
	for _, t := range AllTypes {
		if typ == t {
			return true
		}
	}
	return false
}

// TargetGroup is a group-assignment link. CohortID carries the target group's
// cohort linkage so the visibility rules can be evaluated without another lookup.
type TargetGroup struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	CohortID null.String `json:"cohort_id"`
}

type Assignment struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Type         string      `json:"type"`
	ContentURL   string      `json:"content_url"`
	ThumbnailURL null.String `json:"thumbnail_url"`
	DueDate      null.Time   `json:"due_date"`

	Groups []TargetGroup `json:"groups"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Scope makes the zero-groups-means-everyone convention explicit.
func (a *Assignment) Scope() string {
	if len(a.Groups) == 0 {
		return ScopeGlobal
	}
	return ScopeTargeted
}

func (a *Assignment) IsGlobal() bool {
	return len(a.Groups) == 0
}

func (a *Assignment) GroupIDs() []string {
	ids := make([]string, len(a.Groups))
	for i, g := range a.Groups {
		ids[i] = g.ID
	}
	return ids
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title        string      `json:"title" validate:"required"`
	Description  string      `json:"description"`
	Type         string      `json:"type" validate:"required,assignmenttype"`
	ContentURL   string      `json:"content_url" validate:"required,url"`
	ThumbnailURL null.String `json:"thumbnail_url"`
	DueDate      null.Time   `json:"due_date"`
	GroupIDs     []string    `json:"group_ids"`
}

func (na *NewAssignment) Validate(ctx context.Context, svc Validator) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckGroups(ctx, na.GroupIDs)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment. A nil GroupIDs leaves the target groups untouched; an
// empty slice makes the assignment global.
type UpdateAssignment struct {
	Title        string      `json:"title"`
	Description  *string     `json:"description"`
	Type         string      `json:"type" validate:"omitempty,assignmenttype"`
	ContentURL   string      `json:"content_url" validate:"omitempty,url"`
	ThumbnailURL null.String `json:"thumbnail_url"`
	DueDate      null.Time   `json:"due_date"`
	GroupIDs     []string    `json:"group_ids"`
}

func (ua *UpdateAssignment) Validate(ctx context.Context, orig Assignment, svc Validator) error {
	title := core.CleanString(ua.Title)
	if title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if ua.Description == nil {
		ua.Description = &orig.Description
	}
	if ua.Type == "" {
		ua.Type = orig.Type
	}
	if ua.ContentURL == "" {
		ua.ContentURL = orig.ContentURL
	}
	if !ua.ThumbnailURL.Valid {
		ua.ThumbnailURL = orig.ThumbnailURL
	}
	if !ua.DueDate.Valid {
		ua.DueDate = orig.DueDate
	}

	if err := core.Validate.Struct(ua); err != nil {
		return err
	}
	if ua.GroupIDs == nil {
		return nil
	}
	return svc.CheckGroups(ctx, ua.GroupIDs)
}

// Validator is the slice of Service the model validators need.
type Validator interface {
	// CheckGroups verifies that every id references an existing group.
	CheckGroups(ctx context.Context, groupIDs []string) error
}
