package user

import (
	"context"
	"strings"
	"time"

	"github.com/codebox/didyoudoit/core"
)

// Roles, ordered by increasing privilege. TechLead and ProductManager are peers.
const (
	RoleDeveloper      = "DEVELOPER"
	RoleTechLead       = "TECH_LEAD"
	RoleProductManager = "PRODUCT_MANAGER"
	RoleBoardAdmin     = "BOARD_ADMIN"
)

// Statuses. Alumni and archived users see no content regardless of role.
const (
	StatusActive   = "ACTIVE"
	StatusAlumni   = "ALUMNI"
	StatusArchived = "ARCHIVED"
)

var (
	AllRoles    = []string{RoleDeveloper, RoleTechLead, RoleProductManager, RoleBoardAdmin}
	AllStatuses = []string{StatusActive, StatusAlumni, StatusArchived}

	rolePriorities = map[string]int{
		RoleBoardAdmin:     30,
		RoleTechLead:       20,
		RoleProductManager: 20,
		RoleDeveloper:      10,
	}

	Roles = []Role{
		{Name: "Developer", Value: RoleDeveloper},
		{Name: "Tech Lead", Value: RoleTechLead},
		{Name: "Product Manager", Value: RoleProductManager},
		{Name: "Board Admin", Value: RoleBoardAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	IsTrainee bool   `json:"is_trainee"`

	// GroupIDs holds the user's group memberships when loaded with them.
	GroupIDs []string `json:"group_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (u *User) IsBoardAdmin() bool {
	return u.Role == RoleBoardAdmin
}

// IsLead reports whether the user sits in the middle tier (TechLead or ProductManager).
func (u *User) IsLead() bool {
	return u.Role == RoleTechLead || u.Role == RoleProductManager
}

func (u *User) IsDeveloper() bool {
	return u.Role == RoleDeveloper
}

// IsActive reports whether the user may see any content at all.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// DisplayName falls back to the email local part when no full name is set.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.SplitN(u.Email, "@", 2)[0]
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email     string   `json:"email" validate:"required,email,eduemail"`
	FullName  string   `json:"full_name" validate:"required"`
	Role      string   `json:"role" validate:"omitempty,userrole"`
	Status    string   `json:"status" validate:"omitempty,userstatus"`
	IsTrainee bool     `json:"is_trainee"`
	GroupIDs  []string `json:"group_ids"`
}

func (nu *NewUser) Validate(ctx context.Context, svc Validator) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// A nil GroupIDs leaves memberships untouched; an empty slice removes them all.
type UpdateUser struct {
	Email     string   `json:"email" validate:"omitempty,email,eduemail"`
	FullName  string   `json:"full_name"`
	Role      string   `json:"role" validate:"omitempty,userrole"`
	Status    string   `json:"status" validate:"omitempty,userstatus"`
	IsTrainee *bool    `json:"is_trainee"`
	GroupIDs  []string `json:"group_ids"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc Validator) error {
	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	name := core.CleanString(uu.FullName)
	if name != "" {
		uu.FullName = name
	} else {
		uu.FullName = origUsr.FullName
	}

	if uu.Role == "" {
		uu.Role = origUsr.Role
	}
	if uu.Status == "" {
		uu.Status = origUsr.Status
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

// Validator is the slice of Service the model validators need.
type Validator interface {
	CheckUniqueness(ctx context.Context, email string, excluded ...User) error
}
