package assignment

import (
	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/user"
)

// Denial reasons, surfaced verbatim in 403 responses.
const (
	reasonDeveloperCannotManage = "developers cannot manage assignments"
	reasonInactiveUser          = "your account is no longer active"
	reasonAtLeastOneGroup       = "select at least one group; only admins can create global assignments"
	reasonUnmanagedGroups       = "assigned to groups you do not manage"
	reasonGlobalDeleteAdminOnly = "only admins can delete global assignments"
	reasonGlobalStatsAdminOnly  = "only admins can view stats for global assignments"
	reasonNoManagedTarget       = "this assignment targets no group you manage"
)

// CanCreate decides whether usr may create an assignment targeting
// targetGroupIDs. Admins may target any set, including none (global). Leads
// must pick at least one group and every target must be a group of theirs.
// A nil return means allowed; otherwise the error is a core.PermissionError
// naming the violated rule.
func CanCreate(usr user.User, targetGroupIDs, memberGroupIDs []string) error {
	if !usr.IsActive() {
		return core.NewPermissionError(reasonInactiveUser)
	}
	if usr.IsBoardAdmin() {
		return nil
	}
	if usr.IsDeveloper() {
		return core.NewPermissionError(reasonDeveloperCannotManage)
	}
	if len(targetGroupIDs) == 0 {
		return core.NewPermissionError(reasonAtLeastOneGroup)
	}
	if !subsetOf(targetGroupIDs, memberGroupIDs) {
		return core.NewPermissionError(reasonUnmanagedGroups)
	}
	return nil
}

// CanModify applies the create rule to the new target group list. A nil
// newGroupIDs means the target groups are not being reassigned; the rule is
// then applied to the assignment's current targets instead.
func CanModify(usr user.User, a Assignment, newGroupIDs, memberGroupIDs []string) error {
	if newGroupIDs == nil {
		newGroupIDs = a.GroupIDs()
	}
	return CanCreate(usr, newGroupIDs, memberGroupIDs)
}

// CanDelete decides whether usr may delete a. Non-admins may delete only
// group-targeted assignments whose every target is a group of theirs; global
// assignments are admin-only.
func CanDelete(usr user.User, a Assignment, memberGroupIDs []string) error {
	if !usr.IsActive() {
		return core.NewPermissionError(reasonInactiveUser)
	}
	if usr.IsBoardAdmin() {
		return nil
	}
	if usr.IsDeveloper() {
		return core.NewPermissionError(reasonDeveloperCannotManage)
	}
	if a.IsGlobal() {
		return core.NewPermissionError(reasonGlobalDeleteAdminOnly)
	}
	if !subsetOf(a.GroupIDs(), memberGroupIDs) {
		return core.NewPermissionError(reasonUnmanagedGroups)
	}
	return nil
}

// CanViewStats decides whether usr may view a's completion stats. Non-admins
// need to manage at least one of the target groups; global assignment stats
// are admin-only.
func CanViewStats(usr user.User, a Assignment, memberGroupIDs []string) error {
	if !usr.IsActive() {
		return core.NewPermissionError(reasonInactiveUser)
	}
	if usr.IsBoardAdmin() {
		return nil
	}
	if usr.IsDeveloper() {
		return core.NewPermissionError(reasonDeveloperCannotManage)
	}
	if a.IsGlobal() {
		return core.NewPermissionError(reasonGlobalStatsAdminOnly)
	}
	if !targetsAnyOf(a, memberGroupIDs) {
		return core.NewPermissionError(reasonNoManagedTarget)
	}
	return nil
}

// subsetOf reports whether every id in sub is present in super.
func subsetOf(sub, super []string) bool {
	for _, id := range sub {
		found := false
		for _, s := range super {
			if id == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
