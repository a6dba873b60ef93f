package assignment

import "github.com/codebox/didyoudoit/core/user"

// IsVisible decides whether usr may see a in their feed. memberGroupIDs is the
// set of group ids usr belongs to (see group.Service.ResolveGroupIDs).
//
// The rules, in order:
//  1. Alumni and archived users see nothing, whatever their role.
//  2. Board admins see everything.
//  3. An assignment is a candidate when it targets no groups at all (global,
//     visible to everyone) or at least one of the user's groups.
//  4. Candidates whose target groups are all cohort-linked are cohort homework;
//     they are hidden from non-trainees. A single non-cohort group in the mix
//     keeps the assignment hidden too, but a global assignment is never
//     suppressed by this rule.
func IsVisible(usr user.User, a Assignment, memberGroupIDs []string) bool {
	if !usr.IsActive() {
		return false
	}
	if usr.IsBoardAdmin() {
		return true
	}

	if !a.IsGlobal() {
		if !targetsAnyOf(a, memberGroupIDs) {
			return false
		}
		if !usr.IsTrainee && hasCohortLinkedTarget(a) {
			return false
		}
	}
	return true
}

// FilterVisible reduces assignments to the subset visible to usr.
func FilterVisible(usr user.User, assignments []Assignment, memberGroupIDs []string) []Assignment {
	visible := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if IsVisible(usr, a, memberGroupIDs) {
			visible = append(visible, a)
		}
	}
	return visible
}

// targetsAnyOf reports whether a targets at least one of the given groups.
func targetsAnyOf(a Assignment, groupIDs []string) bool {
	for _, tg := range a.Groups {
		for _, id := range groupIDs {
			if tg.ID == id {
				return true
			}
		}
	}
	return false
}

// hasCohortLinkedTarget reports whether any target group belongs to a cohort.
func hasCohortLinkedTarget(a Assignment) bool {
	for _, tg := range a.Groups {
		if tg.CohortID.Valid {
			return true
		}
	}
	return false
}
