package user

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codebox/didyoudoit/core"
)

var (
	// emailDomain is the institutional suffix sign-in emails must carry.
	// NewService overrides it from config.
	emailDomain = ".edu"

	eduEmailTag = "eduemail"

	userRoleTag  = "userrole"
	userRoleText = "invalid role"

	userStatusTag  = "userstatus"
	userStatusText = "invalid status"
)

func init() {
	_ = core.Validate.RegisterValidation(eduEmailTag, eduEmailValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, eduEmailTag, eduEmailText())

	_ = core.Validate.RegisterValidation(userRoleTag, userRoleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, userRoleTag, userRoleText)

	_ = core.Validate.RegisterValidation(userStatusTag, userStatusValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, userStatusTag, userStatusText)
}

func eduEmailText() string {
	return fmt.Sprintf("a valid %s email is required", emailDomain)
}

// eduEmailValidation checks that the email ends with the institutional domain suffix.
func eduEmailValidation(fl validator.FieldLevel) bool {
	return strings.HasSuffix(strings.ToLower(fl.Field().String()), emailDomain)
}

// userRoleValidation checks that the provided role is in AllRoles.
func userRoleValidation(fl validator.FieldLevel) bool {
	return IsValidRole(fl.Field().String())
}

// userStatusValidation checks that the provided status is in AllStatuses.
func userStatusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range AllStatuses {
		if val == s {
			return true
		}
	}
	return false
}
