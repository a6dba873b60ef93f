package group

import (
	"github.com/go-playground/validator/v10"

	"github.com/codebox/didyoudoit/core"
)

var (
	groupStatusTag  = "groupstatus"
	groupStatusText = "invalid status"
)

func init() {
	_ = core.Validate.RegisterValidation(groupStatusTag, groupStatusValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, groupStatusTag, groupStatusText)
}

func groupStatusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return val == StatusActive || val == StatusArchived
}
