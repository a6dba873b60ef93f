package assignment

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codebox/didyoudoit/core"
)

var assignmentTypeTag = "assignmenttype"

func init() {
	_ = core.Validate.RegisterValidation(assignmentTypeTag, assignmentTypeValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, assignmentTypeTag, assignmentTypeText())
}

func assignmentTypeText() string {
	return fmt.Sprintf("must be one of %s", strings.Join(AllTypes, ", "))
}

// assignmentTypeValidation checks that the provided content type is in AllTypes.
func assignmentTypeValidation(fl validator.FieldLevel) bool {
	return IsValidType(fl.Field().String())
}
