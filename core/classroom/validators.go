package classroom

import (
	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

var (
	submissionStatusTag  = "submission_status"
	submissionStatusText = "invalid submission status"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(submissionStatusTag, submissionStatusValidation)
	core.RegisterCustomTranslation(submissionStatusTag, submissionStatusText)
}

// submissionStatusValidation checks that the provided status is in AllStatuses
func submissionStatusValidation(fl validator.FieldLevel) bool {
	if status, ok := fl.Field().Interface().(string); ok {
		for _, s := range AllStatuses {
			if status == s {
				return true
			}
		}
	}
	return false
}
