package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags over a request payload and converts
// failures to a single validation DomainError with per-field detail.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return commonerrors.NewDomainError(
			CodeValidationFailed,
			commonerrors.CategoryValidation,
			http.StatusBadRequest,
			"validation failed",
		).WithCause(err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldErrorMessage(fe)
	}

	return commonerrors.NewValidationError(CodeValidationFailed, "validation failed").WithDetails(details)
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "value is too short (min " + fe.Param() + ")"
	case "max":
		return "value is too long (max " + fe.Param() + ")"
	default:
		return "failed validation: " + fe.Tag()
	}
}
