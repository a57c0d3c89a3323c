package core

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"recipeclub/internal/types"
)

// Validator wraps go-playground/validator and translates tag failures into
// the platform's AppError shape so handlers return consistent 400 responses.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ValidateStruct validates a request DTO against its struct tags. On failure
// it returns a *types.AppError whose code reflects the first violation and
// whose details map every failed field to the violated rule.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the DTO itself is not validatable.
		v.logger.Error("validator received non-struct input", "error", err)
		return types.NewAppError(types.ErrCodeInternalUnexpected, "invalid request", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}

	first := verrs[0]
	return types.NewAppErrorWithDetails(
		codeForViolation(first),
		messageForViolation(first),
		nil,
		details,
	)
}

// codeForViolation maps a single tag failure to an ErrorCode.
func codeForViolation(fe validator.FieldError) types.ErrorCode {
	switch fe.Tag() {
	case "required":
		return types.ErrCodeValidationMissingField
	case "email":
		return types.ErrCodeValidationInvalidEmail
	case "min":
		if strings.Contains(strings.ToLower(fe.Field()), "password") {
			return types.ErrCodeValidationPasswordTooShort
		}
		return types.ErrCodeValidationInvalidField
	default:
		return types.ErrCodeValidationInvalidField
	}
}

// messageForViolation builds the client-facing message for a tag failure.
func messageForViolation(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
