package handler

import (
	"github.com/socialgraph/social-api/internal/pkg/validation"
)

// echoValidator adapts validation.Validator so Echo can call c.Validate(req).
// Failures come back as *domain.ValidationError.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validation.Validator) *echoValidator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
