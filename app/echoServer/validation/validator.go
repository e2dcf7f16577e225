package validation

import "github.com/go-playground/validator/v10"

// EchoValidator plugs struct-tag validation into echo's Validator hook.
// Controllers that need field-level detail call the same underlying
// validator directly.
type EchoValidator struct {
	check *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{check: validator.New()}
}

func (ev *EchoValidator) Validate(i any) error {
	return ev.check.Struct(i)
}
