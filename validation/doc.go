// Package validation checks configuration and command-line input.
//
// Struct tag validation (go-playground/validator) covers the config file
// sections; the programmatic Validator covers values that only make sense
// together, such as a backend and the credentials it needs.
//
//	type WhisperConfig struct {
//	    URL string `validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
//	v := validation.New()
//	v.Required("input", input).OneOf("backend", backend, names)
//	err := v.Validate()
package validation
