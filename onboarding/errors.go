package onboarding

import "fmt"

// ValidationError carries per-field structural failures detected before any
// persistence attempt.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// MismatchError pauses a contact submit when the entered dial code disagrees
// with the declared country and the user has not yet confirmed it is
// intentional. It is a confirmation workflow, not a validation failure.
type MismatchError struct {
	Expected string
	Entered  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("country code %s does not match expected %s", e.Entered, e.Expected)
}
