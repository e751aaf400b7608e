package schema

import (
	"fmt"

	"github.com/aretw0/datadesk/pkg/domain"
)

// UnknownFieldError is returned when a FieldID is not declared in the registry.
// Sentinels such as AdmAreaAndOwner and None never resolve.
type UnknownFieldError struct {
	Field domain.FieldID
}

func (e *UnknownFieldError) Error() string {
	if e.Field == "" {
		return "no field selected"
	}
	return fmt.Sprintf("unknown field %q", string(e.Field))
}

// TypeMismatchError is returned when user input cannot be coerced to the kind
// of the field it targets.
type TypeMismatchError struct {
	Field    domain.FieldID
	Expected Kind
	Raw      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: %q is not a valid %s", string(e.Field), e.Raw, e.Expected)
}
