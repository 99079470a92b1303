package catalog

import "errors"

// ErrPractitionerNotFound is returned when no practitioner matches the id.
var ErrPractitionerNotFound = errors.New("catalog: practitioner not found")
