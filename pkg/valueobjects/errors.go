// Package valueobjects implements the Git domain's validated value types:
// identifiers, hashes, names, paths and URLs. Every constructor normalizes
// its input and rejects anything that fails the domain's validation rules.
package valueobjects

import "errors"

// ErrValidation is the sentinel all value-object construction failures wrap.
// Callers can test with errors.Is(err, ErrValidation) without caring which
// specific field failed.
var ErrValidation = errors.New("validation error")
