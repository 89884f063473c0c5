package document

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument marks a structural schema violation found before field
// resolution.
var ErrMalformedDocument = errors.New("malformed document")

// Malformed wraps ErrMalformedDocument with the path of the offending node.
func Malformed(path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedDocument, path, fmt.Sprintf(format, args...))
}
