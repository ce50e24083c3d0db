package mapping

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedMapping is the run-fatal loader error.
var ErrMalformedMapping = errors.New("malformed mapping")

// maxIssuesInMessage bounds how many issues Error() spells out.
const maxIssuesInMessage = 5

// MappingError lists every problem found in a mapping source.
type MappingError struct {
	Source string
	Issues []string
}

func (e *MappingError) Error() string {
	shown := e.Issues
	more := 0
	if len(shown) > maxIssuesInMessage {
		more = len(shown) - maxIssuesInMessage
		shown = shown[:maxIssuesInMessage]
	}
	msg := fmt.Sprintf("malformed mapping %s: %s", e.Source, strings.Join(shown, "; "))
	if more > 0 {
		msg += fmt.Sprintf(" (and %d more)", more)
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return ErrMalformedMapping
}

// newMappingError wraps the issues with a hint naming the expected layout.
func newMappingError(source string, issues ...string) error {
	return errors.WithHint(
		&MappingError{Source: source, Issues: issues},
		"a mapping needs the columns category, field_name, sheet_name, cell_address (expected_value is optional) and unique field names",
	)
}
