package ddl

import (
	"fmt"
	"regexp"

	"github.com/meridiandb/meridian/internal/errors"
)

// MaxIdentifierLength bounds table and column names.
const MaxIdentifierLength = 64

// identifierRegex matches valid identifiers: a leading letter followed by
// letters, digits, or underscores.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// CheckColumnName validates a column identifier.
func CheckColumnName(name string) error {
	return checkIdentifier("column", name)
}

// CheckTableName validates a table identifier.
func CheckTableName(name string) error {
	return checkIdentifier("table", name)
}

func checkIdentifier(kind, name string) error {
	if len(name) == 0 || len(name) > MaxIdentifierLength {
		return errors.NewNameError(fmt.Sprintf(
			"Invalid %s name (must be 1-%d characters): %q", kind, MaxIdentifierLength, name))
	}
	if !identifierRegex.MatchString(name) {
		return errors.NewNameError(fmt.Sprintf(
			"Invalid %s name (must start with a letter, followed by letters, digits or underscores): %q",
			kind, name))
	}
	return nil
}
