// Package ids generates the short opaque identifiers assigned to folders
// and files. Identifiers carry no embedded meaning.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Length of every generated identifier.
const Length = 17

// New returns a fresh identifier: a random UUID with separators stripped,
// truncated to Length hex characters. Safe for concurrent use.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:Length]
}
