package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// NewSessionID returns a short random identifier used to keep temp file
// names of concurrent sorts apart.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
