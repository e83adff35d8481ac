package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh unique identifier in compact hex form, used for
// JSON-RPC request ids, task ids and message ids.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
