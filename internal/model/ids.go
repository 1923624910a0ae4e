package model

import (
	"strings"

	"github.com/google/uuid"
)

// TemporaryIDPrefix marks identifiers minted client-side for entities the
// form store has not acknowledged yet.
const TemporaryIDPrefix = "tmp_"

// NewTemporaryID returns a globally unique temporary identifier.
func NewTemporaryID() string {
	return TemporaryIDPrefix + uuid.NewString()
}

// IsTemporaryID reports whether id was minted by NewTemporaryID.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TemporaryIDPrefix)
}
