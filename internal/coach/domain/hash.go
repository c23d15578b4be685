package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// ContentHash computes the dedup key for a suggestion. Two generation runs
// for the same day and scope produce identical hashes, so the storage
// layer's (date_key, content_hash, source) unique constraint makes repeated
// runs no-ops. Nil branch/owner hash as empty segments, keeping broadcast
// rows distinct from addressed ones.
func ContentHash(dateKey string, role Role, branchID, ownerID *uuid.UUID, title, source string) string {
	segments := []string{
		dateKey,
		string(role),
		uuidSegment(branchID),
		uuidSegment(ownerID),
		title,
		source,
	}

	sum := sha256.Sum256([]byte(strings.Join(segments, "|")))
	return hex.EncodeToString(sum[:])
}

func uuidSegment(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
