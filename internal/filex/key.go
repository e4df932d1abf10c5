// Package filex contains pure helpers for attachment files: deterministic
// storage key derivation and the upload content policy. Nothing here touches
// the network or the database.
package filex

import (
	"fmt"
	"regexp"
)

// KeyNamespace is the top-level prefix of every attachment storage key.
const KeyNamespace = "grievances"

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9.-] with '_'.
// An empty name falls back to the literal "file".
func SanitizeFileName(name string) string {
	if name == "" {
		return "file"
	}
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// BuildKey derives the storage key for an attachment:
//
//	grievances/<grievanceID>/<uploadID>_<sanitizedFileName>
//
// It is deterministic and total: the same three inputs always produce the
// same key, which is what keeps retried presign requests idempotent at the
// storage-key level.
func BuildKey(grievanceID int64, uploadID, originalFileName string) string {
	return fmt.Sprintf("%s/%d/%s_%s", KeyNamespace, grievanceID, uploadID, SanitizeFileName(originalFileName))
}
