package filex

import (
	"fmt"
	"strings"

	"github.com/citizendesk/grievance-server/internal/common"
)

// MaxUploadSize caps the synchronous (server-side) upload path. The presigned
// path never sees the bytes, so the cap does not apply there.
const MaxUploadSize = 10 << 20 // 10 MiB

// allowedContentTypes is the closed allow-list mapping a lowercase file
// extension to the exact MIME type a client must declare for it. Anything
// not listed here is rejected.
var allowedContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// AllowedExtensions returns the extensions accepted by the policy, for use
// in error messages and configuration listings.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedContentTypes))
	for ext := range allowedContentTypes {
		exts = append(exts, ext)
	}
	return exts
}

// Extension returns the lowercase extension of fileName without the dot,
// or "" when the name has none.
func Extension(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 || i == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[i+1:])
}

// ValidateContentType checks fileName's extension against the allow-list and
// requires declaredType to exactly match the mapped MIME type. Returns an
// error wrapping common.ErrInvalidFileType otherwise.
func ValidateContentType(fileName, declaredType string) error {
	ext := Extension(fileName)
	want, ok := allowedContentTypes[ext]
	if !ok {
		return fmt.Errorf("%w: extension %q", common.ErrInvalidFileType, ext)
	}
	if declaredType != want {
		return fmt.Errorf("%w: content type %q does not match %q for .%s", common.ErrInvalidFileType, declaredType, want, ext)
	}
	return nil
}

// ValidatePayload applies the full synchronous-upload policy: non-empty
// payload, size cap, and the extension/MIME check.
func ValidatePayload(fileName, declaredType string, size int64) error {
	if size == 0 {
		return common.ErrEmptyPayload
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%w: %d bytes (max %d)", common.ErrPayloadTooLarge, size, MaxUploadSize)
	}
	return ValidateContentType(fileName, declaredType)
}
