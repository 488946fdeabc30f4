package validate

import "strings"

const (
	FormField = "image"

	MaxFileSize int64 = 10 * 1024 * 1024
)

// IsImageContentType reports whether the declared part type names an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
