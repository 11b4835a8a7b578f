package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// Upload limits for the analyze endpoint.
const (
	MaxImageCount = 3
	MaxImageBytes = 8 << 20 // 8MB per file
	MaxMessageLen = 4000
)

// ValidationError marks client input problems so handlers can answer
// 400 instead of 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// allowedImageTypes lists accepted MIME types by sniffed content type.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidateImageCount checks the number of uploaded files.
func ValidateImageCount(n int) error {
	if n == 0 {
		return validationErrorf("at least one image is required")
	}
	if n > MaxImageCount {
		return validationErrorf("too many images: %d (max %d)", n, MaxImageCount)
	}
	return nil
}

// ValidateImage checks the size of one upload and sniffs its content
// type. Returns the detected MIME type.
func ValidateImage(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", validationErrorf("image %q is empty", filename)
	}
	if len(data) > MaxImageBytes {
		return "", validationErrorf("image %q exceeds the %dMB limit", filename, MaxImageBytes>>20)
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return "", validationErrorf("unsupported image type %s for %q (allowed: image/jpeg, image/png)", contentType, filename)
	}
	return contentType, nil
}

// ValidateSessionID validates session ID format
func ValidateSessionID(id string) error {
	if id == "" {
		return validationErrorf("sessionId is required")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return validationErrorf("invalid session ID format")
	}
	return nil
}

// ValidateMessage checks a chat message for presence and length.
func ValidateMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return validationErrorf("message is required")
	}
	if len(msg) > MaxMessageLen {
		return validationErrorf("message too long (max %d characters)", MaxMessageLen)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
