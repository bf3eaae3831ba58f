package middleware

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Input validation for the analyze endpoint.

// MaxImageBytes caps the decoded image payload. Vision endpoints reject
// larger inputs anyway; failing early keeps the raw base64 out of memory
// twice.
const MaxImageBytes = 8 << 20

var allowedMediaTypes = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
}

// ValidateMediaType checks the declared image media type ("png" or
// "image/png" style).
func ValidateMediaType(mt string) error {
	norm := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mt)), "image/")
	if norm == "" {
		return fmt.Errorf("media type is required")
	}
	if !allowedMediaTypes[norm] {
		return fmt.Errorf("unsupported media type: %s (allowed: png, jpeg, webp, gif)", mt)
	}
	return nil
}

// DecodeImage validates and decodes the base64 image payload.
func DecodeImage(b64 string) ([]byte, error) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return nil, fmt.Errorf("image payload cannot be empty")
	}
	// Tolerate clients sending a full data URI.
	if strings.HasPrefix(b64, "data:") {
		if i := strings.IndexByte(b64, ','); i >= 0 {
			b64 = b64[i+1:]
		}
	}
	if len(b64) > MaxImageBytes*4/3+4 {
		return nil, fmt.Errorf("image payload too large (max %d bytes decoded)", MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("image payload is not valid base64: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image payload cannot be empty")
	}
	return data, nil
}

// SanitizeString removes null bytes and control characters from
// client-supplied free text (image URIs, labels).
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
