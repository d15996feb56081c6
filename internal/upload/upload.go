package upload

import (
	"errors"
	"fmt"
)

// MaxImageBytes is the largest accepted room photo (10 MiB).
const MaxImageBytes = 10 * 1024 * 1024

// ErrInvalidMediaType indicates an unsupported image content type.
var ErrInvalidMediaType = errors.New("invalid media type")

// ErrPayloadTooLarge indicates the image exceeds MaxImageBytes.
var ErrPayloadTooLarge = errors.New("payload too large")

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Validate checks the declared content type and size of an inbound image.
// The type is checked first so streaming callers can reject before reading
// the body.
func Validate(contentType string, size int64) error {
	if _, ok := allowedTypes[contentType]; !ok {
		return fmt.Errorf("%w: %q (accepted: JPEG, PNG, WebP)", ErrInvalidMediaType, contentType)
	}
	if size > MaxImageBytes {
		return fmt.Errorf("%w: maximum size is 10 MB", ErrPayloadTooLarge)
	}
	return nil
}
