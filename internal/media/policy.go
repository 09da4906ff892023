package media

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrMissingAttachment  = errors.New("attachment is required")
	ErrTooManyAttachments = errors.New("only one attachment is allowed")
	ErrUnsupportedType    = errors.New("unsupported attachment type")
	ErrTooLarge           = errors.New("attachment too large")
	ErrEmptyPart          = errors.New("attachment has no content")
)

// Policy constrains the attachments a flow accepts.
type Policy struct {
	// AllowedTypes lists accepted declared content types. Empty means any.
	AllowedTypes []string
	// MaxBytes caps a single attachment. Zero means no cap.
	MaxBytes int64
}

// ProfileImagePolicy accepts JPEG and PNG profile images.
func ProfileImagePolicy(maxBytes int64) Policy {
	return Policy{
		AllowedTypes: []string{"image/jpeg", "image/png"},
		MaxBytes:     maxBytes,
	}
}

// ListingPhotoPolicy places no restriction on the declared type of listing photos.
func ListingPhotoPolicy(maxBytes int64) Policy {
	return Policy{MaxBytes: maxBytes}
}

// Check validates a single part against the policy.
func (p Policy) Check(part Part) error {
	if len(p.AllowedTypes) > 0 && !slices.Contains(p.AllowedTypes, part.ContentType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, part.ContentType)
	}
	if p.MaxBytes > 0 && part.Size > p.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, part.Filename, part.Size, p.MaxBytes)
	}
	return nil
}

// IsValidationError reports whether err rejects the submission itself rather
// than signalling a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingAttachment) ||
		errors.Is(err, ErrTooManyAttachments) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrEmptyPart)
}
