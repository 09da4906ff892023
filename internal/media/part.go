// Package media stores uploaded binary attachments and hands back their
// storage locators. Writes always finish before the owning record is built;
// the record and the files are not written atomically, so callers discard
// locators whose record never made it to the database.
package media

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

// Part is one binary attachment of a submission.
type Part struct {
	Filename    string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// NewPart describes an attachment whose content is produced by open.
func NewPart(filename, contentType string, size int64, open func() (io.ReadCloser, error)) Part {
	return Part{
		Filename:    filename,
		ContentType: normalizeContentType(contentType),
		Size:        size,
		open:        open,
	}
}

// BytesPart describes an in-memory attachment.
func BytesPart(filename, contentType string, data []byte) Part {
	return NewPart(filename, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// PartsFromForm returns the files submitted under field, in submission order.
func PartsFromForm(form *multipart.Form, field string) []Part {
	if form == nil {
		return nil
	}
	headers := form.File[field]
	parts := make([]Part, 0, len(headers))
	for _, fh := range headers {
		parts = append(parts, NewPart(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, func() (io.ReadCloser, error) {
			return fh.Open()
		}))
	}
	return parts
}

// Open returns the attachment content.
func (p Part) Open() (io.ReadCloser, error) {
	if p.open == nil {
		return nil, ErrEmptyPart
	}
	return p.open()
}

// normalizeContentType strips parameters and lower-cases the media type.
func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return mt
}
