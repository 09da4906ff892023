package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Recorder receives ingestion events. metrics.Collector implements it.
type Recorder interface {
	RecordUpload(bytes int64)
	RecordDiscard(failed bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordUpload(int64) {}
func (nopRecorder) RecordDiscard(bool) {}

// Ingestor validates attachments and writes them to a Store.
type Ingestor struct {
	store Store
	rec   Recorder
}

// NewIngestor creates an Ingestor. rec may be nil.
func NewIngestor(store Store, rec Recorder) *Ingestor {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Ingestor{store: store, rec: rec}
}

// Single stores exactly one attachment and returns its locator.
func (i *Ingestor) Single(ctx context.Context, parts []Part, policy Policy) (string, error) {
	switch {
	case len(parts) == 0:
		return "", ErrMissingAttachment
	case len(parts) > 1:
		return "", ErrTooManyAttachments
	}

	locators, err := i.Many(ctx, parts, policy)
	if err != nil {
		return "", err
	}
	return locators[0], nil
}

// Many stores attachments in submission order and returns their locators in
// the same order. Every part is checked before the first write. If a write
// fails, locators written so far are discarded.
func (i *Ingestor) Many(ctx context.Context, parts []Part, policy Policy) ([]string, error) {
	if len(parts) == 0 {
		return nil, ErrMissingAttachment
	}
	for _, p := range parts {
		if err := policy.Check(p); err != nil {
			return nil, err
		}
	}

	locators := make([]string, 0, len(parts))
	for _, p := range parts {
		loc, err := i.put(ctx, p)
		if err != nil {
			i.Discard(context.WithoutCancel(ctx), locators)
			return nil, err
		}
		locators = append(locators, loc)
	}
	return locators, nil
}

func (i *Ingestor) put(ctx context.Context, p Part) (string, error) {
	rc, err := p.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", p.Filename, err)
	}
	defer rc.Close()

	loc, err := i.store.Put(ctx, storageName(p.Filename), p.ContentType, rc, p.Size)
	if err != nil {
		return "", err
	}
	i.rec.RecordUpload(p.Size)
	return loc, nil
}

// Discard removes stored attachments whose owning record was never written.
// Failures are logged and returned joined; remaining locators are still tried.
func (i *Ingestor) Discard(ctx context.Context, locators []string) error {
	var errs []error
	for _, loc := range locators {
		err := i.store.Delete(ctx, loc)
		i.rec.RecordDiscard(err != nil)
		if err != nil {
			slog.Warn("orphaned attachment left in storage", "locator", loc, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// storageName generates a collision-free name keeping a sanitized extension
// of the original file name.
func storageName(original string) string {
	return uuid.NewString() + cleanExt(original)
}

func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
