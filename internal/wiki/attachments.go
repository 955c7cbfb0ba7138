package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
)

// AttachmentStore receives attachment files. Keys are slash-separated
// "<decoded page>/<file name>" paths.
type AttachmentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// DirStore is implemented by attachment stores with real directories.
// The copier creates each page's directory through it before copying, so
// pages with an empty attachments directory are mirrored too.
type DirStore interface {
	MakeDir(ctx context.Context, dir string) error
}

// AttachmentSummary counts what an attachment copy did.
type AttachmentSummary struct {
	Pages int
	Files int
}

// AttachmentCopier copies page attachments verbatim into an AttachmentStore.
type AttachmentCopier struct {
	source Source
	store  AttachmentStore
	logger Logger
}

// NewAttachmentCopier creates an AttachmentCopier.
func NewAttachmentCopier(source Source, store AttachmentStore, logger Logger) *AttachmentCopier {
	return &AttachmentCopier{source: source, store: store, logger: logger}
}

// CopyAll copies the attachments of every page that has an attachments directory.
func (c *AttachmentCopier) CopyAll(ctx context.Context) (*AttachmentSummary, error) {
	pages, err := c.source.ListPages()
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	sort.Strings(pages)

	summary := &AttachmentSummary{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		names, err := c.source.ListAttachments(page)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return summary, fmt.Errorf("listing attachments of %s: %w", page, err)
		}

		identity := NewPageIdentity(page)
		c.logger.Info("copying attachments", "page", identity.Decoded, "count", len(names))
		if d, ok := c.store.(DirStore); ok {
			if err := d.MakeDir(ctx, identity.Decoded); err != nil {
				return summary, fmt.Errorf("creating directory for %s: %w", identity.Decoded, err)
			}
		}
		for _, name := range names {
			if err := c.copyOne(ctx, page, path.Join(identity.Decoded, name), name); err != nil {
				return summary, err
			}
			summary.Files++
		}
		summary.Pages++
	}
	return summary, nil
}

func (c *AttachmentCopier) copyOne(ctx context.Context, page, key, name string) error {
	r, size, err := c.source.OpenAttachment(page, name)
	if err != nil {
		return fmt.Errorf("opening attachment %s of %s: %w", name, page, err)
	}
	defer r.Close()

	if err := c.store.Put(ctx, key, r, size); err != nil {
		return fmt.Errorf("storing attachment %s: %w", key, err)
	}
	c.logger.Debug("attachment copied", "key", key, "size", size)
	return nil
}
