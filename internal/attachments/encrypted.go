package attachments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	"moin2git/internal/wiki"
)

// EncryptedSuffix is appended to the key of every encrypted attachment.
const EncryptedSuffix = ".age"

// EncryptedStore age-encrypts attachments before handing them to another store.
type EncryptedStore struct {
	inner      wiki.AttachmentStore
	recipients []age.Recipient
}

var (
	_ wiki.AttachmentStore = (*EncryptedStore)(nil)
	_ wiki.DirStore        = (*EncryptedStore)(nil)
)

// NewEncryptedStore wraps inner so that every attachment is encrypted to recipients.
func NewEncryptedStore(inner wiki.AttachmentStore, recipients ...age.Recipient) (*EncryptedStore, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("encrypted store requires at least one recipient")
	}
	return &EncryptedStore{inner: inner, recipients: recipients}, nil
}

// LoadRecipients parses an age recipients file, one recipient per line.
func LoadRecipients(path string) ([]age.Recipient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipients file: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing recipients file %s: %w", path, err)
	}

	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", path)
	}
	return recipients, nil
}

// MakeDir passes through to the inner store when it has directories.
func (s *EncryptedStore) MakeDir(ctx context.Context, dir string) error {
	if d, ok := s.inner.(wiki.DirStore); ok {
		return d.MakeDir(ctx, dir)
	}
	return nil
}

// Put encrypts the content read from r and stores it under key+EncryptedSuffix.
// The ciphertext is streamed, so the inner store sees an unknown size.
func (s *EncryptedStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	pr, pw := io.Pipe()
	go func() {
		w, err := age.Encrypt(pw, s.recipients...)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("creating encrypted writer: %w", err))
			return
		}
		written, err := io.Copy(w, r)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("encrypting data: %w", err))
			return
		}
		if size >= 0 && written != size {
			pw.CloseWithError(fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written))
			return
		}
		pw.CloseWithError(w.Close())
	}()

	err := s.inner.Put(ctx, key+EncryptedSuffix, pr, -1)
	// Unblocks the encrypting goroutine if the inner store stopped reading early.
	pr.Close()
	return err
}
