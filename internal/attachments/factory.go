package attachments

import (
	"context"
	"fmt"
	"path"
	"strings"

	"moin2git/internal/config"
	"moin2git/internal/wiki"
)

// NewStoreFromConfig creates the destination for an attachment copy.
//
// A dest of the form s3://bucket/prefix always selects S3. Otherwise the
// config type decides: "filesystem" writes below dest, "s3" uploads to the
// configured bucket with dest appended to the configured prefix. When
// encrypt_recipients_path is set the store is wrapped in an EncryptedStore.
func NewStoreFromConfig(ctx context.Context, cfg config.AttachmentsConfig, dest string) (wiki.AttachmentStore, error) {
	store, err := newBaseStore(ctx, cfg, dest)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptRecipientsPath == "" {
		return store, nil
	}
	recipients, err := LoadRecipients(cfg.EncryptRecipientsPath)
	if err != nil {
		return nil, err
	}
	return NewEncryptedStore(store, recipients...)
}

func newBaseStore(ctx context.Context, cfg config.AttachmentsConfig, dest string) (wiki.AttachmentStore, error) {
	s3opts := S3Options{
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}

	if strings.HasPrefix(dest, "s3://") {
		bucket, prefix, err := ParseS3URL(dest)
		if err != nil {
			return nil, err
		}
		s3opts.Bucket, s3opts.Prefix = bucket, prefix
		return NewS3Store(ctx, s3opts)
	}

	switch cfg.Type {
	case "filesystem", "":
		return NewFileSystemStore(dest)
	case "s3":
		if dest != "" {
			s3opts.Prefix = path.Join(s3opts.Prefix, dest)
		}
		return NewS3Store(ctx, s3opts)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown attachments type: %s", cfg.Type)
	}
}
