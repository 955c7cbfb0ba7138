package attachments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"

	"moin2git/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("filesystem by default", func(t *testing.T) {
		dest := t.TempDir()
		store, err := NewStoreFromConfig(ctx, config.AttachmentsConfig{}, dest)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		fs, ok := store.(*FileSystemStore)
		if !ok {
			t.Fatalf("store type = %T, want *FileSystemStore", store)
		}
		if fs.Root() != dest {
			t.Errorf("Root() = %q, want %q", fs.Root(), dest)
		}
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewStoreFromConfig(ctx, config.AttachmentsConfig{Type: "memory"}, "")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", store)
		}
	})

	t.Run("s3 url destination", func(t *testing.T) {
		cfg := config.AttachmentsConfig{S3Region: "us-east-1", S3AccessKeyID: "k", S3SecretAccessKey: "s"}
		store, err := NewStoreFromConfig(ctx, cfg, "s3://bucket/wiki")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		s3store, ok := store.(*S3Store)
		if !ok {
			t.Fatalf("store type = %T, want *S3Store", store)
		}
		if s3store.bucket != "bucket" || s3store.objectKey("P/f") != "wiki/P/f" {
			t.Errorf("bucket = %q, key = %q", s3store.bucket, s3store.objectKey("P/f"))
		}
	})

	t.Run("encrypted wrapper", func(t *testing.T) {
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			t.Fatal(err)
		}
		recipientsPath := filepath.Join(t.TempDir(), "recipients.txt")
		if err := os.WriteFile(recipientsPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg := config.AttachmentsConfig{Type: "memory", EncryptRecipientsPath: recipientsPath}
		store, err := NewStoreFromConfig(ctx, cfg, "")
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*EncryptedStore); !ok {
			t.Errorf("store type = %T, want *EncryptedStore", store)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewStoreFromConfig(ctx, config.AttachmentsConfig{Type: "ftp"}, t.TempDir()); err == nil {
			t.Error("NewStoreFromConfig() expected error for unknown type")
		}
	})
}
