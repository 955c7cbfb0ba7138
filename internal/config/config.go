package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for moin2git.
type Config struct {
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	Migrate     MigrateConfig     `toml:"migrate"`
	Renderer    RendererConfig    `toml:"renderer"`
	Converter   ConverterConfig   `toml:"converter"`
	Ledger      LedgerConfig      `toml:"ledger"`
	Attachments AttachmentsConfig `toml:"attachments"`
}

// MigrateConfig holds defaults for the migrate command.
type MigrateConfig struct {
	Extension     string   `toml:"extension"`
	FallbackEmail string   `toml:"fallback_email"`
	Target        string   `toml:"target,omitempty"`      // markup format to convert to; empty keeps raw bodies
	Ignore        []string `toml:"ignore,omitempty"`      // glob patterns on decoded page names
	IgnoreFile    string   `toml:"ignore_file,omitempty"` // file with one ignore pattern per line
}

// RendererConfig selects the engine that renders wiki markup to an
// intermediate format.
type RendererConfig struct {
	Type        string `toml:"type"`                  // "moin" (default) or "none"
	Interpreter string `toml:"interpreter,omitempty"` // python running the bundled helper
	Command     string `toml:"command,omitempty"`     // custom helper command line; replaces the bundled helper
	Format      string `toml:"format"`                // intermediate format, "rst" by default
	WikiDir     string `toml:"wiki_dir,omitempty"`
}

// ConverterConfig selects the document converter used when the target
// format differs from the renderer's intermediate format.
type ConverterConfig struct {
	Type    string `toml:"type"`              // "pandoc" (default), "goldmark" or "none"
	Command string `toml:"command,omitempty"` // only used for type=pandoc
}

// LedgerConfig represents configuration for the import ledger.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type LedgerConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite; empty keeps the ledger inside .git
}

// AttachmentsConfig represents configuration for the attachment destination.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type AttachmentsConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "s3" or "memory"

	// S3-specific fields (only used when Type == "s3" or the destination is an s3:// URL)
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`

	// Static credentials. When empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// EncryptRecipientsPath points to an age recipients file. When set,
	// attachments are stored encrypted.
	EncryptRecipientsPath string `toml:"encrypt_recipients_path,omitempty"`
}

// NewConfig creates a new Config with default values rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Migrate: MigrateConfig{
			Extension:     "rst",
			FallbackEmail: "an@nymous.com",
		},
		Renderer: RendererConfig{
			Type:        "moin",
			Interpreter: "python2",
			Format:      "rst",
		},
		Converter: ConverterConfig{
			Type:    "pandoc",
			Command: "pandoc",
		},
		Ledger:      LedgerConfig{Type: "sqlite"},
		Attachments: AttachmentsConfig{Type: "filesystem"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path on top of the defaults for baseDir.
// A missing file yields the defaults.
func Load(path, baseDir string) (*Config, error) {
	cfg := NewConfig(baseDir)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	// Keys present in the file override the defaults already in cfg.
	if _, err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
