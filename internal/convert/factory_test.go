package convert

import (
	"testing"

	"moin2git/internal/config"
)

func TestNewGatewayFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		renderer  config.RendererConfig
		converter config.ConverterConfig
		wantErr   bool
	}{
		{name: "defaults", renderer: config.RendererConfig{}, converter: config.ConverterConfig{}},
		{name: "moin with goldmark", renderer: config.RendererConfig{Type: "moin", Format: "markdown"}, converter: config.ConverterConfig{Type: "goldmark"}},
		{name: "disabled", renderer: config.RendererConfig{Type: "none"}, converter: config.ConverterConfig{Type: "none"}},
		{name: "unknown renderer", renderer: config.RendererConfig{Type: "docutils"}, wantErr: true},
		{name: "unknown converter", converter: config.ConverterConfig{Type: "word"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig(t.TempDir())
			cfg.Renderer = tt.renderer
			cfg.Converter = tt.converter

			g, err := NewGatewayFromConfig(cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewGatewayFromConfig() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGatewayFromConfig() unexpected error: %v", err)
			}
			if g == nil {
				t.Fatal("NewGatewayFromConfig() returned nil gateway")
			}
		})
	}
}

func TestNewRendererFromConfig_None(t *testing.T) {
	r, err := NewRendererFromConfig(config.RendererConfig{Type: "none"})
	if err != nil {
		t.Fatalf("NewRendererFromConfig() error = %v", err)
	}
	if r != nil {
		t.Errorf("NewRendererFromConfig(none) = %v, want nil", r)
	}
}
