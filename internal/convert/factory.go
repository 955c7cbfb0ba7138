package convert

import (
	"fmt"

	"moin2git/internal/config"
	"moin2git/internal/wiki"
)

// NewRendererFromConfig creates a Renderer. Type "none" yields nil.
func NewRendererFromConfig(cfg config.RendererConfig) (Renderer, error) {
	switch cfg.Type {
	case "moin", "":
		return NewMoinRenderer(cfg.Interpreter, cfg.Command, cfg.Format)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown renderer type: %q", cfg.Type)
	}
}

// NewConverterFromConfig creates a DocumentConverter. Type "none" yields nil.
func NewConverterFromConfig(cfg config.ConverterConfig) (DocumentConverter, error) {
	switch cfg.Type {
	case "pandoc", "":
		return NewPandocConverter(cfg.Command), nil
	case "goldmark":
		return NewGoldmarkConverter(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown converter type: %q", cfg.Type)
	}
}

// NewGatewayFromConfig wires a Gateway from the renderer and converter sections.
func NewGatewayFromConfig(cfg *config.Config, logger wiki.Logger) (*Gateway, error) {
	renderer, err := NewRendererFromConfig(cfg.Renderer)
	if err != nil {
		return nil, err
	}
	converter, err := NewConverterFromConfig(cfg.Converter)
	if err != nil {
		return nil, err
	}
	return NewGateway(renderer, converter, logger), nil
}
