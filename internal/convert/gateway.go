// Package convert turns stored wiki markup into other markup formats.
//
// A Renderer turns wiki markup into an intermediate format (reStructuredText
// by default). A DocumentConverter then carries the intermediate text to the
// requested target when the two differ.
package convert

import (
	"context"
	"fmt"

	"moin2git/internal/wiki"
)

// RenderRequest carries everything a renderer needs for one page revision.
type RenderRequest struct {
	// BaseDir is the wiki instance directory the renderer runs in.
	BaseDir  string
	PageName string
	Body     string
}

// Renderer renders wiki markup into its intermediate format.
type Renderer interface {
	// Format names the intermediate format, e.g. "rst".
	Format() string
	// Available reports whether the renderer can run at all.
	Available() error
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// verifier is implemented by renderers that can do a full trial start,
// which is too slow to repeat for every revision.
type verifier interface {
	Verify(ctx context.Context, baseDir string) error
}

// DocumentConverter converts text between two markup formats.
type DocumentConverter interface {
	Supports(from, to string) bool
	Available() error
	Convert(ctx context.Context, from, to, text string) (string, error)
}

// Gateway implements wiki.Converter on top of a Renderer and an optional
// DocumentConverter.
type Gateway struct {
	renderer  Renderer
	converter DocumentConverter
	logger    wiki.Logger
}

var _ wiki.Converter = (*Gateway)(nil)

// NewGateway creates a Gateway. Either collaborator may be nil.
func NewGateway(renderer Renderer, converter DocumentConverter, logger wiki.Logger) *Gateway {
	if logger == nil {
		logger = wiki.NewNopLogger()
	}
	return &Gateway{renderer: renderer, converter: converter, logger: logger}
}

// Convert returns the body unchanged when no target is requested. Otherwise
// the body is rendered and, if needed, converted to req.Target.
func (g *Gateway) Convert(ctx context.Context, req wiki.ConvertRequest) (string, error) {
	if req.Target == "" {
		return req.Body, nil
	}
	if err := g.Check(req.Target); err != nil {
		return "", err
	}

	text, err := g.renderer.Render(ctx, RenderRequest{
		BaseDir:  req.BaseDir,
		PageName: req.PageName,
		Body:     req.Body,
	})
	if err != nil {
		return "", err
	}

	from := g.renderer.Format()
	if req.Target == from {
		return text, nil
	}

	g.logger.Debug("converting document", "page", req.PageName, "from", from, "to", req.Target)
	out, err := g.converter.Convert(ctx, from, req.Target, text)
	if err != nil {
		return "", fmt.Errorf("converting %s from %s to %s: %w", req.PageName, from, req.Target, err)
	}
	return out, nil
}

// Check verifies that the pipeline can produce target. An empty target
// always succeeds.
func (g *Gateway) Check(target string) error {
	if target == "" {
		return nil
	}
	if g.renderer == nil {
		return fmt.Errorf("%w: no renderer configured", wiki.ErrRendererUnavailable)
	}
	if err := g.renderer.Available(); err != nil {
		return err
	}

	from := g.renderer.Format()
	if target == from {
		return nil
	}
	if g.converter == nil || !g.converter.Supports(from, target) {
		return fmt.Errorf("%w: %s to %s", wiki.ErrConverterUnavailable, from, target)
	}
	return g.converter.Available()
}

// Verify runs Check and then lets the renderer attempt a trial start in
// baseDir. It is meant to run once before a migration.
func (g *Gateway) Verify(ctx context.Context, target, baseDir string) error {
	if err := g.Check(target); err != nil {
		return err
	}
	if target == "" {
		return nil
	}
	if v, ok := g.renderer.(verifier); ok {
		return v.Verify(ctx, baseDir)
	}
	return nil
}
