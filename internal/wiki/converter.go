package wiki

import (
	"context"
	"errors"
)

var (
	// ErrRendererUnavailable means a conversion was requested but no wiki
	// renderer is configured or its executable cannot be found.
	ErrRendererUnavailable = errors.New("renderer unavailable")

	// ErrConverterUnavailable means the requested target format needs a
	// document converter that is not configured or cannot handle it.
	ErrConverterUnavailable = errors.New("converter unavailable")

	// ErrPageNotFound means the renderer could not resolve the page name.
	ErrPageNotFound = errors.New("page not found")
)

// ConvertRequest describes one revision body conversion.
type ConvertRequest struct {
	// BaseDir is the wiki instance directory the renderer loads its
	// configuration and plugins from.
	BaseDir string
	// PageName is the decoded page name.
	PageName string
	// Body is the raw stored revision text.
	Body string
	// Target is the requested markup format. Empty means passthrough.
	Target string
}

// Converter turns a raw revision body into the target markup.
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) (string, error)
}
