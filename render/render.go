// Package render turns prepared HTML into PDF bytes. Backends share the fixed
// page options of PageOptions and are selected by name.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/flanksource/commons/logger"
)

var log = logger.GetLogger("render")

// Renderer converts one HTML document into a PDF.
type Renderer interface {
	Name() string
	Render(ctx context.Context, html string) ([]byte, error)
}

// Backend names accepted by New.
const (
	BackendWkhtmltopdf = "wkhtmltopdf"
	BackendPlaywright  = "playwright"
	BackendBuiltin     = "builtin"
)

func Backends() []string {
	return []string{BackendWkhtmltopdf, BackendPlaywright, BackendBuiltin}
}

// PageOptions are applied by every backend.
type PageOptions struct {
	PageSize        string
	LocalFileAccess bool
	PrintMediaType  bool
	Encoding        string
}

func DefaultPageOptions() PageOptions {
	return PageOptions{
		PageSize:        "A4",
		LocalFileAccess: true,
		PrintMediaType:  true,
		Encoding:        "UTF-8",
	}
}

type Settings struct {
	Backend         string
	WkhtmltopdfPath string
	Timeout         time.Duration
	InstallBrowsers bool
	FontDir         string
}

// New builds the renderer named by s.Backend.
func New(s Settings) (Renderer, error) {
	opts := DefaultPageOptions()
	switch s.Backend {
	case BackendWkhtmltopdf, "":
		return NewWkhtmltopdf(s.WkhtmltopdfPath, s.Timeout, opts), nil
	case BackendPlaywright:
		return NewPlaywright(s.InstallBrowsers, s.Timeout, opts), nil
	case BackendBuiltin:
		return NewBuiltin(s.FontDir, opts), nil
	}
	return nil, fmt.Errorf("unknown renderer backend %q", s.Backend)
}

// RendererError carries the backend and step that failed.
type RendererError struct {
	Renderer  string
	Operation string
	Err       error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("%s renderer %s failed: %v", e.Renderer, e.Operation, e.Err)
}

func (e *RendererError) Unwrap() error {
	return e.Err
}

func NewRendererError(renderer, operation string, err error) error {
	return &RendererError{
		Renderer:  renderer,
		Operation: operation,
		Err:       err,
	}
}

// Close releases renderer resources when the backend holds any.
func Close(r Renderer) error {
	if c, ok := r.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
