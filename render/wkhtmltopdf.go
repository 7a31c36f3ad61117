package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"docconv/utils"
)

const defaultWkhtmltopdf = "wkhtmltopdf"

type Wkhtmltopdf struct {
	Path    string
	Timeout time.Duration
	Options PageOptions
	Exec    utils.Executor
}

func NewWkhtmltopdf(path string, timeout time.Duration, opts PageOptions) *Wkhtmltopdf {
	if path == "" {
		path = defaultWkhtmltopdf
	}
	return &Wkhtmltopdf{Path: path, Timeout: timeout, Options: opts, Exec: utils.OSExecutor{}}
}

func (w *Wkhtmltopdf) Name() string {
	return BackendWkhtmltopdf
}

func (w *Wkhtmltopdf) args() []string {
	args := []string{"--quiet", "--page-size", w.Options.PageSize}
	if w.Options.LocalFileAccess {
		args = append(args, "--enable-local-file-access")
	}
	if w.Options.PrintMediaType {
		args = append(args, "--print-media-type")
	}
	if w.Options.Encoding != "" {
		args = append(args, "--encoding", w.Options.Encoding)
	}
	// read stdin, write stdout
	return append(args, "-", "-")
}

// Render pipes html through wkhtmltopdf.
func (w *Wkhtmltopdf) Render(ctx context.Context, html string) ([]byte, error) {
	bin, err := w.Exec.LookPath(w.Path)
	if err != nil {
		return nil, NewRendererError(w.Name(), "lookup", fmt.Errorf("%s not found: %w", w.Path, err))
	}

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	args := w.args()
	log.Debugf("running %s %s", bin, strings.Join(args, " "))
	if err := w.Exec.Run(ctx, bin, args, strings.NewReader(html), &stdout, &stderr); err != nil {
		return nil, NewRendererError(w.Name(), "render", fmt.Errorf("command failed: %w, output: %s", err, strings.TrimSpace(stderr.String())))
	}
	if stdout.Len() == 0 {
		return nil, NewRendererError(w.Name(), "render", fmt.Errorf("no output, stderr: %s", strings.TrimSpace(stderr.String())))
	}
	return stdout.Bytes(), nil
}
