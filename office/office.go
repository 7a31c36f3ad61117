// Package office drives a headless LibreOffice to save documents as PDF.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"

	"docconv/files_manager"
	"docconv/utils"
)

var log = logger.GetLogger("office")

const DefaultBinary = "soffice"

var ErrNoOutput = errors.New("office produced no pdf")

type Driver struct {
	Binary     string
	Timeout    time.Duration
	Exec       utils.Executor
	Workspaces *files_manager.Manager
}

func NewDriver(binary string, timeout time.Duration, workspaces *files_manager.Manager) *Driver {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Driver{Binary: binary, Timeout: timeout, Exec: utils.OSExecutor{}, Workspaces: workspaces}
}

// session is one document conversion: a private workspace holding the input,
// the output directory and a throwaway user profile.
type session struct {
	ws      *files_manager.Workspace
	input   string
	outDir  string
	profile string
}

func (d *Driver) openSession(name string, data []byte) (*session, error) {
	ws, err := d.Workspaces.Create()
	if err != nil {
		return nil, err
	}
	s := &session{ws: ws}

	if s.input, err = ws.WriteFile(name, data); err != nil {
		s.Close()
		return nil, err
	}
	if s.outDir, err = ws.Mkdir("out"); err != nil {
		s.Close()
		return nil, err
	}
	if s.profile, err = ws.Mkdir("profile"); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	return s.ws.Close()
}

func (s *session) args() []string {
	return []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"--nodefault",
		"-env:UserInstallation=file://" + filepath.ToSlash(s.profile),
		"--convert-to", "pdf",
		"--outdir", s.outDir,
		s.input,
	}
}

func (s *session) outputPath() string {
	stem := strings.TrimSuffix(filepath.Base(s.input), filepath.Ext(s.input))
	return filepath.Join(s.outDir, stem+".pdf")
}

// ConvertToPDF converts one office document. name only picks the file
// extension LibreOffice uses to detect the input filter.
func (d *Driver) ConvertToPDF(ctx context.Context, name string, data []byte) ([]byte, error) {
	bin, err := d.Exec.LookPath(d.Binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", d.Binary, err)
	}

	s, err := d.openSession(files_manager.SafeFileName(name, "document.docx"), data)
	if err != nil {
		return nil, fmt.Errorf("prepare office workspace: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warnf("failed to remove office workspace %s: %v", s.ws.Dir, err)
		}
	}()

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	log.Debugf("running %s %s", bin, strings.Join(s.args(), " "))
	if err := d.Exec.Run(ctx, bin, s.args(), nil, &stdout, &stderr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, fmt.Errorf("office convert failed: %w, output: %s", err, output(&stdout, &stderr))
	}

	pdf, err := os.ReadFile(s.outputPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w, output: %s", ErrNoOutput, output(&stdout, &stderr))
		}
		return nil, fmt.Errorf("read office output: %w", err)
	}
	if len(pdf) == 0 {
		return nil, ErrNoOutput
	}
	return pdf, nil
}

func output(stdout, stderr *bytes.Buffer) string {
	return strings.TrimSpace(strings.TrimSpace(stdout.String()) + " " + strings.TrimSpace(stderr.String()))
}
