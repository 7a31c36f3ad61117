package pdf_writer

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating a config directory in the user's home
	api.DisableConfigDir()
}

func inspectConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount validates data as a PDF and returns its page count.
func PageCount(data []byte) (int, error) {
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return 0, fmt.Errorf("missing %%PDF header")
	}
	n, err := api.PageCount(bytes.NewReader(data), inspectConfig())
	if err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}
	if n == 0 {
		return 0, ErrNoPages
	}
	return n, nil
}
