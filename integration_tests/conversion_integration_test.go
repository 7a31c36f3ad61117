package tests

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/bmp"

	"docconv/contracts"
	"docconv/converter"
	"docconv/render"
)

func newDispatcher(t *testing.T) *converter.Dispatcher {
	t.Helper()
	renderer, err := render.New(render.Settings{Backend: render.BackendBuiltin})
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	d, err := converter.New(converter.Options{Renderer: renderer})
	if err != nil {
		t.Fatalf("Failed to create dispatcher: %v", err)
	}
	return d
}

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeBMP(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode bmp: %v", err)
	}
	return buf.Bytes()
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create document part: %v", err)
	}
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close docx: %v", err)
	}
	return buf.Bytes()
}

// checkPDF validates the PDF with pdfcpu, extracts its images and, when
// poppler is installed, runs pdfinfo over it.
func checkPDF(t *testing.T, content []byte, wantPages int, wantImages bool) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to save PDF: %v", err)
	}

	config := model.NewDefaultConfiguration()
	config.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, config); err != nil {
		t.Fatalf("PDF validation failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pages, err := api.PageCount(f, config)
	if err != nil {
		t.Fatalf("Failed to count pages: %v", err)
	}
	if pages != wantPages {
		t.Errorf("Page count mismatch: got %d, expected %d", pages, wantPages)
	}

	if wantImages {
		extractDir := filepath.Join(dir, "images")
		if err := os.MkdirAll(extractDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := api.ExtractImagesFile(path, extractDir, nil, config); err != nil {
			t.Fatalf("Failed to extract images: %v", err)
		}
		files, _ := os.ReadDir(extractDir)
		if len(files) != wantPages {
			t.Errorf("Extracted %d images, expected %d", len(files), wantPages)
		}
	}

	if _, err := exec.LookPath("pdfinfo"); err == nil {
		out, err := exec.Command("pdfinfo", path).CombinedOutput()
		if err != nil {
			t.Errorf("pdfinfo failed: %v\n%s", err, out)
		} else {
			t.Logf("pdfinfo:\n%s", out)
		}
	}
}

func TestHTMLToPDF(t *testing.T) {
	d := newDispatcher(t)
	var body strings.Builder
	body.WriteString("<html><head><title>Report</title></head><body><h1>Quarterly report</h1>")
	for i := 0; i < 120; i++ {
		body.WriteString("<p>Line of text that fills the page.</p>")
	}
	body.WriteString("</body></html>")

	res, err := d.Dispatch(context.Background(), contracts.ModeHTML, contracts.ConversionRequest{
		BaseName: "report.html",
		Payloads: []contracts.Payload{{Name: "report.html", MediaType: "text/html", Data: []byte(body.String())}},
	})
	if err != nil {
		t.Fatalf("Conversion failed: %v", err)
	}
	if res.FileName != "report.pdf" || res.ContentType != "application/pdf" {
		t.Errorf("Unexpected result %s", res)
	}
	if res.Pages < 2 {
		t.Errorf("Expected a multi-page document, got %d pages", res.Pages)
	}
	checkPDF(t, res.Content, res.Pages, false)
}

func TestWordToPDF(t *testing.T) {
	d := newDispatcher(t)
	res, err := d.Dispatch(context.Background(), contracts.ModeWord, contracts.ConversionRequest{
		BaseName: "letter",
		Payloads: []contracts.Payload{{
			Name:      "letter.docx",
			MediaType: converter.DOCXType,
			Data:      buildDocx(t, "Dear reader,", "First paragraph.", "Regards"),
		}},
	})
	if err != nil {
		t.Fatalf("Conversion failed: %v", err)
	}
	if res.FileName != "letter.pdf" {
		t.Errorf("File name mismatch: got %s", res.FileName)
	}
	checkPDF(t, res.Content, 1, false)
}

func TestImagesToPDF(t *testing.T) {
	d := newDispatcher(t)
	var payloads []contracts.Payload
	for _, size := range []int{40, 80, 120} {
		payloads = append(payloads, contracts.Payload{
			Name:      "scan.png",
			MediaType: "image/png",
			Data:      encodePNG(t, gradient(size, size)),
		})
	}
	payloads = append(payloads, contracts.Payload{Name: "scan.bmp", MediaType: "image/bmp", Data: encodeBMP(t, gradient(50, 30))})

	res, err := d.Dispatch(context.Background(), contracts.ModeImage, contracts.ConversionRequest{
		BaseName: "album",
		Payloads: payloads,
	})
	if err != nil {
		t.Fatalf("Conversion failed: %v", err)
	}
	if res.Pages != len(payloads) {
		t.Errorf("Page count mismatch: got %d, expected %d", res.Pages, len(payloads))
	}
	checkPDF(t, res.Content, len(payloads), true)
}

func TestGrayscaleAndDistortToPDF(t *testing.T) {
	d := newDispatcher(t)
	payload := contracts.Payload{Name: "photo.png", MediaType: "image/png", Data: encodePNG(t, gradient(160, 120))}

	cases := []struct {
		mode    contracts.Mode
		options map[string]bool
	}{
		{contracts.ModeImageToGrayscale, map[string]bool{contracts.OptionConvertToPDF: true}},
		{contracts.ModeImageDistort, nil},
		{contracts.ModeImageDistort, map[string]bool{contracts.OptionGrayscale: true, contracts.OptionSwirl: true}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			res, err := d.Dispatch(context.Background(), tc.mode, contracts.ConversionRequest{
				BaseName: "photo.png",
				Payloads: []contracts.Payload{payload},
				Options:  tc.options,
			})
			if err != nil {
				t.Fatalf("Conversion failed: %v", err)
			}
			if res.FileName != "photo.pdf" {
				t.Errorf("File name mismatch: got %s", res.FileName)
			}
			checkPDF(t, res.Content, 1, true)
		})
	}
}

func TestImageToJPEG(t *testing.T) {
	d := newDispatcher(t)
	cases := []struct {
		mode    contracts.Mode
		payload contracts.Payload
	}{
		{contracts.ModePNGToJPG, contracts.Payload{Name: "a.png", MediaType: "image/png", Data: encodePNG(t, gradient(64, 48))}},
		{contracts.ModeBMPToJPG, contracts.Payload{Name: "a.bmp", MediaType: "image/bmp", Data: encodeBMP(t, gradient(64, 48))}},
		{contracts.ModeImageToGrayscale, contracts.Payload{Name: "a.png", MediaType: "image/png", Data: encodePNG(t, gradient(64, 48))}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			res, err := d.Dispatch(context.Background(), tc.mode, contracts.ConversionRequest{
				BaseName: "a",
				Payloads: []contracts.Payload{tc.payload},
			})
			if err != nil {
				t.Fatalf("Conversion failed: %v", err)
			}
			if res.FileName != "a.jpg" || res.ContentType != "image/jpeg" {
				t.Errorf("Unexpected result %s", res)
			}
			if !bytes.HasPrefix(res.Content, []byte{0xFF, 0xD8}) {
				t.Errorf("Output is not a JPEG")
			}
		})
	}
}

func TestWkhtmltopdfBackend(t *testing.T) {
	if _, err := exec.LookPath("wkhtmltopdf"); err != nil {
		t.Skip("Skipping test: wkhtmltopdf not installed")
	}
	renderer, err := render.New(render.Settings{Backend: render.BackendWkhtmltopdf})
	if err != nil {
		t.Fatal(err)
	}
	d, err := converter.New(converter.Options{Renderer: renderer})
	if err != nil {
		t.Fatal(err)
	}
	res, err := d.Dispatch(context.Background(), contracts.ModeHTML, contracts.ConversionRequest{
		BaseName: "hello.html",
		Payloads: []contracts.Payload{{Name: "hello.html", MediaType: "text/html", Data: []byte("<h1>Hello</h1>")}},
	})
	if err != nil {
		t.Fatalf("Conversion failed: %v", err)
	}
	checkPDF(t, res.Content, 1, false)
}
