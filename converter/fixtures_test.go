package converter

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"docconv/contracts"
	"docconv/pdf_writer"
)

func fill(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngPayload(t *testing.T, name string, img image.Image) contracts.Payload {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return contracts.Payload{Name: name, MediaType: "image/png", Data: buf.Bytes()}
}

func bmpPayload(t *testing.T, name string, img image.Image) contracts.Payload {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	return contracts.Payload{Name: name, MediaType: "image/bmp", Data: buf.Bytes()}
}

func jpegPayload(t *testing.T, name string, img image.Image) contracts.Payload {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return contracts.Payload{Name: name, MediaType: "image/jpeg", Data: buf.Bytes()}
}

func docxPayload(t *testing.T, paragraphs ...string) contracts.Payload {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
		body.WriteString(p)
		body.WriteString("</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip: %v", err)
	}
	return contracts.Payload{Name: "letter.docx", MediaType: DOCXType, Data: buf.Bytes()}
}

// onePagePDF is a valid PDF for fakes to return.
func onePagePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fill(4, 4, color.White), nil); err != nil {
		t.Fatal(err)
	}
	out, err := pdf_writer.Assemble([]pdf_writer.Page{{Data: buf.Bytes(), PixelWidth: 4, PixelHeight: 4}})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

type fakeRenderer struct {
	out   []byte
	err   error
	html  string
	calls int
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	f.calls++
	f.html = html
	return f.out, f.err
}

// spyConverter counts calls.
type spyConverter struct {
	calls int
}

func (s *spyConverter) Convert(ctx context.Context, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	s.calls++
	return contracts.ConversionResult{FileName: "spy.pdf", ContentType: "application/pdf"}, nil
}
