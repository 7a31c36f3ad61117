package pdf_writer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultDPI is the resolution assembled pages are laid out at.
const DefaultDPI = 300

// Page is one baseline JPEG placed on its own page.
type Page struct {
	Data        []byte
	PixelWidth  int
	PixelHeight int
	Gray        bool
	DPI         float64
}

// Points returns the page size in PDF user space units.
func (p *Page) Points() (float64, float64) {
	dpi := p.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return float64(p.PixelWidth) * 72 / dpi, float64(p.PixelHeight) * 72 / dpi
}

var ErrNoPages = errors.New("pdf has no pages")

type PDFWriter struct {
	objects    []int64
	imageInfos []ImageInfo
	bw         *bufio.Writer
	cw         *countingWriter
	objNum     int

	pagesObjID   int64
	pageIDs      []int64
	catalogObjID int64
}

type ImageInfo struct {
	id     int64
	width  float64
	height float64
}

type countingWriter struct {
	w      io.Writer
	offset int64
}

func NewPDFWriter(dst io.Writer) (*PDFWriter, error) {
	cw := &countingWriter{
		w: dst,
	}
	pw := &PDFWriter{
		cw: cw,
		bw: bufio.NewWriterSize(cw, 1024*1024),
	}

	if _, err := pw.bw.WriteString("%PDF-1.7\n%\xFF\xFF\xFF\xFF\n"); err != nil {
		return nil, fmt.Errorf("error writing PDF header: %v", err)
	}

	// Pages is referenced by every page, its offset is filled in by Finish
	pw.pagesObjID = pw.reserveObject()
	return pw, nil
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	if err == nil {
		cw.offset += int64(n)
	}
	return n, err
}

func (pw *PDFWriter) getOffset() int64 {
	return pw.cw.offset + int64(pw.bw.Buffered())
}

func (pw *PDFWriter) reserveObject() int64 {
	pw.objNum++
	pw.objects = append(pw.objects, 0)
	return int64(pw.objNum)
}

func (pw *PDFWriter) startObject(id int64) {
	pw.objects[id-1] = pw.getOffset()
	pw.bw.WriteString(fmt.Sprintf("%d 0 obj\n", id))
}

func (pw *PDFWriter) newObject() int64 {
	id := pw.reserveObject()
	pw.startObject(id)
	return id
}

// WriteImage appends page as an image XObject. Pages appear in call order.
func (pw *PDFWriter) WriteImage(page *Page) error {
	if page.PixelWidth <= 0 || page.PixelHeight <= 0 {
		return fmt.Errorf("invalid page size %dx%d", page.PixelWidth, page.PixelHeight)
	}
	if len(page.Data) == 0 {
		return errors.New("empty page image")
	}
	colorSpace := "DeviceRGB"
	if page.Gray {
		colorSpace = "DeviceGray"
	}
	if err := pw.writeJPEGImage(page, colorSpace); err != nil {
		return fmt.Errorf("error writing %s JPEG image: %v", colorSpace, err)
	}
	return nil
}

func (pw *PDFWriter) writeJPEGImage(page *Page, colorSpace string) error {
	imgID := pw.newObject()
	w, h := page.Points()
	pw.imageInfos = append(pw.imageInfos, ImageInfo{
		id:     imgID,
		width:  w,
		height: h,
	})
	pw.bw.WriteString("<<\n/Type /XObject\n/Subtype /Image\n")
	pw.bw.WriteString(fmt.Sprintf("/Width %d\n/Height %d\n", page.PixelWidth, page.PixelHeight))
	pw.bw.WriteString(fmt.Sprintf("/ColorSpace /%s\n/BitsPerComponent 8\n", colorSpace))
	pw.bw.WriteString("/Filter /DCTDecode\n")

	pw.bw.WriteString(fmt.Sprintf("/Length %d\n", len(page.Data)))
	pw.bw.WriteString(">>\nstream\n")
	pw.bw.Write(page.Data)
	pw.bw.WriteString("\nendstream\nendobj\n")
	return pw.flushIfFull()
}

// flushIfFull surfaces write errors early on large documents.
func (pw *PDFWriter) flushIfFull() error {
	if pw.bw.Buffered() < pw.bw.Size()/2 {
		return nil
	}
	return pw.bw.Flush()
}

func (pw *PDFWriter) writeContent(imgName string, width, height float64) int64 {
	content := fmt.Sprintf(
		"q\n%.2f 0 0 %.2f 0 0 cm\n/%s Do\nQ\n",
		width, height, imgName,
	)
	objID := pw.newObject()
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString(fmt.Sprintf("/Length %d\n", len(content)))
	pw.bw.WriteString(">>\n")
	pw.bw.WriteString("stream\n")
	pw.bw.WriteString(content)
	pw.bw.WriteString("endstream\nendobj\n")
	return objID
}

func (pw *PDFWriter) writePage(imgName string,
	imgObjID int64,
	contentID int64,
	width, height float64) int64 {
	objID := pw.newObject()
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Page\n")
	pw.bw.WriteString(fmt.Sprintf("/Parent %d 0 R\n", pw.pagesObjID))
	pw.bw.WriteString(fmt.Sprintf("/MediaBox [0 0 %.2f %.2f]\n", width, height))
	pw.bw.WriteString(fmt.Sprintf("/Resources << /XObject << /%s %d 0 R >> >>\n", imgName, imgObjID))
	pw.bw.WriteString(fmt.Sprintf("/Contents %d 0 R\n", contentID))
	pw.bw.WriteString(">>\nendobj\n")
	return objID
}

func (pw *PDFWriter) createDocumentStructure() error {
	if len(pw.imageInfos) == 0 {
		return ErrNoPages
	}

	// Content and Page for each image
	for i, info := range pw.imageInfos {
		imgName := fmt.Sprintf("img_%d", i)
		contentID := pw.writeContent(imgName, info.width, info.height)
		pageID := pw.writePage(imgName, info.id, contentID, info.width, info.height)
		pw.pageIDs = append(pw.pageIDs, pageID)
	}

	pw.startObject(pw.pagesObjID)
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Pages\n")
	pw.bw.WriteString(fmt.Sprintf("/Count %d\n", len(pw.pageIDs)))
	pw.bw.WriteString("/Kids [")
	for i, id := range pw.pageIDs {
		if i > 0 {
			pw.bw.WriteString(" ")
		}
		pw.bw.WriteString(fmt.Sprintf("%d 0 R", id))
	}
	pw.bw.WriteString("]\n>>\nendobj\n")

	pw.catalogObjID = pw.newObject()
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString(fmt.Sprintf("/Type /Catalog\n/Pages %d 0 R\n", pw.pagesObjID))
	pw.bw.WriteString(">>\nendobj\n")

	if err := pw.bw.Flush(); err != nil {
		return fmt.Errorf("error flushing buffer after creating structure: %v", err)
	}
	return nil
}

// Finish writes the page tree, cross-reference table and trailer. The writer
// must not be used afterwards.
func (pw *PDFWriter) Finish() error {
	if err := pw.createDocumentStructure(); err != nil {
		return fmt.Errorf("failed to create document structure before finishing: %w", err)
	}

	startXref := pw.cw.offset
	total := len(pw.objects) + 1

	if _, err := fmt.Fprintf(pw.cw.w, "xref\n0 %d\n", total); err != nil {
		return fmt.Errorf("error writing xref header: %v", err)
	}
	// entries are exactly 20 bytes including the two-byte end of line
	if _, err := fmt.Fprintf(pw.cw.w, "%010d %05d f \n", 0, 65535); err != nil {
		return fmt.Errorf("error writing free object xref entry: %v", err)
	}
	for _, off := range pw.objects {
		if _, err := fmt.Fprintf(pw.cw.w, "%010d %05d n \n", off, 0); err != nil {
			return fmt.Errorf("error writing object xref entry: %v", err)
		}
	}

	if _, err := fmt.Fprintf(pw.cw.w,
		"trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		total, pw.catalogObjID, startXref,
	); err != nil {
		return fmt.Errorf("error writing trailer and startxref: %v", err)
	}

	return nil
}

// Assemble writes pages in order into a single PDF document.
func Assemble(pages []Page) ([]byte, error) {
	var buf bytes.Buffer
	pw, err := NewPDFWriter(&buf)
	if err != nil {
		return nil, err
	}
	for i := range pages {
		if err := pw.WriteImage(&pages[i]); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	if err := pw.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
