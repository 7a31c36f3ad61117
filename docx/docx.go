// Package docx reads the body paragraphs of a WordprocessingML (.docx) document.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var ErrNoDocumentPart = errors.New("docx archive has no " + documentPart)

// Paragraphs returns the text of every top-level body paragraph in document
// order. Tables are skipped. Tabs become "\t", breaks become "\n".
func Paragraphs(data []byte) ([]string, error) {
	part, err := documentFile(data)
	if err != nil {
		return nil, err
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	return readBody(rc)
}

// Check reports whether data is a zip archive carrying a document part,
// without parsing it.
func Check(data []byte) error {
	_, err := documentFile(data)
	return err
}

func documentFile(data []byte) (*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == documentPart {
			return f, nil
		}
	}
	return nil, ErrNoDocumentPart
}

func readBody(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inBody     bool
		inText     bool
		// depth of w:p / w:tbl / w:r nesting below w:body
		paraDepth  int
		tableDepth int
		runDepth   int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = true
			case "tbl":
				tableDepth++
			case "p":
				if inBody && tableDepth == 0 {
					if paraDepth == 0 {
						current.Reset()
					}
					paraDepth++
				}
			case "r":
				if paraDepth > 0 {
					runDepth++
				}
			case "t":
				inText = runDepth > 0
			case "tab":
				// tab stops under w:pPr are not content
				if runDepth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = false
			case "tbl":
				tableDepth--
			case "p":
				if paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						paragraphs = append(paragraphs, current.String())
					}
				}
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
