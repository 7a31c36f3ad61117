package contracts

import (
	"fmt"
	"mime"
	"strings"

	"github.com/samber/lo"
)

type Mode string

const (
	ModeHTML             Mode = "html"
	ModeWord             Mode = "word"
	ModeImage            Mode = "image"
	ModeImageToGrayscale Mode = "image_to_grayscale"
	ModePNGToJPG         Mode = "png_to_jpg"
	ModeBMPToJPG         Mode = "bmp_to_jpg"
	ModeImageDistort     Mode = "image_distort"
)

var modes = []Mode{
	ModeHTML,
	ModeWord,
	ModeImage,
	ModeImageToGrayscale,
	ModePNGToJPG,
	ModeBMPToJPG,
	ModeImageDistort,
}

// Modes returns every conversion mode in declaration order.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	if !lo.Contains(modes, m) {
		return "", &UnsupportedModeError{Mode: m}
	}
	return m, nil
}

// Option keys understood by the converters.
const (
	OptionConvertToPDF = "convert_to_pdf"
	OptionAutoOrient   = "auto_orient"
	OptionGrayscale    = "grayscale"
	OptionSwirl        = "swirl"
)

type Payload struct {
	Name      string
	MediaType string
	Data      []byte
}

type ConversionRequest struct {
	Mode     Mode
	BaseName string
	Payloads []Payload
	Options  map[string]bool
}

// Option reports whether the named boolean option is set.
func (r ConversionRequest) Option(key string) bool {
	return r.Options[key]
}

type ConversionResult struct {
	FileName    string
	Content     []byte
	ContentType string
	// Pages is the page count of PDF outputs and 0 for raster outputs.
	Pages int
}

func (r ConversionResult) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", r.FileName, r.ContentType, len(r.Content))
}

// Output formats. The extension and content type of a result always come from the same entry.
type Format struct {
	Extension   string
	ContentType string
}

var (
	FormatPDF  = Format{Extension: "pdf", ContentType: "application/pdf"}
	FormatJPEG = Format{Extension: "jpg", ContentType: "image/jpeg"}
)

// MediaSet is a set of accepted media types.
type MediaSet []string

func (s MediaSet) Contains(mediaType string) bool {
	return lo.Contains(s, NormalizeMediaType(mediaType))
}

func (s MediaSet) String() string {
	return strings.Join(s, ", ")
}

// NormalizeMediaType lower-cases a media type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return strings.ToLower(strings.SplitN(mediaType, ";", 2)[0])
}
