package utils

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

const defaultBaseName = "document"

var extensionMediaTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
}

// OutputFileName strips the last extension from base, replaces spaces with
// underscores and appends ext.
func OutputFileName(base string, ext string) string {
	name := strings.TrimSpace(filepath.Base(strings.TrimSpace(base)))
	if e := filepath.Ext(name); e != "" && e != name {
		name = strings.TrimSuffix(name, e)
	}
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = defaultBaseName
	}
	return name + "." + ext
}

// MediaTypeFromPath guesses a media type from the file extension.
func MediaTypeFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionMediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// GetJPEGOrientation returns the EXIF Orientation tag (1-8) of a JPEG. Images
// without the tag report 1.
func GetJPEGOrientation(data []byte) (int, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return 1, nil
		}
		return 1, fmt.Errorf("EXIF not found: %v", err)
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 1, err
	}

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 1, err
	}

	tag, err := index.RootIfd.FindTagWithName("Orientation")
	if err != nil || len(tag) == 0 {
		return 1, nil
	}
	val, err := tag[0].Value()
	if err != nil {
		return 1, err
	}
	if o, ok := val.([]uint16); ok && len(o) > 0 && o[0] >= 1 && o[0] <= 8 {
		return int(o[0]), nil
	}
	return 1, nil
}
