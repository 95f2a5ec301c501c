// Package encoder holds the export interface of the host tools.
package encoder

import (
	"image"
	"io"
	"path/filepath"
	"strings"
)

type ImageEncoder interface {
	Encode(w io.Writer, img image.Image, fileExt string) error
}

// Format returns the lower case format name of a file extension or a whole
// file name.
func Format(fileExt string) string {
	if ext := filepath.Ext(fileExt); len(ext) > 0 {
		fileExt = ext
	}
	return strings.ToLower(strings.TrimPrefix(fileExt, `.`))
}
