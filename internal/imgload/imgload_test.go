package imgload_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/imgload"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCheck(t *testing.T) {
	assert.NoError(t, imgload.Check(1, 1))
	assert.NoError(t, imgload.Check(4096, 4096))
	assert.True(t, errors.Is(imgload.Check(4097, 1), imgload.ErrImageTooLarge))
	assert.True(t, errors.Is(imgload.Check(1, 4097), imgload.ErrImageTooLarge))
	assert.Error(t, imgload.Check(0, 5))
}

func TestDecode(t *testing.T) {
	img, format, err := imgload.Decode(bytes.NewReader(encodePNG(t, 3, 2)))
	require.NoError(t, err)
	assert.Equal(t, `png`, format)
	assert.Equal(t, image.Pt(3, 2), img.Bounds().Size())

	_, _, err = imgload.Decode(bytes.NewReader(encodePNG(t, 4097, 1)))
	assert.True(t, errors.Is(err, imgload.ErrImageTooLarge))

	_, _, err = imgload.Decode(strings.NewReader(`not an image`))
	assert.Error(t, err)
}

func TestBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), `in.png`)
	require.NoError(t, os.WriteFile(path, encodePNG(t, 2, 3), 0o600))
	buf, err := imgload.Buffer(path)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Width())
	assert.Equal(t, 3, buf.Height())
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, buf.RGBA(0, 0))

	_, err = imgload.Buffer(filepath.Join(t.TempDir(), `missing.png`))
	assert.Error(t, err)
}
