package avatarsvc

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderLetter(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"bob":    "B",
		"Zoe":    "Z",
		"éric":   "É",
		"":       "U",
		"9lives": "9",
	}

	for username, want := range tests {
		assert.Equal(t, want, placeholderLetter(username), username)
	}
}

func TestRenderPlaceholder_DrawsLetter(t *testing.T) {
	t.Parallel()

	img := renderPlaceholder(400, "B")

	inked := 0

	for y := range 400 {
		for x := range 400 {
			if img.RGBAAt(x, y) == placeholderInk {
				inked++
			}
		}
	}

	assert.Positive(t, inked)
	assert.Equal(t, placeholderBackground, img.RGBAAt(0, 0))
}

func TestDetectMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"png", "\x89PNG\r\n\x1a\nrest", MIMETypePNG, false},
		{"jpeg", "\xFF\xD8\xFF\xE0", MIMETypeJPEG, false},
		{"gif", "GIF89a....", MIMETypeGIF, false},
		{"bmp", "BM......", MIMETypeBMP, false},
		{"tiff little endian", "II*\x00", MIMETypeTIFF, false},
		{"webp", "RIFF\x10\x00\x00\x00WEBPVP8 ", MIMETypeWebP, false},
		{"riff but not webp", "RIFF\x10\x00\x00\x00WAVE", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := detectMIMEType([]byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedMIMEType)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring a truecolor
// picture of the given size, without any pixel data.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, width)
	ihdr = binary.BigEndian.AppendUint32(ihdr, height)
	ihdr = append(ihdr, 8, 2, 0, 0, 0)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, ihdr...)

	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

func TestDecodeImage_ChecksDimensions(t *testing.T) {
	t.Parallel()

	var small bytes.Buffer
	require.NoError(t, png.Encode(&small, image.NewRGBA(image.Rect(0, 0, 10, 10))))

	tests := []struct {
		name      string
		data      []byte
		maxPixels int64
		wantErr   error
	}{
		{name: "huge declared size", data: pngHeader(100_000, 100_000), maxPixels: DefaultMaxSourcePixels, wantErr: ErrSourceTooLarge},
		{name: "one pixel over", data: small.Bytes(), maxPixels: 99, wantErr: ErrSourceTooLarge},
		{name: "at the limit", data: small.Bytes(), maxPixels: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := decodeImage(tt.data, tt.maxPixels)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
		})
	}

	_, err := decodeImage(pngHeader(10, 10), DefaultMaxSourcePixels)
	require.Error(t, err, "header without pixel data")
	assert.NotErrorIs(t, err, ErrSourceTooLarge)
}

func TestCircularMask(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(10, 10, 30, 30))
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			src.SetRGBA(x, y, color.RGBA{G: 255, A: 255})
		}
	}

	masked := circularMask(src)

	assert.Equal(t, image.Rect(0, 0, 20, 20), masked.Bounds())
	assert.Equal(t, color.NRGBA{}, masked.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, masked.NRGBAAt(10, 10))
}
