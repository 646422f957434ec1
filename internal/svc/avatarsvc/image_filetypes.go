package avatarsvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const (
	MIMETypeBMP  = "image/bmp"
	MIMETypeGIF  = "image/gif"
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
	MIMETypeWebP = "image/webp"
)

// ErrUnsupportedMIMEType is returned when a source picture is in none of the known formats.
var ErrUnsupportedMIMEType = errors.New("unsupported MIME type")

//nolint:gochecknoglobals
var (
	imageHeaders = []struct {
		mimeType string
		magic    []string
	}{
		{MIMETypePNG, []string{"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"}},
		{MIMETypeJPEG, []string{"\xFF\xD8"}},
		{MIMETypeGIF, []string{"GIF87a", "GIF89a"}},
		{MIMETypeTIFF, []string{"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"}},
		{MIMETypeBMP, []string{"BM"}},
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeBMP:  bmp.Decode,
		MIMETypeGIF:  gif.Decode,
		MIMETypeJPEG: jpeg.Decode,
		MIMETypePNG:  png.Decode,
		MIMETypeTIFF: tiff.Decode,
		MIMETypeWebP: webp.Decode,
	}

	imageConfigDecoders = map[string]func(io.Reader) (image.Config, error){
		MIMETypeBMP:  bmp.DecodeConfig,
		MIMETypeGIF:  gif.DecodeConfig,
		MIMETypeJPEG: jpeg.DecodeConfig,
		MIMETypePNG:  png.DecodeConfig,
		MIMETypeTIFF: tiff.DecodeConfig,
		MIMETypeWebP: webp.DecodeConfig,
	}
)

// detectMIMEType identifies the image format from the leading bytes of data.
func detectMIMEType(data []byte) (string, error) {
	// RIFF container: "RIFF" <size:4> "WEBP"
	if len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return MIMETypeWebP, nil
	}

	for _, h := range imageHeaders {
		for _, magic := range h.magic {
			if bytes.HasPrefix(data, []byte(magic)) {
				return h.mimeType, nil
			}
		}
	}

	return "", ErrUnsupportedMIMEType
}

// decodeImage decodes data in any of the supported formats. The header is
// checked first; pictures declaring more than maxPixels pixels are refused
// with ErrSourceTooLarge before any pixel buffer is allocated.
func decodeImage(data []byte, maxPixels int64) (image.Image, error) {
	mimeType, err := detectMIMEType(data)
	if err != nil {
		return nil, err
	}

	cfg, err := imageConfigDecoders[mimeType](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", mimeType, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels exceeds %d", ErrSourceTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imageDecoders[mimeType](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mimeType, err)
	}

	return img, nil
}

// encodePNG encodes img as PNG.
func encodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer

	if err := png.Encode(&buffer, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buffer.Bytes(), nil
}
