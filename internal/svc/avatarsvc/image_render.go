package avatarsvc

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}

	placeholderBackground = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	placeholderInk        = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	fallbackFill          = color.RGBA{R: 160, G: 160, B: 160, A: 255}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownInterpolator
	}

	return interpol, nil
}

// placeholderLetter is the upper-cased first letter of username, or "U".
func placeholderLetter(username string) string {
	r, _ := utf8.DecodeRuneInString(username)
	if r == utf8.RuneError {
		return "U"
	}

	return string(unicode.ToUpper(r))
}

// renderPlaceholder draws a size×size grey square with letter in its centre.
func renderPlaceholder(size int, letter string) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))

	drawer := &font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(placeholderInk),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(letter)

	// Scale the bitmap glyph up to roughly a third of the canvas.
	scale := max(1, size/(3*face.Height))
	w, h := face.Advance*scale, face.Height*scale
	x0, y0 := (size-w)/2, (size-h)/2

	draw.NearestNeighbor.Scale(canvas, image.Rect(x0, y0, x0+w, y0+h), glyph, glyph.Bounds(), draw.Over, nil)

	return canvas
}

// renderFallback is used when a source picture cannot be decoded.
func renderFallback(size int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(fallbackFill), image.Point{}, draw.Src)

	return canvas
}

// resizeImage stretches src to a size×size square.
func resizeImage(src image.Image, size int, interpol draw.Interpolator) *image.RGBA {
	bitmap := image.NewRGBA(image.Rect(0, 0, size, size))
	interpol.Scale(bitmap, bitmap.Bounds(), src, src.Bounds(), draw.Src, nil)

	return bitmap
}

// circularMask keeps the pixels of the disc inscribed in src, fully opaque,
// and makes everything outside it fully transparent.
func circularMask(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	rx, ry := float64(bounds.Dx())/2, float64(bounds.Dy())/2

	for y := range bounds.Dy() {
		dy := (float64(y) + 0.5 - ry) / ry

		for x := range bounds.Dx() {
			dx := (float64(x) + 0.5 - rx) / rx
			if dx*dx+dy*dy > 1 {
				continue
			}

			c, _ := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			c.A = 255
			dst.SetNRGBA(x, y, c)
		}
	}

	return dst
}
