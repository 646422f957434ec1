package catalogsvc

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

//nolint:gochecknoglobals
var (
	sky     = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	roof    = color.RGBA{R: 150, G: 75, A: 255}
	door    = color.RGBA{R: 80, G: 50, B: 20, A: 255}
	outline = color.RGBA{A: 255}

	// wallColors are the walls of house1..house3.
	wallColors = []color.RGBA{
		{R: 180, G: 50, B: 50, A: 255},
		{R: 50, G: 120, B: 180, A: 255},
		{R: 50, G: 180, B: 100, A: 255},
	}
)

// drawHouse renders a 400×300 house with the given wall colour.
func drawHouse(wall color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	fill(img, img.Bounds(), sky)

	walls := image.Rect(100, 150, 301, 281)
	fill(img, walls, wall)
	frame(img, walls, outline)

	triangle(img, image.Pt(100, 150), image.Pt(200, 80), image.Pt(300, 150), roof)

	fill(img, image.Rect(180, 200, 221, 281), door)

	return img
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func frame(img draw.Image, r image.Rectangle, c color.Color) {
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// triangle fills the isosceles triangle with base left-right and apex top,
// outlining its edges.
func triangle(img *image.RGBA, left, top, right image.Point, c color.Color) {
	height := left.Y - top.Y
	if height <= 0 {
		return
	}

	for y := top.Y; y <= left.Y; y++ {
		t := float64(y-top.Y) / float64(height)
		x0 := top.X + int(t*float64(left.X-top.X))
		x1 := top.X + int(t*float64(right.X-top.X))

		fill(img, image.Rect(x0, y, x1+1, y+1), c)
		img.Set(x0, y, outline)
		img.Set(x1, y, outline)
	}

	fill(img, image.Rect(left.X, left.Y, right.X+1, left.Y+1), outline)
}
