package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

var (
	// Yellow is the surface background.
	Yellow = color.RGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
	// Magenta is the ball.
	Magenta = color.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}
)

// circleSegments is enough for a smooth edge up to a few hundred pixels.
const circleSegments = 64

// Canvas rasterizes frames into images of any size. The surface is scaled
// to the destination independently on each axis.
type Canvas struct {
	Background color.Color
	Ball       color.Color
}

// NewCanvas returns the default yellow/magenta canvas.
func NewCanvas() Canvas {
	return Canvas{Background: Yellow, Ball: Magenta}
}

// Image renders f into a new RGBA image of w×h pixels.
func (c Canvas) Image(f Frame, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c.Draw(img, f)
	return img
}

// Draw clears dst to the background and paints the ball.
func (c Canvas) Draw(dst draw.Image, f Frame) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(c.Background), image.Point{}, draw.Src)

	if f.Width <= 0 || f.Height <= 0 || b.Empty() {
		return
	}

	sx := float64(b.Dx()) / f.Width
	sy := float64(b.Dy()) / f.Height
	cx := f.Position.X * sx
	cy := f.Position.Y * sy
	rx := f.Radius * sx
	ry := f.Radius * sy
	if math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(cx+rx), float32(cy))
	for i := 1; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		z.LineTo(float32(cx+rx*math.Cos(a)), float32(cy+ry*math.Sin(a)))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c.Ball), image.Point{})
}
