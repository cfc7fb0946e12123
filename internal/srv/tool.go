package srv

import (
	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"image"
	"image/color"
)

const (
	SCREEN_WIDTH  = 128
	SCREEN_HEIGHT = 64
	CHAR_WIDTH    = 6
)

var col = color.RGBA{255, 255, 255, 255}
var uniformImage = image.NewUniform(col)

func newScreen() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, SCREEN_WIDTH, SCREEN_HEIGHT))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 255}}, image.Point{}, draw.Src)
	return img
}

func AddLabel(img draw.Image, x, y int, label string) {

	point := fixed.Point26_6{X: fixed.Int26_6((x + 4) * 64), Y: fixed.Int26_6(y * 64)}

	d := &font.Drawer{
		Dst:  img,
		Src:  uniformImage,
		Face: bitmapfont.Face,
		Dot:  point,
	}
	d.DrawString(label)
}

func AddCenteredLabel(img draw.Image, y int, label string) {
	AddLabel(img, (SCREEN_WIDTH-len(label)*CHAR_WIDTH)/2, y, label)
}

// AddScrollingLabel draws label on the baseline y, scrolling it with tick when it does
// not fit the screen. It returns true when the label scrolls.
func AddScrollingLabel(img draw.Image, y int, label string, tick int) bool {
	width := len(label) * CHAR_WIDTH
	if width <= SCREEN_WIDTH {
		AddCenteredLabel(img, y, label)
		return false
	}
	deltaX := tick % (width + 20)
	AddLabel(img, 10-deltaX, y, label)
	AddLabel(img, width+20+10-deltaX, y, label)
	return true
}

// AddBigLabel draws label centered in area, scaled up by factor.
func AddBigLabel(img draw.Image, area image.Rectangle, label string, factor int) {
	small := image.NewRGBA(image.Rect(0, 0, len(label)*CHAR_WIDTH+2, 16))
	AddLabel(small, -4, 12, label)

	width := small.Bounds().Dx() * factor
	height := small.Bounds().Dy() * factor
	origin := image.Pt(area.Min.X+(area.Dx()-width)/2, area.Min.Y+(area.Dy()-height)/2)
	draw.NearestNeighbor.Scale(img, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(width, height))}, small, small.Bounds(), draw.Over, nil)
}

// AddProgressBar draws a framed horizontal bar filled by ratio in [0, 1].
func AddProgressBar(img draw.Image, frame image.Rectangle, ratio float64) {
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	draw.Draw(img, image.Rect(frame.Min.X+1, frame.Min.Y, frame.Max.X-1, frame.Min.Y+1), uniformImage, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(frame.Min.X+1, frame.Max.Y-1, frame.Max.X-1, frame.Max.Y), uniformImage, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(frame.Min.X, frame.Min.Y+1, frame.Min.X+1, frame.Max.Y-1), uniformImage, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(frame.Max.X-1, frame.Min.Y+1, frame.Max.X, frame.Max.Y-1), uniformImage, image.Point{}, draw.Src)

	inner := frame.Inset(2)
	filled := int(float64(inner.Dx()) * ratio)
	draw.Draw(img, image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+filled, inner.Max.Y), uniformImage, image.Point{}, draw.Src)
}
