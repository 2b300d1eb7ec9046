// Package overlay rasterizes the title card that the transcoder fades in
// over the opening seconds of the output video.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth  = 1080
	canvasHeight = 1920

	// The bitmap face is drawn small and scaled up. Face7x13 is 13px tall,
	// so a factor of 4 lands near a 52px cap height on the canvas.
	textScale = 4

	maxLineChars = 24
	maxLines     = 3

	boxPadding = 24
	boxTop     = 280
)

var (
	textColor = color.RGBA{255, 255, 255, 255}
	boxColor  = color.RGBA{0, 0, 0, 200}
)

type Renderer struct{}

func New() *Renderer { return &Renderer{} }

// Render produces a transparent full-frame PNG with the wrapped title in a
// dark box near the top, clear of the vertical caption area.
func (r *Renderer) Render(title string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("overlay: empty title")
	}

	lines := wrapTitle(title, maxLineChars)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if len(last) > 3 {
			lines[maxLines-1] = last[:len(last)-3] + "..."
		}
	}

	text := renderLines(lines)

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))

	scaledW := text.Bounds().Dx() * textScale
	scaledH := text.Bounds().Dy() * textScale
	left := (canvasWidth - scaledW) / 2

	box := image.Rect(left-boxPadding, boxTop-boxPadding, left+scaledW+boxPadding, boxTop+scaledH+boxPadding)
	fillRect(canvas, box, boxColor)

	target := image.Rect(left, boxTop, left+scaledW, boxTop+scaledH)
	xdraw.NearestNeighbor.Scale(canvas, target, text, text.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// renderLines draws the wrapped lines centered on a transparent bitmap at
// the base face size.
func renderLines(lines []string) *image.RGBA {
	face := basicfont.Face7x13

	width := 0
	for _, l := range lines {
		if w := len(l) * face.Advance; w > width {
			width = w
		}
	}
	lineHeight := face.Height + 2
	height := lineHeight * len(lines)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	for i, l := range lines {
		w := len(l) * face.Advance
		d.Dot = fixed.P((width-w)/2, i*lineHeight+face.Ascent)
		d.DrawString(l)
	}
	return img
}

func wrapTitle(title string, limit int) []string {
	words := strings.Fields(title)
	var lines []string
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
			continue
		}
		if len(cur)+1+len(w) > limit {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
