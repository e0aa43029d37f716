package recording

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Text layout in output pixels.
const (
	FontSize   = 60
	Padding    = 80
	LineHeight = FontSize*1.6 + 48
)

// nbsp stands in for empty lines so they keep their vertical space.
const nbsp = "\u00a0"

var errCanvasReleased = errors.New("canvas released")

// Canvas is an off-screen RGBA surface that note text is rendered onto.
type Canvas struct {
	mu       sync.RWMutex
	img      *image.RGBA
	face     font.Face
	ascent   fixed.Int26_6
	released bool
}

// NewCanvas allocates a width x height canvas and loads the text face.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		face:   face,
		ascent: face.Metrics().Ascent,
	}, nil
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Scale returns the uniform factor that fits a srcW x srcH surface into
// the canvas. Non-positive source sizes yield 1.
func (c *Canvas) Scale(srcW, srcH int) float64 {
	if srcW <= 0 || srcH <= 0 {
		return 1
	}
	w, h := c.Size()
	return min(float64(w)/float64(srcW), float64(h)/float64(srcH))
}

// Render paints the canvas white and draws text one line per row at the
// fixed font size, padding and line height. It returns the scale factor of
// the source surface.
func (c *Canvas) Render(text string, srcW, srcH int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return 0, errCanvasReleased
	}
	scale := c.Scale(srcW, srcH)

	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(color.Black),
		Face: c.face,
	}
	_, height := c.Size()
	y := float64(Padding)
	for _, line := range strings.Split(text, "\n") {
		if y > float64(height) {
			break
		}
		if line == "" {
			line = nbsp
		}
		d.Dot = fixed.Point26_6{
			X: fixed.I(Padding),
			Y: fixed.Int26_6(y*64) + c.ascent,
		}
		d.DrawString(line)
		y += LineHeight
	}
	return scale, nil
}

// CopyFrame copies the current pixels into dst, growing it as needed.
func (c *Canvas) CopyFrame(dst []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.released {
		return dst, errCanvasReleased
	}
	if cap(dst) < len(c.img.Pix) {
		dst = make([]byte, len(c.img.Pix))
	}
	dst = dst[:len(c.img.Pix)]
	copy(dst, c.img.Pix)
	return dst, nil
}

// At returns the color of one pixel.
func (c *Canvas) At(x, y int) color.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.RGBAAt(x, y)
}

// Release frees the face and marks the canvas unusable.
func (c *Canvas) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return
	}
	c.released = true
	c.face.Close()
}
