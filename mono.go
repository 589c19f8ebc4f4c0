package wxicons

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Default display geometry.
const (
	TFTWidth  = 240
	TFTHeight = 240

	OLEDWidth  = 128
	OLEDHeight = 64

	// FrameCapacity is the byte size of one packed OLED frame.
	FrameCapacity = 1024

	// LumaThreshold separates lit from unlit pixels: a luminance at or below it lights the pixel.
	LumaThreshold = 128
)

// MonoFrame is a packed 1-bit frame of fixed capacity. Bit writes outside
// the capacity are discarded, the buffer never grows.
type MonoFrame struct {
	data []byte
}

// NewMonoFrame returns a zeroed frame of capacity bytes.
func NewMonoFrame(capacity int) MonoFrame {
	if capacity < 0 {
		capacity = 0
	}
	return MonoFrame{data: make([]byte, capacity)}
}

// Bytes returns the packed frame data.
func (f MonoFrame) Bytes() []byte { return f.data }

// Len returns the frame capacity in bytes.
func (f MonoFrame) Len() int { return len(f.data) }

// set lights the bit of byte index. It reports false if the index is out of capacity.
func (f MonoFrame) set(index int, bit uint) bool {
	if index < 0 || index >= len(f.data) {
		return false
	}
	f.data[index] |= 1 << bit
	return true
}

// Bit reports whether the pixel at (x, y) is lit in a frame of the given width.
func (f MonoFrame) Bit(x, y, width int) bool {
	idx := (y/8)*width + x
	if x < 0 || y < 0 || x >= width || idx >= len(f.data) {
		return false
	}
	return f.data[idx]&(1<<uint(y%8)) != 0
}

// Packer converts raster frames into the page-major monochrome layout used by
// SSD1306-style displays: each byte holds 8 vertically stacked pixels.
type Packer struct {
	Width    int
	Height   int
	Capacity int
}

// DefaultPacker returns the packer for the 128x64 OLED panel.
func DefaultPacker() Packer {
	return Packer{Width: OLEDWidth, Height: OLEDHeight, Capacity: FrameCapacity}
}

func (p Packer) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid packer geometry %dx%d", p.Width, p.Height)
	}
	if p.Capacity <= 0 {
		return fmt.Errorf("invalid frame capacity %d", p.Capacity)
	}
	return nil
}

// Pack converts img into a monochrome frame of exactly Capacity bytes.
// Transparent areas are flattened onto white, so they stay unlit.
func (p Packer) Pack(img image.Image) (MonoFrame, error) {
	if err := p.validate(); err != nil {
		return MonoFrame{}, err
	}
	if img == nil || img.Bounds().Empty() {
		return MonoFrame{}, errors.New("empty source image")
	}

	b := img.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
	gray := imaging.Grayscale(flat)
	res := imaging.Resize(gray, p.Width, p.Height, imaging.Lanczos)

	frame := NewMonoFrame(p.Capacity)
	for y := 0; y < p.Height; y++ {
		row := y * res.Stride
		for x := 0; x < p.Width; x++ {
			if res.Pix[row+x*4] > LumaThreshold {
				continue
			}
			frame.set((y/8)*p.Width+x, uint(y%8))
		}
	}
	return frame, nil
}

// Unpack renders a packed frame back into a grayscale image: lit pixels are black
// on a white background, pixels beyond the frame capacity stay white.
func (p Packer) Unpack(f MonoFrame) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if f.Bit(x, y, p.Width) {
				dst.Pix[y*dst.Stride+x] = 0
			}
		}
	}
	return dst
}
