package wxicons

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vortitron/wxicons/utils"
	"golang.org/x/image/bmp"
)

// decodeImg decodes an image file to type image.Image
func decodeImg(src string) (image.Image, error) {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, fmt.Errorf("could not read the rendered frame: %w", err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("the rendered frame is not an image: %s", ctype)
	}

	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the rendered frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode the rendered frame: %w", err)
	}

	return img, nil
}

// encodeImg encodes an image to a destination of type io.Writer. The format is
// selected from the file extension, PNG is used for anything else than a file.
func encodeImg(w io.Writer, img image.Image) error {
	switch w := w.(type) {
	case *os.File:
		ext := strings.ToLower(filepath.Ext(w.Name()))
		switch ext {
		case "", ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return errors.New("unsupported image format")
		}
	default:
		return png.Encode(w, img)
	}
}

// saveImg writes img to the named file.
func saveImg(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	if err := encodeImg(f, img); err != nil {
		f.Close()
		os.Remove(name)
		return fmt.Errorf("could not encode %s: %w", filepath.Base(name), err)
	}
	return f.Close()
}

// gifPalette is the web safe palette extended with full transparency at index 0.
var gifPalette = append(color.Palette{color.Transparent}, palette.WebSafe...)

// encodeAnimation encodes the frames as a looping GIF. The delay is in
// milliseconds and is converted to the GIF centisecond unit, never below 2cs.
func encodeAnimation(w io.Writer, frames []image.Image, delayMs int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	delay := utils.Max(2, delayMs/10)

	anim := &gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		src := imgToNRGBA(frame)
		dst := image.NewPaletted(src.Bounds(), gifPalette)
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, image.Point{})

		anim.Image = append(anim.Image, dst)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, anim)
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.Gray:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				y := src.Pix[src.PixOffset(srcMinX+dstX, srcMinY+dstY)]
				dst.Pix[di+0] = y
				dst.Pix[di+1] = y
				dst.Pix[di+2] = y
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
