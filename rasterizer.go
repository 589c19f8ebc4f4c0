package wxicons

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

// Rasterizer converts the vector source at path into a raster image of exactly width x height pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, width, height int) (image.Image, error)
}

// FrameRasterizer is a Rasterizer able to render the source at a given point of its animation timeline.
type FrameRasterizer interface {
	Rasterizer
	RasterizeAt(ctx context.Context, path string, width, height int, at time.Duration) (image.Image, error)
}

// SVGRasterizer renders SVG documents in process. It ignores animation elements,
// so every render shows the document at rest.
type SVGRasterizer struct {
	// Strict makes unsupported SVG elements an error instead of silently skipping them.
	Strict bool
}

// Rasterize implements the Rasterizer interface.
func (r SVGRasterizer) Rasterize(ctx context.Context, path string, width, height int) (img image.Image, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := oksvg.IgnoreErrorMode
	if r.Strict {
		mode = oksvg.StrictErrorMode
	}
	icon, err := oksvg.ReadIcon(path, mode)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	// The parser panics on some malformed path data.
	defer func() {
		if e := recover(); e != nil {
			img, err = nil, fmt.Errorf("could not render %s: %v", path, e)
		}
	}()

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	return dst, nil
}

// DefaultCommandTimeout bounds a single invocation of an external rasterizer.
const DefaultCommandTimeout = 30 * time.Second

// commandWaitDelay is how long a killed command may keep its output pipes open.
const commandWaitDelay = time.Second

// ExecRasterizer renders through an external command line rasterizer, by default
// inkscape. It supports per-frame rendering through the --export-frame option.
type ExecRasterizer struct {
	Command string
	Timeout time.Duration
	// TempDir holds the intermediate render files. The system temp dir is used when empty.
	TempDir string
}

func (r *ExecRasterizer) command() string {
	if r.Command == "" {
		return "inkscape"
	}
	return r.Command
}

// Check reports whether the external command can be found.
func (r *ExecRasterizer) Check() error {
	if _, err := exec.LookPath(r.command()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRasterizerUnavailable, r.command(), err)
	}
	return nil
}

// Rasterize implements the Rasterizer interface.
func (r *ExecRasterizer) Rasterize(ctx context.Context, path string, width, height int) (image.Image, error) {
	return r.render(ctx, path, width, height, nil)
}

// RasterizeAt implements the FrameRasterizer interface.
func (r *ExecRasterizer) RasterizeAt(ctx context.Context, path string, width, height int, at time.Duration) (image.Image, error) {
	return r.render(ctx, path, width, height, &at)
}

func (r *ExecRasterizer) render(ctx context.Context, path string, width, height int, at *time.Duration) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	tmp, err := os.CreateTemp(r.TempDir, "wxicons-*.png")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}
	out := tmp.Name()
	tmp.Close()
	defer os.Remove(out)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--export-type=png",
		"--export-filename=" + out,
		"--export-width=" + strconv.Itoa(width),
		"--export-height=" + strconv.Itoa(height),
		"--export-background-opacity=0",
	}
	if at != nil {
		args = append(args, "--export-frame="+strconv.FormatFloat(at.Seconds(), 'f', 3, 64))
	}
	args = append(args, path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command(), args...)
	cmd.Stderr = &stderr
	// Launchers such as the snap and flatpak wrappers fork the real renderer,
	// so the whole process group is killed and the stderr pipe is not waited on forever.
	killProcessGroup(cmd)
	cmd.WaitDelay = commandWaitDelay
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %v", r.command(), timeout)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", r.command(), err, strings.TrimSpace(stderr.String()))
	}

	img, err := decodeImg(out)
	if err != nil {
		return nil, err
	}
	return fitExact(img, width, height), nil
}

// fitExact scales img to exactly width x height when the renderer ignored the requested size.
func fitExact(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
