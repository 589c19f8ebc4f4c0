package wxicons

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultFrameCount is the number of frames sampled from one animation cycle.
const DefaultFrameCount = 10

// Frame is a single raster sample of an animated icon.
type Frame struct {
	Index int
	At    time.Duration
	Image image.Image
}

// FrameSet holds the frames sampled from one icon, ordered by sample index.
type FrameSet []Frame

// Images returns the raster images of the frame set in order.
func (fs FrameSet) Images() []image.Image {
	imgs := make([]image.Image, len(fs))
	for i, f := range fs {
		imgs[i] = f.Image
	}
	return imgs
}

// Timestamps returns n evenly spaced sample points over one cycle, starting at
// zero and never reaching the cycle end. A non-positive n yields no timestamps.
func Timestamps(cycle time.Duration, n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	ts := make([]time.Duration, n)
	for i := range ts {
		ts[i] = time.Duration(i) * cycle / time.Duration(n)
	}
	return ts
}

// Sampler turns a vector source into a frame set.
type Sampler struct {
	Rasterizer Rasterizer
	Frames     int
}

// FrameError describes a single frame which could not be produced.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Sample rasterizes the source at width x height once for every timestamp of the
// cycle. Frames which fail to render are dropped and returned as *FrameError values.
// A failure of the base rasterization is returned as the error and no frames are produced.
func (s *Sampler) Sample(ctx context.Context, path string, timing Timing, width, height int) (FrameSet, []error, error) {
	if s.Rasterizer == nil {
		return nil, nil, ErrRasterizerUnavailable
	}
	n := s.Frames
	if n <= 0 {
		n = DefaultFrameCount
	}
	ts := Timestamps(timing.Cycle(), n)

	if fr, ok := s.Rasterizer.(FrameRasterizer); ok {
		return sampleNative(ctx, fr, path, ts, width, height)
	}

	base, err := s.Rasterizer.Rasterize(ctx, path, width, height)
	if err != nil {
		return nil, nil, err
	}
	frames := make(FrameSet, 0, n)
	for i, at := range ts {
		frames = append(frames, Frame{
			Index: i,
			At:    at,
			Image: cyclicFrame(base, i, n),
		})
	}
	return frames, nil, nil
}

func sampleNative(ctx context.Context, fr FrameRasterizer, path string, ts []time.Duration, width, height int) (FrameSet, []error, error) {
	var (
		frames = make(FrameSet, 0, len(ts))
		errs   []error
	)
	for i, at := range ts {
		if err := ctx.Err(); err != nil {
			return nil, errs, err
		}
		img, err := fr.RasterizeAt(ctx, path, width, height, at)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, errs, err
			}
			errs = append(errs, &FrameError{Index: i, Err: err})
			continue
		}
		frames = append(frames, Frame{Index: i, At: at, Image: img})
	}
	if len(frames) == 0 {
		return nil, errs, ErrNoFrames
	}
	return frames, errs, nil
}

// cyclicPhase returns the vertical offset and opacity of frame i of n for an
// image of the given height. Both follow one full period over the n frames, so
// the step from the last frame back to frame 0 equals the step from frame 0 to 1.
// Frames with the same opacity sit on opposite sides of the rest position.
func cyclicPhase(i, n, height int) (int, float64) {
	progress := 0.0
	if n > 1 {
		progress = float64(i) / float64(n-1)
	}
	phase := 2 * math.Pi * progress * float64(n-1) / float64(n)

	amp := math.Max(1, float64(height)/32)
	sin := math.Sin(phase)
	dy := 0
	if math.Abs(sin) > 1e-9 {
		dy = int(math.Copysign(math.Max(1, math.Round(amp*math.Abs(sin))), sin))
	}
	return dy, 0.85 + 0.15*math.Cos(phase)
}

// cyclicFrame derives frame i of n from a static base image.
func cyclicFrame(base image.Image, i, n int) image.Image {
	b := base.Bounds()
	dy, opacity := cyclicPhase(i, n, b.Dy())

	canvas := imaging.New(b.Dx(), b.Dy(), color.NRGBA{})
	return imaging.Overlay(canvas, base, image.Pt(0, dy), opacity)
}
