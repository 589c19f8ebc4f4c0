package wxicons

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vortitron/wxicons/utils"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSourceNotFound is reported for a canonical icon without a source file.
	ErrSourceNotFound = errors.New("source icon not found")
	// ErrNoFrames is reported for an icon which produced no usable frame.
	ErrNoFrames = errors.New("no frames produced")
	// ErrNoSources is returned when not a single icon could be built.
	ErrNoSources = errors.New("no usable icon sources")
	// ErrRasterizerUnavailable is returned when the selected rasterizer cannot run.
	ErrRasterizerUnavailable = errors.New("rasterizer unavailable")
)

// maxFrames bounds the frame count so it fits the uint8 count of the generated tables.
const maxFrames = 255

// AssetRecord is the processed form of one (condition, variant) pair.
type AssetRecord struct {
	Condition    string
	Variant      Variant
	ID           string
	SourceName   string
	CycleMs      int
	FrameDelayMs int
	Frames       []MonoFrame
	// Raster holds the full colour frames used for the TFT output.
	Raster []image.Image
}

// Key returns the composite manifest key of the record.
func (r *AssetRecord) Key() string {
	return Key(r.Condition, r.Variant)
}

// Skip records an icon left out of the table and the reason.
type Skip struct {
	Key string
	Err error
}

// Report collects the non fatal problems met while building the table.
type Report struct {
	Skipped  []Skip
	Warnings []error
}

// Builder builds the asset table from an icon source root.
type Builder struct {
	// Root is the icon repository root. Sources are read from Root/production/<Style>/svg.
	Root  string
	Style string

	Frames     int
	TFTWidth   int
	TFTHeight  int
	Packer     Packer
	Rasterizer Rasterizer

	// Workers sets the number of icons processed concurrently. Values below 2 process sequentially.
	Workers int
}

// NewBuilder returns a builder with the default display geometry and the in-process SVG rasterizer.
func NewBuilder(root string) *Builder {
	return &Builder{
		Root:       root,
		Style:      "line",
		Frames:     DefaultFrameCount,
		TFTWidth:   TFTWidth,
		TFTHeight:  TFTHeight,
		Packer:     DefaultPacker(),
		Rasterizer: SVGRasterizer{},
	}
}

func (b *Builder) validate() error {
	if b.Root == "" {
		return errors.New("icon root is not set")
	}
	if b.Frames < 1 || b.Frames > maxFrames {
		return fmt.Errorf("frame count must be between 1 and %d, got %d", maxFrames, b.Frames)
	}
	if b.TFTWidth <= 0 || b.TFTHeight <= 0 {
		return fmt.Errorf("invalid TFT geometry %dx%d", b.TFTWidth, b.TFTHeight)
	}
	if b.Rasterizer == nil {
		return ErrRasterizerUnavailable
	}
	return b.Packer.validate()
}

// SourcePath returns the path of the named source icon.
func (b *Builder) SourcePath(name string) string {
	style := b.Style
	if style == "" {
		style = "line"
	}
	return filepath.Join(b.Root, "production", style, "svg", name+".svg")
}

// job is one (condition, variant) pair scheduled for processing.
type job struct {
	cond    Condition
	variant Variant
	source  string
}

// outcome is the result of processing one job.
type outcome struct {
	record   *AssetRecord
	skip     *Skip
	warnings []error
}

func (b *Builder) jobs() []job {
	var jobs []job
	for _, c := range Conditions {
		for _, v := range c.Variants() {
			src, _ := c.SourceName(v)
			jobs = append(jobs, job{cond: c, variant: v, source: src})
		}
	}
	return jobs
}

// Build processes every canonical (condition, variant) pair and returns the
// resulting table. Icons which cannot be processed are skipped and listed in
// the report. It fails only on invalid options, cancellation, or when no icon
// could be built at all.
func (b *Builder) Build(ctx context.Context) (*Table, *Report, error) {
	if err := b.validate(); err != nil {
		return nil, nil, err
	}
	fi, err := os.Stat(b.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid icon root: %w", err)
	}
	if !fi.IsDir() {
		return nil, nil, fmt.Errorf("invalid icon root: %s is not a directory", b.Root)
	}

	jobs := b.jobs()
	outcomes := make([]outcome, len(jobs))

	if b.Workers < 2 {
		for i, j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			outcomes[i] = b.process(ctx, j)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(utils.Min(b.Workers, len(jobs)))
		for i, j := range jobs {
			i, j := i, j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				// Each goroutine owns its slot, the slice keeps canonical order.
				outcomes[i] = b.process(gctx, j)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	table := &Table{}
	report := &Report{}
	for _, o := range outcomes {
		report.Warnings = append(report.Warnings, o.warnings...)
		if o.skip != nil {
			report.Skipped = append(report.Skipped, *o.skip)
			continue
		}
		table.Records = append(table.Records, *o.record)
	}
	if len(table.Records) == 0 {
		return table, report, ErrNoSources
	}
	return table, report, nil
}

func (b *Builder) process(ctx context.Context, j job) outcome {
	key := Key(j.cond.Name, j.variant)
	path := b.SourcePath(j.source)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		} else {
			err = fmt.Errorf("unable to access the source icon: %w", err)
		}
		return outcome{skip: &Skip{Key: key, Err: err}}
	}

	rec, warnings, err := b.BuildRecord(ctx, j.cond.Name, j.variant, path)
	if err != nil {
		return outcome{skip: &Skip{Key: key, Err: err}, warnings: warnings}
	}
	return outcome{record: rec, warnings: warnings}
}

// BuildRecord processes a single vector source into an asset record. The returned
// warnings describe dropped frames and timing fallbacks.
func (b *Builder) BuildRecord(ctx context.Context, condition string, v Variant, path string) (*AssetRecord, []error, error) {
	key := Key(condition, v)

	var warnings []error
	timing, err := ReadTiming(path)
	if err != nil {
		warnings = append(warnings, fmt.Errorf("%s: %w", key, err))
	}

	sampler := &Sampler{Rasterizer: b.Rasterizer, Frames: b.Frames}
	frames, frameErrs, err := sampler.Sample(ctx, path, timing, b.TFTWidth, b.TFTHeight)
	for _, fe := range frameErrs {
		warnings = append(warnings, fmt.Errorf("%s: %w", key, fe))
	}
	if err != nil {
		return nil, warnings, fmt.Errorf("rasterizing %s: %w", key, err)
	}

	rec := &AssetRecord{
		Condition:  condition,
		Variant:    v,
		ID:         Identifier(key),
		SourceName: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		CycleMs:    timing.CycleMs,
	}
	for _, f := range frames {
		mono, err := b.Packer.Pack(f.Image)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", key, &FrameError{Index: f.Index, Err: err}))
			continue
		}
		rec.Frames = append(rec.Frames, mono)
		rec.Raster = append(rec.Raster, f.Image)
	}
	if len(rec.Frames) == 0 {
		return nil, warnings, fmt.Errorf("%s: %w", key, ErrNoFrames)
	}
	rec.FrameDelayMs = timing.CycleMs / len(rec.Frames)

	return rec, warnings, nil
}
