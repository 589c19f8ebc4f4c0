package wxicons

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">
<rect x="8" y="20" width="48" height="24" fill="#000000"/>
<animate attributeName="opacity" values="1;0.5;1" dur="%s" repeatCount="indefinite"/>
</svg>`

// writeSources creates a minimal icon repository holding the named line icons.
func writeSources(t *testing.T, names map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "production", "line", "svg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, dur := range names {
		src := strings.Replace(testSVG, "%s", dur, 1)
		if err := os.WriteFile(filepath.Join(dir, name+".svg"), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testBuilder(root string) *Builder {
	b := NewBuilder(root)
	b.TFTWidth, b.TFTHeight = 48, 48
	return b
}

func keys(t *Table) []string {
	var ks []string
	for i := range t.Records {
		ks = append(ks, t.Records[i].Key())
	}
	return ks
}

func TestBuilder_SkipsMissingSources(t *testing.T) {
	root := writeSources(t, map[string]string{
		"cloudy":      "2s",
		"clear-day":   "1500ms",
		"clear-night": "3s",
	})
	b := testBuilder(root)

	table, report, err := b.Build(context.Background())
	assert.NoError(t, err)
	// clear-night also backs the canonical clear-night condition.
	assert.Equal(t, []string{"clear-night", "cloudy", "sunny-day", "sunny-night"}, keys(table))
	assert.Len(t, report.Skipped, 17-4)
	for _, s := range report.Skipped {
		assert.ErrorIs(t, s.Err, ErrSourceNotFound, s.Key)
	}

	for i := range table.Records {
		r := &table.Records[i]
		assert.Len(t, r.Frames, DefaultFrameCount)
		assert.Len(t, r.Raster, DefaultFrameCount)
		assert.Equal(t, r.CycleMs/DefaultFrameCount, r.FrameDelayMs)
		for _, f := range r.Frames {
			assert.Equal(t, FrameCapacity, f.Len())
		}
	}

	cloudy := table.Resolve("cloudy", true)
	assert.Equal(t, "cloudy", cloudy.ID)
	assert.Equal(t, "cloudy", cloudy.SourceName)
	assert.Equal(t, 2000, cloudy.CycleMs)
	assert.Equal(t, 200, cloudy.FrameDelayMs)

	day := table.Resolve("sunny", true)
	assert.Equal(t, "sunny_day", day.ID)
	assert.Equal(t, 150, day.FrameDelayMs)

	// The packed frames carry the drawn rectangle.
	lit := false
	for _, b := range cloudy.Frames[0].Bytes() {
		if b != 0 {
			lit = true
			break
		}
	}
	assert.True(t, lit, "the first cloudy frame should have lit pixels")
}

func TestBuilder_EndToEndScenario(t *testing.T) {
	root := writeSources(t, map[string]string{
		"cloudy":            "2s",
		"clear-day":         "2s",
		"partly-cloudy-day": "2s",
	})
	b := testBuilder(root)
	b.Frames = 2

	table, _, err := b.Build(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, "cloudy", table.Resolve("rainy", true).Key())
	assert.Equal(t, "sunny-day", table.Resolve("sunny", false).Key())
	assert.Equal(t, "partlycloudy-day", table.Resolve("partlycloudy", false).Key())
}

func TestBuilder_ParallelKeepsCanonicalOrder(t *testing.T) {
	names := map[string]string{}
	for _, c := range Conditions {
		for _, v := range c.Variants() {
			src, _ := c.SourceName(v)
			names[src] = "1s"
		}
	}
	root := writeSources(t, names)

	seq := testBuilder(root)
	seq.Frames = 2
	want, _, err := seq.Build(context.Background())
	assert.NoError(t, err)
	assert.Len(t, want.Records, 17)

	par := testBuilder(root)
	par.Frames = 2
	par.Workers = 6
	got, report, err := par.Build(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, keys(want), keys(got))
	for i := range want.Records {
		assert.Equal(t, want.Records[i].Frames, got.Records[i].Frames)
	}
}

// pathRasterizer fails for sources whose path contains fail.
type pathRasterizer struct {
	staticRasterizer
	fail string
}

func (r *pathRasterizer) Rasterize(ctx context.Context, path string, width, height int) (image.Image, error) {
	if strings.Contains(path, r.fail) {
		return nil, errors.New("rasterizer crashed")
	}
	return r.staticRasterizer.Rasterize(ctx, path, width, height)
}

func TestBuilder_RasterizerFailureSkipsIcon(t *testing.T) {
	root := writeSources(t, map[string]string{"cloudy": "2s", "fog": "2s", "hail": "2s"})
	b := testBuilder(root)
	b.Rasterizer = &pathRasterizer{fail: "fog"}

	table, report, err := b.Build(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"cloudy", "hail"}, keys(table))

	var fog *Skip
	for i := range report.Skipped {
		if report.Skipped[i].Key == "fog" {
			fog = &report.Skipped[i]
		}
	}
	if assert.NotNil(t, fog) {
		assert.False(t, errors.Is(fog.Err, ErrSourceNotFound))
		assert.Contains(t, fog.Err.Error(), "rasterizer crashed")
	}
}

func TestBuilder_FrameDelayUsesProducedFrames(t *testing.T) {
	root := writeSources(t, map[string]string{"cloudy": "2s"})
	ts := Timestamps(2*time.Second, 10)
	b := testBuilder(root)
	b.Rasterizer = &timelineRasterizer{fail: map[time.Duration]bool{ts[3]: true, ts[7]: true}}

	table, report, err := b.Build(context.Background())
	assert.NoError(t, err)
	r := table.Resolve("cloudy", true)
	assert.Len(t, r.Frames, 8)
	assert.Equal(t, 250, r.FrameDelayMs)
	assert.Len(t, report.Warnings, 2)
}

func TestBuilder_FatalErrors(t *testing.T) {
	_, _, err := testBuilder(t.TempDir()).Build(context.Background())
	assert.ErrorIs(t, err, ErrNoSources)

	_, _, err = testBuilder(filepath.Join(t.TempDir(), "missing")).Build(context.Background())
	assert.Error(t, err)

	b := testBuilder(t.TempDir())
	b.Frames = 0
	_, _, err = b.Build(context.Background())
	assert.Error(t, err)

	b = testBuilder(t.TempDir())
	b.Rasterizer = nil
	_, _, err = b.Build(context.Background())
	assert.ErrorIs(t, err, ErrRasterizerUnavailable)

	root := writeSources(t, map[string]string{"cloudy": "2s"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = testBuilder(root).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_UnreadableSourceIsNotMissing(t *testing.T) {
	root := t.TempDir()
	styleDir := filepath.Join(root, "production", "line")
	if err := os.MkdirAll(styleDir, 0755); err != nil {
		t.Fatal(err)
	}
	// A file in place of the svg directory makes every stat fail with ENOTDIR.
	if err := os.WriteFile(filepath.Join(styleDir, "svg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, report, err := testBuilder(root).Build(context.Background())
	assert.ErrorIs(t, err, ErrNoSources)
	if assert.NotEmpty(t, report.Skipped) {
		for _, s := range report.Skipped {
			assert.False(t, errors.Is(s.Err, ErrSourceNotFound), s.Key)
			assert.Contains(t, s.Err.Error(), "unable to access the source icon")
		}
	}
}
