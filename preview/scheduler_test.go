package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vortitron/wxicons"
)

const cloudySVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
<rect x="8" y="16" width="48" height="32" fill="#000"/>
</svg>`

func TestSchedulerRebuild(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "production", "line", "svg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cloudy.svg"), []byte(cloudySVG), 0644); err != nil {
		t.Fatal(err)
	}

	b := wxicons.NewBuilder(root)
	b.Frames = 2
	b.TFTWidth, b.TFTHeight = 64, 64
	store := NewStore()
	s := NewScheduler(b, store, wxicons.ManifestOptions{}, 0)

	if _, _, err := store.Table(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before the first build, got %v", err)
	}
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, builtAt, err := store.Table()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 1 || builtAt.IsZero() {
		t.Errorf("expected a single built record, got %d", table.Len())
	}

	// A zero interval schedules nothing.
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}

func TestSchedulerKeepsTableOnFailure(t *testing.T) {
	store := NewStore()
	prev := &wxicons.Table{Records: []wxicons.AssetRecord{{Condition: "cloudy", ID: "cloudy"}}}
	store.Set(prev, wxicons.Manifest{})

	b := wxicons.NewBuilder(t.TempDir())
	s := NewScheduler(b, store, wxicons.ManifestOptions{}, time.Hour)
	if err := s.Rebuild(context.Background()); !errors.Is(err, wxicons.ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
	table, _, _ := store.Table()
	if table != prev {
		t.Errorf("the previous table should be kept after a failed rebuild")
	}
}
