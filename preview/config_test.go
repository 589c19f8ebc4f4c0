package preview

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("WXICONS_ROOT", "/srv/weather-icons")
	t.Setenv("WXICONS_FRAMES", "12")
	t.Setenv("WXICONS_REBUILD_INTERVAL", "30m")
	t.Setenv("WXICONS_STATIC", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IconRoot != "/srv/weather-icons" {
		t.Errorf("unexpected icon root %q", cfg.IconRoot)
	}
	if cfg.Frames != 12 {
		t.Errorf("expected 12 frames, got %d", cfg.Frames)
	}
	if cfg.RebuildInterval != 30*time.Minute {
		t.Errorf("expected a 30m interval, got %v", cfg.RebuildInterval)
	}
	if cfg.Static {
		t.Errorf("static mode should be off by default")
	}
	if cfg.Port != "8080" {
		t.Errorf("expected the default port, got %q", cfg.Port)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing root":     {"WXICONS_ROOT": ""},
		"invalid interval": {"WXICONS_ROOT": "/icons", "WXICONS_REBUILD_INTERVAL": "often"},
		"invalid static":   {"WXICONS_ROOT": "/icons", "WXICONS_STATIC": "sometimes"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("WXICONS_REBUILD_INTERVAL", "")
			t.Setenv("WXICONS_STATIC", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}
