package wxicons

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTiming_Parse(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want int
	}{
		{"seconds", `<svg><animateTransform attributeName="transform" dur="3s" repeatCount="indefinite"/></svg>`, 3000},
		{"milliseconds", `<svg><animate dur="500ms"/></svg>`, 500},
		{"fractional seconds", `<svg><animate attributeName="opacity" dur="1.5s"/></svg>`, 1500},
		{"rounded milliseconds", `<svg><animate dur="2.5ms"/></svg>`, 3},
		{"bare number", `<svg><animate dur='4'/></svg>`, 4000},
		{"css", `<svg><style>.a{animation-duration: 6s; animation-name: spin}</style></svg>`, 6000},
		{"first wins", `<svg><animate dur="3s"/><animate dur="1s"/></svg>`, 3000},
		{"multi line element", "<svg><animateTransform\n  type=\"rotate\"\n  dur=\"6s\"/></svg>", 6000},
		{"prefixed attribute", `<svg><animate data-dur="9s" dur="1s"/></svg>`, 1000},
		{"only prefixed attribute", `<svg><animate data-dur="9s"/></svg>`, DefaultCycleMs},
		{"no animation", `<svg><rect width="10" height="10"/></svg>`, DefaultCycleMs},
		{"indefinite", `<svg><animate dur="indefinite"/></svg>`, DefaultCycleMs},
		{"zero", `<svg><animate dur="0s"/></svg>`, DefaultCycleMs},
		{"negative", `<svg><animate dur="-2s"/></svg>`, DefaultCycleMs},
		{"empty", `<svg><animate dur=""/></svg>`, DefaultCycleMs},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseTiming([]byte(tc.src)).CycleMs; got != tc.want {
				t.Errorf("Expected %d ms. Got %d", tc.want, got)
			}
		})
	}
}

func TestTiming_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rain.svg")
	if err := os.WriteFile(path, []byte(`<svg><animate dur="1200ms"/></svg>`), 0644); err != nil {
		t.Fatal(err)
	}

	timing, err := ReadTiming(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if timing.CycleMs != 1200 {
		t.Errorf("Expected 1200 ms. Got %d", timing.CycleMs)
	}

	timing, err = ReadTiming(filepath.Join(dir, "missing.svg"))
	if err == nil {
		t.Errorf("Expected an error for a missing source")
	}
	if timing.CycleMs != DefaultCycleMs {
		t.Errorf("Expected the default cycle on read failure. Got %d", timing.CycleMs)
	}
}
