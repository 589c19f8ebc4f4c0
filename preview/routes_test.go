package preview

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vortitron/wxicons"
)

func testTable() *wxicons.Table {
	packer := wxicons.DefaultPacker()
	frame := func(lit bool) wxicons.MonoFrame {
		f := wxicons.NewMonoFrame(packer.Capacity)
		if lit {
			f.Bytes()[0] = 0x01
		}
		return f
	}
	rec := func(cond string, v wxicons.Variant, n int) wxicons.AssetRecord {
		r := wxicons.AssetRecord{
			Condition:    cond,
			Variant:      v,
			ID:           wxicons.Identifier(wxicons.Key(cond, v)),
			CycleMs:      2000,
			FrameDelayMs: 2000 / n,
		}
		for i := 0; i < n; i++ {
			r.Frames = append(r.Frames, frame(i == 0))
		}
		return r
	}
	return &wxicons.Table{Records: []wxicons.AssetRecord{
		rec("cloudy", wxicons.NoVariant, 4),
		rec("partlycloudy", wxicons.Day, 2),
		rec("partlycloudy", wxicons.Night, 3),
	}}
}

func TestHealth(t *testing.T) {
	app := NewApp(NewStore(), wxicons.DefaultPacker())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestNotReady(t *testing.T) {
	app := NewApp(NewStore(), wxicons.DefaultPacker())

	for _, path := range []string{
		"/api/v1/manifest",
		"/api/v1/resolve?condition=cloudy",
		"/api/v1/icons/cloudy/frames/0",
		"/api/v1/types/1/frames/0",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusServiceUnavailable, resp.StatusCode)
		}
	}
}

func TestResolve(t *testing.T) {
	table := testTable()
	store := NewStore()
	store.Set(table, wxicons.BuildManifest(table, wxicons.ManifestOptions{}))
	app := NewApp(store, wxicons.DefaultPacker())

	cases := []struct {
		query  string
		status int
		id     string
		frames int
	}{
		{"condition=partlycloudy&day=false", http.StatusOK, "partlycloudy_night", 3},
		{"condition=partlycloudy&day=true", http.StatusOK, "partlycloudy_day", 2},
		{"condition=hail&day=true", http.StatusOK, "cloudy", 4},
		{"text=Partly+cloudy+skies&day=true", http.StatusOK, "partlycloudy_day", 2},
		{"day=true", http.StatusBadRequest, "", 0},
		{"condition=cloudy&day=maybe", http.StatusBadRequest, "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/resolve?"+tc.query, nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
			if tc.status != http.StatusOK {
				return
			}
			var body iconResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("could not decode response: %v", err)
			}
			if body.ID != tc.id {
				t.Errorf("expected icon %s, got %s", tc.id, body.ID)
			}
			if len(body.Frames) != tc.frames {
				t.Errorf("expected %d frames, got %d", tc.frames, len(body.Frames))
			}
		})
	}
}

func TestFrames(t *testing.T) {
	table := testTable()
	store := NewStore()
	store.Set(table, wxicons.BuildManifest(table, wxicons.ManifestOptions{}))
	packer := wxicons.DefaultPacker()
	app := NewApp(store, packer)

	cases := []struct {
		path   string
		status int
	}{
		{"/api/v1/icons/cloudy/frames/0", http.StatusOK},
		{"/api/v1/icons/cloudy/frames/4", http.StatusNotFound},
		{"/api/v1/icons/unknown/frames/0", http.StatusNotFound},
		{"/api/v1/types/cloudy/frames/0", http.StatusOK},
		// no rain record: falls back to the first cloudy frame
		{"/api/v1/types/2/frames/7", http.StatusOK},
		{"/api/v1/types/hurricane/frames/0", http.StatusBadRequest},
		{"/api/v1/types/1/frames/x", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
			if tc.status != http.StatusOK {
				return
			}
			img, err := png.Decode(resp.Body)
			if err != nil {
				t.Fatalf("could not decode frame: %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, packer.Width, packer.Height) {
				t.Errorf("unexpected frame bounds %v", img.Bounds())
			}
			// only the first frame of each record has its top left pixel lit
			r, _, _, _ := img.At(0, 0).RGBA()
			if r != 0 {
				t.Errorf("expected the top left pixel to be lit")
			}
		})
	}
}

func TestManifest(t *testing.T) {
	table := testTable()
	store := NewStore()
	store.Set(table, wxicons.BuildManifest(table, wxicons.ManifestOptions{BaseURL: "http://icons.local"}))
	app := NewApp(store, wxicons.DefaultPacker())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/manifest", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m wxicons.Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("could not decode manifest: %v", err)
	}
	if got := m.TFT["partlycloudy-night"]; got != "http://icons.local/tft_animated/partlycloudy-night.gif" {
		t.Errorf("unexpected TFT url %q", got)
	}
	if n := len(m.OLED["cloudy"]); n != 4 {
		t.Errorf("expected 4 OLED frames, got %d", n)
	}
}
