package wxicons

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultBaseURL is the location the generated assets are published under.
const DefaultBaseURL = "https://raw.githubusercontent.com/vortitron/weather-icons/main/production"

// Output directories, relative to the production directory of the icon root.
const (
	TFTAnimatedDir  = "tft_animated"
	OLEDAnimatedDir = "oled_animated"
	TFTStaticDir    = "tft"
	OLEDStaticDir   = "oled"
)

// Manifest maps every composite key to the URLs of its published assets.
type Manifest struct {
	TFT  map[string]string   `json:"tft"`
	OLED map[string][]string `json:"oled"`
}

// ManifestOptions controls the URL layout of the manifest.
type ManifestOptions struct {
	BaseURL string
	Static  bool
	// FrameExt is the file extension of the OLED preview frames, "png" by default.
	FrameExt string
}

// TFTFile returns the file name of the TFT asset of a key.
func TFTFile(key string, static bool) string {
	if static {
		return key + ".png"
	}
	return key + ".gif"
}

// OLEDFile returns the file name of the OLED frame i of a key.
// Static icons have a single frame and no index suffix.
func OLEDFile(key string, i int, static bool, ext string) string {
	if ext == "" {
		ext = "png"
	}
	if static {
		return key + "." + ext
	}
	return fmt.Sprintf("%s_frame_%03d.%s", key, i, ext)
}

// TFTDir returns the TFT output directory for the mode.
func TFTDir(static bool) string {
	if static {
		return TFTStaticDir
	}
	return TFTAnimatedDir
}

// OLEDDir returns the OLED output directory for the mode.
func OLEDDir(static bool) string {
	if static {
		return OLEDStaticDir
	}
	return OLEDAnimatedDir
}

// BuildManifest lists the asset URLs of every record of the table.
func BuildManifest(t *Table, opts ManifestOptions) Manifest {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	m := Manifest{
		TFT:  make(map[string]string, t.Len()),
		OLED: make(map[string][]string, t.Len()),
	}
	for i := range t.Records {
		r := &t.Records[i]
		key := r.Key()
		m.TFT[key] = fmt.Sprintf("%s/%s/%s", base, TFTDir(opts.Static), TFTFile(key, opts.Static))

		n := len(r.Frames)
		if opts.Static {
			n = 1
		}
		urls := make([]string, n)
		for j := range urls {
			urls[j] = fmt.Sprintf("%s/%s/%s", base, OLEDDir(opts.Static), OLEDFile(key, j, opts.Static, opts.FrameExt))
		}
		m.OLED[key] = urls
	}
	return m
}

// Encode writes the manifest as indented JSON.
func (m Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("could not encode the manifest: %w", err)
	}
	return nil
}
