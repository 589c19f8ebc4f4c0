package wxicons

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/vortitron/wxicons/utils"
)

// Default file names and include guards of the generated firmware header.
const (
	DefaultHeaderName        = "WeatherAnimationsAnimatedIcons.h"
	DefaultHeaderGuard       = "WEATHER_ANIMATIONS_ANIMATED_ICONS_H"
	DefaultStaticHeaderName  = "WeatherAnimationsIcons.h"
	DefaultStaticHeaderGuard = "WEATHER_ANIMATIONS_ICONS_H"
)

// HeaderOptions controls the generated firmware header.
type HeaderOptions struct {
	// Prefix is prepended to every generated symbol, e.g. "animated_".
	Prefix string
	// Guard is the include guard macro.
	Guard string
	Width  int
	Height int
}

type headerFrame struct {
	Name string
	Rows []string
}

type headerRecord struct {
	Condition  string
	Variant    string
	Table      string
	Frames     []headerFrame
	FrameDelay int
}

type headerType struct {
	Macro  string
	Code   int
	Count  int
	Table  string
	Native bool
}

type headerData struct {
	Guard       string
	Width       int
	Height      int
	Capacity    int
	Prefix      string
	MacroPrefix string
	Records     []headerRecord
	Types       []headerType
	Fallback    *headerRecord
}

var headerTmpl = template.Must(template.New("header").Parse(`#ifndef {{.Guard}}
#define {{.Guard}}

#include <Arduino.h>

// Generated by wxicons. Do not edit.
// Frames are {{.Width}}x{{.Height}} pixels packed into {{.Capacity}} bytes, 8 vertical pixels per byte.
// Source icons: https://github.com/basmilius/weather-icons
{{range .Records}}
// {{.Condition}}{{if .Variant}} ({{.Variant}}){{end}}
{{range .Frames}}const uint8_t {{.Name}}[{{$.Capacity}}] PROGMEM = {
{{range .Rows}}    {{.}}
{{end}}};

{{end}}const uint8_t* {{.Table}}[{{len .Frames}}] = { {{- range $i, $f := .Frames}}{{if $i}}, {{end}}{{$f.Name}}{{end -}} };
{{end}}
struct {{.Prefix}}AnimatedIconMapping {
    const char* condition;
    const char* variant; // "day", "night" or ""
    const uint8_t** frames;
    uint8_t frameCount;
    uint16_t frameDelay; // ms
};

const {{.Prefix}}AnimatedIconMapping {{.Prefix}}animatedWeatherIcons[] = {
{{range .Records}}    {"{{.Condition}}", "{{.Variant}}", {{.Table}}, {{len .Frames}}, {{.FrameDelay}}},
{{end}}    {NULL, NULL, NULL, 0, 0}
};

const {{.Prefix}}AnimatedIconMapping* {{.Prefix}}findAnimatedWeatherIcon(const char* condition, bool isDay) {
    const char* variant = isDay ? "day" : "night";
    const {{.Prefix}}AnimatedIconMapping* icons = {{.Prefix}}animatedWeatherIcons;

    for (size_t i = 0; icons[i].condition != NULL; i++) {
        if (strcmp(icons[i].condition, condition) == 0 &&
            (icons[i].variant[0] == '\0' || strcmp(icons[i].variant, variant) == 0)) {
            return &icons[i];
        }
    }
    for (size_t i = 0; icons[i].condition != NULL; i++) {
        if (strcmp(icons[i].condition, condition) == 0) {
            return &icons[i];
        }
    }
    for (size_t i = 0; icons[i].condition != NULL; i++) {
        if (strcmp(icons[i].condition, "cloudy") == 0) {
            return &icons[i];
        }
    }
    return &icons[0];
}

{{range .Types}}#define {{$.MacroPrefix}}{{.Macro}}_FRAME_COUNT {{.Count}}
{{end}}
const uint8_t* {{.Prefix}}getAnimationFrame(uint8_t weatherType, uint8_t frameIndex) {
    switch (weatherType) {
{{range .Types}}{{if .Native}}    case {{.Code}}: // {{.Macro}}
        if (frameIndex < {{.Count}}) return {{.Table}}[frameIndex];
        break;
{{end}}{{end}}    }
    return {{.Fallback.Table}}[0];
}

uint8_t {{.Prefix}}getAnimationFrameCount(uint8_t weatherType) {
    switch (weatherType) {
{{range .Types}}{{if .Native}}    case {{.Code}}: return {{.Count}};
{{end}}{{end}}    }
    return {{len .Fallback.Frames}};
}

#endif // {{.Guard}}
`))

// hexRows formats data as C hex literals, 16 per row.
func hexRows(data []byte) []string {
	rows := make([]string, 0, (len(data)+15)/16)
	for i := 0; i < len(data); i += 16 {
		end := utils.Min(i+16, len(data))
		vals := make([]string, 0, end-i)
		for _, b := range data[i:end] {
			vals = append(vals, fmt.Sprintf("0x%02X,", b))
		}
		rows = append(rows, strings.Join(vals, " "))
	}
	return rows
}

// WriteHeader generates the firmware header embedding the packed frames of every record.
func WriteHeader(w io.Writer, t *Table, opts HeaderOptions) error {
	if t.Len() == 0 {
		return ErrNoSources
	}
	if opts.Guard == "" {
		opts.Guard = DefaultHeaderGuard
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = OLEDWidth, OLEDHeight
	}

	data := headerData{
		Guard:       opts.Guard,
		Width:       opts.Width,
		Height:      opts.Height,
		Prefix:      opts.Prefix,
		MacroPrefix: strings.ToUpper(opts.Prefix),
	}
	records := make(map[*AssetRecord]int, t.Len())
	for i := range t.Records {
		r := &t.Records[i]
		id := opts.Prefix + r.ID
		hr := headerRecord{
			Condition:  r.Condition,
			Variant:    string(r.Variant),
			Table:      id + "Frames",
			FrameDelay: utils.Clamp(r.FrameDelayMs, 0, 0xffff),
		}
		for j, f := range r.Frames {
			data.Capacity = utils.Max(data.Capacity, f.Len())
			hr.Frames = append(hr.Frames, headerFrame{
				Name: fmt.Sprintf("%sFrame%d", id, j),
				Rows: hexRows(f.Bytes()),
			})
		}
		records[r] = len(data.Records)
		data.Records = append(data.Records, hr)
	}

	fb := t.fallback()
	data.Fallback = &data.Records[records[fb]]
	for _, wt := range WeatherTypes {
		ht := headerType{Macro: wt.Macro(), Code: int(wt)}
		if r := t.weatherRecord(wt); r != nil {
			hr := data.Records[records[r]]
			ht.Table, ht.Count, ht.Native = hr.Table, len(hr.Frames), true
		} else {
			ht.Count = len(fb.Frames)
		}
		data.Types = append(data.Types, ht)
	}

	if err := headerTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("could not generate the header: %w", err)
	}
	return nil
}
