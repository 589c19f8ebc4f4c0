package wxicons

import (
	"strconv"
	"strings"
)

// Variant qualifies a condition as a day or night icon.
// The empty variant is used by conditions which have a single icon.
type Variant string

const (
	NoVariant Variant = ""
	Day       Variant = "day"
	Night     Variant = "night"
)

// VariantFor returns the variant matching the day/night flag.
func VariantFor(isDay bool) Variant {
	if isDay {
		return Day
	}
	return Night
}

// FallbackCondition is the condition used when the requested one is unknown.
const FallbackCondition = "cloudy"

// DayNight holds the source icon names of a condition with day and night variants.
type DayNight struct {
	Day   string
	Night string
}

// Condition binds a canonical weather condition to its source icon names.
// A condition has either a single source or a day/night pair, never both.
type Condition struct {
	Name     string
	Single   string
	DayNight *DayNight
}

func single(name, src string) Condition {
	return Condition{Name: name, Single: src}
}

func dayNight(name, day, night string) Condition {
	return Condition{Name: name, DayNight: &DayNight{Day: day, Night: night}}
}

// Conditions is the canonical condition table. The order of the entries is
// significant: it is the tie-break order used by the condition resolver.
var Conditions = []Condition{
	single("clear-night", "clear-night"),
	single("cloudy", "cloudy"),
	single("fog", "fog"),
	single("hail", "hail"),
	single("lightning", "thunderstorms"),
	single("lightning-rainy", "thunderstorms-rain"),
	dayNight("partlycloudy", "partly-cloudy-day", "partly-cloudy-night"),
	single("pouring", "extreme-rain"),
	single("rainy", "rain"),
	single("snowy", "snow"),
	single("snowy-rainy", "sleet"),
	dayNight("sunny", "clear-day", "clear-night"),
	single("windy", "wind"),
	single("windy-variant", "extreme-wind"),
	single("exceptional", "extreme"),
}

// Variants returns the variants declared for the condition.
func (c Condition) Variants() []Variant {
	if c.DayNight != nil {
		return []Variant{Day, Night}
	}
	return []Variant{NoVariant}
}

// SourceName returns the source icon name bound to the variant.
// The second return value reports whether the variant is declared.
func (c Condition) SourceName(v Variant) (string, bool) {
	if c.DayNight == nil {
		if v == NoVariant {
			return c.Single, true
		}
		return "", false
	}
	switch v {
	case Day:
		return c.DayNight.Day, true
	case Night:
		return c.DayNight.Night, true
	}
	return "", false
}

// LookupCondition finds a canonical condition by name.
func LookupCondition(name string) (Condition, bool) {
	for _, c := range Conditions {
		if c.Name == name {
			return c, true
		}
	}
	return Condition{}, false
}

// Key returns the composite key used for file names and manifest entries:
// "condition" or "condition-variant".
func Key(condition string, v Variant) string {
	if v == NoVariant {
		return condition
	}
	return condition + "-" + string(v)
}

// Identifier converts a key into an identifier-safe form: every
// non-alphanumeric character becomes an underscore and the result is lowercased.
func Identifier(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return strings.ToLower(sb.String())
}

// WeatherType is the host library's coarse weather code.
type WeatherType uint8

const (
	WeatherClear WeatherType = iota
	WeatherCloudy
	WeatherRain
	WeatherSnow
	WeatherStorm
)

// WeatherTypes lists every weather type in code order.
var WeatherTypes = []WeatherType{WeatherClear, WeatherCloudy, WeatherRain, WeatherSnow, WeatherStorm}

// weatherTypeAssets binds each weather type to the record it plays.
var weatherTypeAssets = map[WeatherType]struct {
	condition string
	variant   Variant
}{
	WeatherClear:  {"sunny", Day},
	WeatherCloudy: {"cloudy", NoVariant},
	WeatherRain:   {"rainy", NoVariant},
	WeatherSnow:   {"snowy", NoVariant},
	WeatherStorm:  {"lightning", NoVariant},
}

// Macro returns the upper case name used for the weather type in generated code.
func (t WeatherType) Macro() string {
	switch t {
	case WeatherClear:
		return "WEATHER_CLEAR"
	case WeatherCloudy:
		return "WEATHER_CLOUDY"
	case WeatherRain:
		return "WEATHER_RAIN"
	case WeatherSnow:
		return "WEATHER_SNOW"
	case WeatherStorm:
		return "WEATHER_STORM"
	}
	return "WEATHER_UNKNOWN"
}

// ParseWeatherType parses a weather type from its numeric code or its name,
// e.g. "2", "rain" or "WEATHER_RAIN".
func ParseWeatherType(s string) (WeatherType, bool) {
	for _, t := range WeatherTypes {
		macro := t.Macro()
		if s == strconv.Itoa(int(t)) || strings.EqualFold(s, macro) ||
			strings.EqualFold(s, strings.TrimPrefix(macro, "WEATHER_")) {
			return t, true
		}
	}
	return 0, false
}

// Asset returns the condition and variant played for the weather type.
func (t WeatherType) Asset() (string, Variant, bool) {
	a, ok := weatherTypeAssets[t]
	return a.condition, a.variant, ok
}

// WeatherTypeFor maps a Home Assistant condition onto the host weather type.
// Unknown conditions map to WeatherCloudy.
func WeatherTypeFor(condition string) WeatherType {
	switch condition {
	case "clear-night", "sunny":
		return WeatherClear
	case "cloudy", "partlycloudy":
		return WeatherCloudy
	case "rainy", "pouring":
		return WeatherRain
	case "snowy", "snowy-rainy":
		return WeatherSnow
	case "lightning", "lightning-rainy":
		return WeatherStorm
	}
	return WeatherCloudy
}

// DetectCondition guesses a canonical condition from free text, such as a
// raw weather entity payload without a usable state field.
func DetectCondition(text string) string {
	s := strings.ToLower(text)
	has := func(subs ...string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}

	switch {
	case has("clear", "sunny"):
		if has("night") {
			return "clear-night"
		}
		return "sunny"
	case has("cloud"):
		if has("partly") {
			return "partlycloudy"
		}
		return "cloudy"
	case has("fog"):
		return "fog"
	case has("hail"):
		return "hail"
	case has("lightning", "thunder"):
		if has("rain") {
			return "lightning-rainy"
		}
		return "lightning"
	case has("pouring"):
		return "pouring"
	case has("snow", "sleet"):
		if has("rain", "sleet") {
			return "snowy-rainy"
		}
		return "snowy"
	case has("rain", "drizzle"):
		return "rainy"
	case has("wind"):
		if has("extreme") {
			return "windy-variant"
		}
		return "windy"
	}
	return FallbackCondition
}

// IsDaytime reports whether the hour (0-23) falls between 06:00 and 18:00.
func IsDaytime(hour int) bool {
	return hour >= 6 && hour < 18
}
