/*
Package wxicons converts animated SVG weather icons into display assets for small
embedded weather stations: an animated GIF per icon for colour TFT panels and a
sequence of packed 1-bit frames for 128x64 OLED panels. The packed frames are
emitted as a C header with a lookup table, and a JSON manifest lists the URLs
the assets are published under.

The package provides a command line interface. To check the supported flags type:

	$ wxicons --help

The pipeline can also be driven from code:

	package main

	import (
		"context"
		"fmt"

		"github.com/vortitron/wxicons"
	)

	func main() {
		b := wxicons.NewBuilder("/path/to/weather-icons")

		table, report, err := b.Build(context.Background())
		if err != nil {
			fmt.Printf("Error building the icon table: %s", err.Error())
			return
		}
		for _, s := range report.Skipped {
			fmt.Printf("skipped %s: %v\n", s.Key, s.Err)
		}

		icon := table.Resolve("partlycloudy", false)
		fmt.Println(icon.ID, len(icon.Frames), icon.FrameDelayMs)
	}
*/
package wxicons
