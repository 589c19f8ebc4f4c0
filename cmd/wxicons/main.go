package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vortitron/wxicons"
	"github.com/vortitron/wxicons/utils"
)

const HelpBanner = `
┬ ┬─┐ ┬┬┌─┐┌─┐┌┐┌┌─┐
│││┌┴┬┘││  │ ││││└─┐
└┴┘┴ └─┴└─┘└─┘┘└┘└─┘

Weather icon asset pipeline for TFT and OLED displays.
    Version: %s

Usage: wxicons [flags] /path/to/weather-icons

`

// Version indicates the current build version.
var Version string

var (
	// Flags
	frames     = flag.Int("frames", wxicons.DefaultFrameCount, "Number of frames sampled per animation cycle")
	static     = flag.Bool("static", false, "Render a single static frame per icon")
	workers    = flag.Int("conc", 1, "Number of icons to process concurrently")
	rasterizer = flag.String("rasterizer", "svg", "Rasterizer to use: svg (built in) or inkscape")
	command    = flag.String("cmd", "inkscape", "External rasterizer command")
	timeout    = flag.Duration("timeout", wxicons.DefaultCommandTimeout, "Timeout of a single external rasterizer call")
	style      = flag.String("style", "line", "Icon style directory under production/")
	baseURL    = flag.String("baseurl", wxicons.DefaultBaseURL, "Base URL the assets are published under")
	prefix     = flag.String("prefix", "", "Prefix of the generated C symbols, e.g. animated_")
	output     = flag.String("out", "", "Directory of the header and manifest (defaults to the parent of the icon root)")
	format     = flag.String("format", "png", "OLED preview frame format: png or bmp")
	debug      = flag.Bool("debug", false, "Keep the raw TFT frames under production/debug")
	install    = flag.String("install", "", "Firmware project directory to copy the header into")
	strict     = flag.Bool("strict", false, "Fail on unsupported SVG elements with the built in rasterizer")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide the path of the weather icons repository!", utils.ErrorMessage))
	}
	if !utils.IsValidUrl(*baseURL) {
		log.Fatalf(utils.DecorateText("Invalid base URL: %s", utils.ErrorMessage), *baseURL)
	}

	b := wxicons.NewBuilder(flag.Arg(0))
	b.Style = *style
	b.Frames = *frames
	b.Workers = *workers

	switch *rasterizer {
	case "svg":
		b.Rasterizer = wxicons.SVGRasterizer{Strict: *strict}
	case "inkscape":
		b.Rasterizer = &wxicons.ExecRasterizer{Command: *command, Timeout: *timeout}
	default:
		log.Fatalf(utils.DecorateText("Unsupported rasterizer: %s", utils.ErrorMessage), *rasterizer)
	}

	// Cancel the run on CTRL-C, the spinner restores the cursor when it stops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := b.Execute(ctx, &wxicons.Ops{
		Src:      flag.Arg(0),
		Dst:      *output,
		Static:   *static,
		Debug:    *debug,
		FrameExt: *format,
		Prefix:   *prefix,
		BaseURL:  *baseURL,
		Install:  *install,
	})
	if err != nil {
		stop()
		if errors.Is(err, context.Canceled) {
			log.Fatal(utils.DecorateText("\nInterrupted", utils.ErrorMessage))
		}
		log.Fatalf(
			utils.DecorateText("\nError generating the weather icons: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
	}
}
