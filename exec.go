package wxicons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vortitron/wxicons/utils"
	"golang.org/x/term"
)

// Manifest file names.
const (
	AnimatedManifestName = "animated_weather_icon_urls.json"
	StaticManifestName   = "weather_icon_urls.json"
)

// Ops holds the output options of an Execute run.
type Ops struct {
	// Src is the icon repository root.
	Src string
	// Dst receives the header and the manifest. It defaults to the parent of Src.
	Dst string

	Static   bool
	Debug    bool
	FrameExt string

	HeaderName string
	Prefix     string
	BaseURL    string
	// Install, when set, is a firmware project directory the header is copied into.
	Install string

	// Logger receives the status lines. The standard logger is used when nil.
	Logger *log.Logger
}

// Result describes what an Execute run produced.
type Result struct {
	Table        *Table
	Report       *Report
	HeaderPath   string
	ManifestPath string
	Manifest     Manifest
}

func (op *Ops) logger() *log.Logger {
	if op.Logger == nil {
		return log.Default()
	}
	return op.Logger
}

func (op *Ops) frameExt() string {
	if op.FrameExt == "" {
		return "png"
	}
	return op.FrameExt
}

// Execute runs the whole pipeline over op.Src: it builds the asset table, writes
// the display assets under the production directory, then emits the firmware
// header and the URL manifest. Only fatal conditions are returned as errors,
// per icon problems are printed and the icon is left out.
func (b *Builder) Execute(ctx context.Context, op *Ops) (*Result, error) {
	logger := op.logger()
	now := time.Now()

	if op.Src != "" {
		b.Root = op.Src
	}
	fi, err := os.Stat(b.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to load the icon root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("failed to load the icon root: %s is not a directory", b.Root)
	}
	if op.Dst == "" {
		op.Dst = filepath.Dir(filepath.Clean(b.Root))
	}
	guard := DefaultHeaderGuard
	if op.Static {
		guard = DefaultStaticHeaderGuard
	}
	if op.HeaderName == "" {
		op.HeaderName = DefaultHeaderName
		if op.Static {
			op.HeaderName = DefaultStaticHeaderName
		}
	}
	switch op.frameExt() {
	case "png", "bmp":
	default:
		return nil, fmt.Errorf("unsupported frame format: %s", op.FrameExt)
	}
	if op.Static {
		b.Frames = 1
	}

	if er, ok := b.Rasterizer.(*ExecRasterizer); ok {
		if err := er.Check(); err != nil {
			return nil, err
		}
	}

	prod := filepath.Join(b.Root, "production")
	tftDir := filepath.Join(prod, TFTDir(op.Static))
	oledDir := filepath.Join(prod, OLEDDir(op.Static))
	for _, dir := range []string{tftDir, oledDir, op.Dst} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create the output directory: %w", err)
		}
	}

	var spinner *utils.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) && op.Logger == nil {
		spinner = utils.NewSpinner(utils.StatusLine("rendering weather icons...", utils.DefaultMessage), 80*time.Millisecond, true)
		spinner.Start()
	}
	table, report, err := b.Build(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if report != nil {
		op.printReport(logger, report)
	}
	if err != nil {
		return nil, err
	}

	for i := range table.Records {
		r := &table.Records[i]
		if err := op.persist(b, prod, r); err != nil {
			logger.Println(utils.StatusLine(fmt.Sprintf("%s: could not save the display assets: %v", r.Key(), err), utils.ErrorMessage))
			continue
		}
		logger.Println(utils.StatusLine(fmt.Sprintf("%s ⇢ %d frame(s), %dms per frame ✔", r.Key(), len(r.Frames), r.FrameDelayMs), utils.SuccessMessage))
	}

	res := &Result{
		Table:  table,
		Report: report,
		Manifest: BuildManifest(table, ManifestOptions{
			BaseURL:  op.BaseURL,
			Static:   op.Static,
			FrameExt: op.frameExt(),
		}),
	}

	res.HeaderPath = filepath.Join(op.Dst, op.HeaderName)
	if err := writeFile(res.HeaderPath, func(w io.Writer) error {
		return WriteHeader(w, table, HeaderOptions{
			Prefix: op.Prefix,
			Guard:  guard,
			Width:  b.Packer.Width,
			Height: b.Packer.Height,
		})
	}); err != nil {
		return nil, err
	}

	manifestName := AnimatedManifestName
	if op.Static {
		manifestName = StaticManifestName
	}
	res.ManifestPath = filepath.Join(op.Dst, manifestName)
	if err := writeFile(res.ManifestPath, res.Manifest.Encode); err != nil {
		return nil, err
	}

	if op.Install != "" {
		dst, err := installHeader(res.HeaderPath, op.Install)
		if err != nil {
			logger.Println(utils.StatusLine(fmt.Sprintf("could not install the header: %v", err), utils.ErrorMessage))
		} else {
			logger.Printf("The header has been installed as: %s", utils.DecorateText(dst, utils.SuccessMessage))
		}
	}

	logger.Printf("\nProcessed %s icons, %s skipped",
		utils.DecorateText(fmt.Sprint(table.Len()), utils.SuccessMessage),
		utils.DecorateText(fmt.Sprint(len(report.Skipped)), utils.WarningMessage),
	)
	logger.Printf("Header: %s", res.HeaderPath)
	logger.Printf("Manifest: %s", res.ManifestPath)
	logger.Printf("Execution time: %s", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))

	return res, nil
}

// printReport displays the per icon diagnostics of a build.
func (op *Ops) printReport(logger *log.Logger, report *Report) {
	for _, s := range report.Skipped {
		msg := fmt.Sprintf("skipping %s: %v", s.Key, s.Err)
		if errors.Is(s.Err, ErrSourceNotFound) {
			logger.Println(utils.StatusLine(msg, utils.WarningMessage))
			continue
		}
		logger.Println(utils.StatusLine(msg, utils.ErrorMessage))
	}
	for _, w := range report.Warnings {
		logger.Println(utils.StatusLine(w.Error(), utils.WarningMessage))
	}
}

// persist writes the TFT asset, the OLED preview frames and optionally the raw debug frames of a record.
func (op *Ops) persist(b *Builder, prod string, r *AssetRecord) error {
	key := r.Key()
	tft := filepath.Join(prod, TFTDir(op.Static), TFTFile(key, op.Static))
	if op.Static {
		if err := saveImg(tft, r.Raster[0]); err != nil {
			return err
		}
	} else {
		if err := writeFile(tft, func(w io.Writer) error {
			return encodeAnimation(w, r.Raster, r.FrameDelayMs)
		}); err != nil {
			return err
		}
	}

	frames := r.Frames
	if op.Static {
		frames = frames[:1]
	}
	for i, f := range frames {
		name := filepath.Join(prod, OLEDDir(op.Static), OLEDFile(key, i, op.Static, op.frameExt()))
		if err := saveImg(name, b.Packer.Unpack(f)); err != nil {
			return err
		}
	}

	if op.Debug {
		dir := filepath.Join(prod, "debug", key)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create the debug directory: %w", err)
		}
		for i, img := range r.Raster {
			if err := imaging.Save(img, filepath.Join(dir, fmt.Sprintf("frame_%03d.png", i))); err != nil {
				return fmt.Errorf("could not save the debug frame: %w", err)
			}
		}
	}
	return nil
}

// writeFile creates name and fills it through fn. A partially written file is removed on failure.
func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", name, err)
	}
	return nil
}

// installHeader copies the generated header into the src directory of a firmware project.
func installHeader(header, project string) (string, error) {
	fi, err := os.Stat(project)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", project)
	}
	dir := filepath.Join(project, "src")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	src, err := os.Open(header)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst := filepath.Join(dir, filepath.Base(header))
	return dst, writeFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}
