// Command cookiegen turns image files into light cookie textures.
//
// Usage:
//
//	cookiegen [flags] image...
//
// Projective shapes write one <name>.png per input. The point shape unfolds a
// cubemap atlas and writes <name>_px.png through <name>_nz.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lfe999/lightcookie"
)

func main() {
	var (
		shape      = flag.String("shape", "spot", "light shape: directional, spot, area or point")
		wrap       = flag.String("wrap", "clamp", "wrap mode: clamp, mirror, mirroronce or repeat")
		grayscale  = flag.Bool("grayscale", false, "derive alpha from luminance")
		invert     = flag.Bool("invert", false, "invert alpha")
		brightness = flag.Float64("brightness", 0, "alpha brightness in [-1, 1]")
		border     = flag.Bool("border", false, "fade edges to transparent")
		vignette   = flag.Bool("vignette", false, "apply a radial vignette")
		scale      = flag.Float64("scale", 1, "cookie scale recorded on the texture")
		outDir     = flag.String("out", ".", "output directory")
		jobs       = flag.Int("j", runtime.GOMAXPROCS(0), "files processed in parallel")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	lightcookie.SetLogger(logger)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: cookiegen [flags] image...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	lightShape, err := lightcookie.ParseLightShape(*shape)
	if err != nil {
		logger.Error("invalid shape", "shape", *shape, "error", err)
		os.Exit(2)
	}
	wrapMode, ok := lightcookie.ParseWrapMode(*wrap)
	if !ok {
		logger.Warn("unknown wrap mode, using clamp", "wrap", *wrap)
	}

	opts := lightcookie.DefaultOptions()
	opts.WrapMode = wrapMode
	opts.GrayscaleToAlpha = *grayscale
	opts.Invert = *invert
	opts.Brightness = float32(*brightness)
	opts.AddBorder = *border
	opts.AddVignette = *vignette
	opts.Scale = float32(*scale)
	if err := opts.Validate(); err != nil {
		logger.Error("invalid options", "error", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for _, in := range flag.Args() {
		g.Go(func() error {
			return convert(ctx, logger, in, *outDir, lightShape, opts)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("cookiegen failed", "error", err)
		os.Exit(1)
	}
}

// convert processes one input file and writes its cookie PNGs.
func convert(ctx context.Context, logger *slog.Logger, in, outDir string, shape lightcookie.LightShape, opts lightcookie.OptionSet) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	res, err := lightcookie.Process(ctx, data, shape, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	defer res.Release()

	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	if res.Dimension() == lightcookie.Dimension2D {
		out := filepath.Join(outDir, base+".png")
		if err := writeFile(out, res.EncodePNG); err != nil {
			return err
		}
		logger.Info("wrote cookie", "in", in, "out", out, "size", fmt.Sprintf("%dx%d", res.Width(), res.Height()))
		return nil
	}

	for _, f := range lightcookie.AllFaces {
		out := filepath.Join(outDir, base+"_"+f.Suffix()+".png")
		err := writeFile(out, func(w io.Writer) error { return res.FacePNG(f, w) })
		if err != nil {
			return err
		}
	}
	logger.Info("wrote cubemap", "in", in, "layout", res.Layout(), "face", res.Width())
	return nil
}

func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}
