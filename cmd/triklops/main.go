package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tri "github.com/esimov/triklops"
	"github.com/esimov/triklops/utils"
	"go.uber.org/multierr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const helperBanner = `
┌┬┐┬─┐┬┬┌─┬  ┌─┐┌─┐┌─┐
 │ ├┬┘│├┴┐│  │ │├─┘└─┐
 ┴ ┴└─┴┴ ┴┴─┘└─┘┴  └─┘

Approximates an image with evolved triangles.
    Version: %s

`

// Version indicates the current build version.
var Version string

// supported reference image extensions in directory mode.
var extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

func main() {
	var (
		defaults = tri.DefaultParams()

		source      = flag.String("in", "", "Source image, directory or URL")
		destination = flag.String("out", "", "Destination file(s), comma separated (.svg, .png, .json); a directory in directory mode")
		formats     = flag.String("format", "svg", "Output formats in directory mode, comma separated")
		size        = flag.Int("size", defaults.ImageSize, "Canvas size in pixels")
		triangles   = flag.Int("triangles", defaults.NumTriangles, "Number of triangles")
		generations = flag.Int("generations", defaults.NumGenerations, "Generations per triangle")
		population  = flag.Int("population", defaults.PopulationSize, "Population size")
		selected    = flag.Int("selected", defaults.NumSelected, "Number of individuals selected for breeding")
		mutation    = flag.Float64("mutation", defaults.MutationRate, "Mutation rate [0, 1]")
		algorithm   = flag.String("algorithm", defaults.Algorithm.String(), "Fitness metric: mse or ssim")
		saveFreq    = flag.Int("save", 0, "Save every N triangles (0 saves only the result)")
		threads     = flag.Int("threads", 0, "Evaluation threads (0 uses every CPU)")
		background  = flag.String("bg", "000000", "Background color as hex RGB")
		grayscale   = flag.Bool("gray", false, "Convert the reference to grayscale")
		blurRadius  = flag.Int("blur", 0, "Blur radius applied to the reference")
		scale       = flag.Int("scale", 1, "Raster output scale factor")
		noise       = flag.Int("noise", 0, "Noise factor of the raster output")
		plotPath    = flag.String("plot", "", "Write a fitness chart to this PNG file")
		verbose     = flag.Bool("v", false, "Log every save point")

		seed      *uint64
		threshold *float64
	)
	flag.Func("seed", "Random seed (default: drawn from entropy)", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		seed = &v
		return nil
	})
	flag.Func("degeneracy", "Minimum interior angle in degrees (default: no filtering)", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		threshold = &v
		return nil
	})
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helperBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*source) == 0 || len(*destination) == 0 {
		log.Fatal("Usage: triklops -in input.jpg -out out.svg")
	}

	metric, err := tri.ParseMetric(*algorithm)
	if err != nil {
		log.Fatal(err)
	}
	bg, err := parseHexColor(*background)
	if err != nil {
		log.Fatalf("Invalid background color: %v", err)
	}

	proc := &tri.Processor{
		Params: tri.Params{
			NumTriangles:        *triangles,
			ImageSize:           *size,
			NumGenerations:      *generations,
			PopulationSize:      *population,
			NumSelected:         *selected,
			MutationRate:        *mutation,
			Algorithm:           metric,
			Background:          bg,
			Seed:                seed,
			DegeneracyThreshold: threshold,
			SaveFrequency:       *saveFreq,
			Workers:             *threads,
		},
		BlurRadius: *blurRadius,
		Grayscale:  *grayscale,
		Scale:      *scale,
		Noise:      *noise,
	}
	if *verbose {
		proc.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	if err := proc.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(os.Stderr, "%s%v%s\n", utils.ErrorColor, e, utils.DefaultColor)
		}
		os.Exit(2)
	}

	proc.Seed = resolveSeed(proc.Seed)

	jobs, err := collectJobs(*source, *destination, *formats)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, j := range jobs {
		if err := run(ctx, proc, j, *plotPath); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "\nInterrupted, committed triangles were saved.\n")
				os.Exit(130)
			}
			log.Fatalf("Error converting image %s: %v", j.in, err)
		}
	}
}

type job struct {
	in  string
	out []string
}

// collectJobs maps every source image to its output files.
func collectJobs(source, destination, formats string) ([]job, error) {
	if utils.IsURL(source) {
		return []job{{in: source, out: splitList(destination)}}, nil
	}

	fs, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}
	if !fs.Mode().IsDir() {
		return []job{{in: source, out: splitList(destination)}}, nil
	}

	dst, err := os.Stat(destination)
	if err != nil {
		return nil, fmt.Errorf("unable to get dir stats: %w", err)
	}
	if !dst.Mode().IsDir() {
		return nil, errors.New("please specify a directory as destination")
	}

	files, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("unable to read dir: %w", err)
	}

	var jobs []job
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		for _, iex := range extensions {
			if ext != iex {
				continue
			}
			name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			j := job{in: filepath.Join(source, f.Name())}
			for _, format := range splitList(formats) {
				j.out = append(j.out, filepath.Join(destination, name+"."+strings.TrimPrefix(format, ".")))
			}
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func run(ctx context.Context, proc *tri.Processor, j job, plotPath string) error {
	src, err := decode(j.in)
	if err != nil {
		return err
	}

	s := utils.NewSpinner()
	s.Start(fmt.Sprintf("Evolving %s...", filepath.Base(j.in)))
	start := time.Now()

	e, err := proc.Process(ctx, src, j.out, func(p tri.Progress) {
		done := p.Slot*proc.NumGenerations + p.Generation + 1
		total := proc.NumTriangles * proc.NumGenerations
		eta := utils.Estimate(time.Since(start), done, total)

		s.Update(fmt.Sprintf("Triangle %d/%d  generation %d/%d  %s %.5f  eta %s",
			p.Slot+1, proc.NumTriangles, p.Generation+1, proc.NumGenerations,
			proc.Algorithm, p.BestFitness, utils.FormatTime(eta)))
	})
	s.Stop()
	if e == nil {
		return err
	}

	if plotPath != "" && len(e.History()) > 0 {
		if perr := writePlot(plotPath, e.History(), proc.Algorithm); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nGenerated in: %s%s%s (seed %d)\n",
		utils.SuccessColor, utils.FormatTime(time.Since(start)), utils.DefaultColor, e.Seed())
	fmt.Printf("Total number of %s%s%s triangles committed\n",
		utils.SuccessColor, humanize.Comma(int64(len(e.Triangles()))), utils.DefaultColor)
	for _, out := range j.out {
		if fi, err := os.Stat(out); err == nil {
			fmt.Printf("Saved as: %s (%s) %s✓%s\n", filepath.Base(out), humanize.Bytes(uint64(fi.Size())),
				utils.SuccessColor, utils.DefaultColor)
		}
	}
	return nil
}

// decode reads the reference image from a local path or URL.
func decode(in string) (image.Image, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if utils.IsURL(in) {
		f, derr := utils.DownloadImage(in)
		if derr != nil {
			return nil, derr
		}
		defer os.Remove(f.Name())
		r = f
	} else {
		r, err = os.Open(in)
		if err != nil {
			return nil, fmt.Errorf("unable to open source file: %w", err)
		}
	}
	defer r.Close()

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", in, err)
	}
	return src, nil
}

func writePlot(path string, history []float64, metric tri.Metric) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return tri.PlotFitness(f, history, metric)
}
