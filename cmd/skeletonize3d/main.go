package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"skeletonize3d/internal/logging"
	"skeletonize3d/internal/models"
	"skeletonize3d/pkg/config"
	"skeletonize3d/pkg/skeleton"
	"skeletonize3d/pkg/stack"
	"skeletonize3d/pkg/stl"
	"skeletonize3d/pkg/topology"
	"skeletonize3d/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Directory of 2D slices, or a .binvox / .skv volume file")
	outputPath := flag.String("output", "skeleton", "Output directory (slice formats) or file")
	configPath := flag.String("config", "", "Optional YAML or TOML configuration file")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	threshold := flag.Int("threshold", 0, "Gray level above which a slice pixel is foreground")
	numCores := flag.Int("cores", 0, "Number of CPU cores scanning for border voxels (default: all available)")
	format := flag.String("format", "", "Output format: png, tiff, jpeg, binvox or raw")
	codec := flag.String("codec", "", "Compression of raw output: none, snappy or zstd")
	stlPath := flag.String("stl", "", "Also write a mesh of the skeleton to this STL file")
	projectionsDir := flag.String("projections", "", "Also write x, y and z projections of the skeleton to this directory")
	verify := flag.Bool("verify", false, "Check that the skeleton keeps the topology of the input")
	logFile := flag.String("log", "", "Rotating log file (default: stderr)")
	verbose := flag.Bool("verbose", false, "Print per-pass statistics")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *writeConfig)
		return
	}

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags given on the command line override the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Processing.Threshold = *threshold
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "format":
			cfg.Output.Format = *format
		case "codec":
			cfg.Output.Codec = *codec
		case "stl":
			cfg.Output.STL = *stlPath
		case "projections":
			cfg.Output.ProjectionsDir = *projectionsDir
		case "verify":
			cfg.Output.Verify = *verify
		case "log":
			cfg.Logging.LogFile = *logFile
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.Setup(&logging.Config{
		Logfile: cfg.Logging.LogFile,
		MaxSize: cfg.Logging.MaxSize,
		MaxAge:  cfg.Logging.MaxAge,
	})
	defer logging.Shutdown()
	logging.SetVerbose(cfg.Output.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *inputPath, *outputPath); err != nil {
		logging.Errorf("%v", err)
		logging.Shutdown()
		log.Fatalf("Skeletonization failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, inputPath, outputPath string) error {
	fmt.Println("================================")
	fmt.Println("3D SKELETONIZATION BY DIRECTIONAL THINNING")
	fmt.Println("Based on Lee, Kashyap and Chu, CVGIP 1994")
	fmt.Println("================================")

	// Load and binarize
	startTime := time.Now()
	volume, slices, err := stack.LoadBinary(inputPath, uint8(cfg.Processing.Threshold))
	if err != nil {
		return err
	}
	for i := range slices {
		slices[i].Foreground = countSet(volume.Slice(slices[i].Index))
	}
	loadTime := time.Since(startTime)

	fmt.Printf("Loaded %dx%dx%d volume (%s) from %s in %.2f seconds\n",
		volume.Width(), volume.Height(), volume.Depth(),
		humanize.Bytes(uint64(len(volume.Data()))), inputPath, loadTime.Seconds())
	fmt.Printf("Foreground voxels: %s\n", humanize.Comma(int64(volume.Count())))
	for _, s := range slices {
		logging.Debugf("slice %d (%s): %d foreground pixels", s.Index, s.Filename, s.Foreground)
	}

	var before topology.Signature
	if cfg.Output.Verify {
		before = topology.Describe(volume)
		fmt.Printf("Input topology: %s\n", before)
	}

	// Thin
	thinner := skeleton.NewThinner(skeleton.Options{
		Workers:  cfg.Processing.NumCores,
		Progress: progressPrinter(),
		Logger:   logging.Logger{},
	})

	fmt.Printf("Thinning with %d core(s)...\n", cfg.Processing.NumCores)
	startTime = time.Now()
	result, err := thinner.Thin(ctx, volume)
	fmt.Println()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("thinning interrupted after %d cycle(s): %w", result.Cycles, err)
		}
		return fmt.Errorf("thinning failed: %w", err)
	}
	thinTime := time.Since(startTime)
	logging.Infof("thinned %s in %d cycles, removed %d voxels", inputPath, result.Cycles, result.Removed)

	mean, std := result.Summary()
	fmt.Printf("\nThinning completed in %.2f seconds\n", thinTime.Seconds())
	fmt.Printf("- Cycles: %d (%d sub-passes)\n", result.Cycles, len(result.Passes))
	fmt.Printf("- Removed voxels: %s\n", humanize.Comma(int64(result.Removed)))
	fmt.Printf("- Skeleton voxels: %s\n", humanize.Comma(int64(volume.Count())))
	fmt.Printf("- Removed per sub-pass: %.1f ± %.1f\n", mean, std)
	if cfg.Output.Verbose {
		for _, p := range result.Passes {
			fmt.Printf("  cycle %3d %-6s candidates %8d removed %8d\n", p.Cycle, p.Direction, p.Candidates, p.Removed)
		}
	}

	if cfg.Output.Verify {
		after := topology.Describe(volume)
		fmt.Printf("Skeleton topology: %s\n", after)
		if !after.SameTopology(before) {
			logging.Warningf("topology changed: input %s, skeleton %s", before, after)
			return fmt.Errorf("skeleton topology %s differs from input %s", after, before)
		}
		fmt.Println("Topology preserved.")
	}

	// Save
	outFormat := models.Format(cfg.Output.Format)
	codec, err := stack.ParseCodec(cfg.Output.Codec)
	if err != nil {
		return err
	}
	if !outFormat.IsSliceFormat() && !strings.EqualFold(filepath.Ext(outputPath), outFormat.Extension()) {
		outputPath += outFormat.Extension()
	}
	if err := stack.Save(volume, outputPath, outFormat, codec); err != nil {
		return err
	}
	fmt.Printf("Skeleton saved to: %s\n", outputPath)

	if cfg.Output.STL != "" {
		gap := float32(cfg.Processing.SliceGap)
		triangles := stl.VoxelMesh(volume, [3]float32{1, 1, gap})
		if err := stl.SaveToSTL(cfg.Output.STL, triangles); err != nil {
			return err
		}
		fmt.Printf("Mesh with %s triangles saved to: %s\n", humanize.Comma(int64(len(triangles))), cfg.Output.STL)
	}

	if cfg.Output.ProjectionsDir != "" {
		viewer := visualization.NewViewer(volume, cfg.Processing.SliceGap)
		if err := viewer.SaveProjections(cfg.Output.ProjectionsDir); err != nil {
			logging.Warningf("failed to save projections: %v", err)
		} else {
			fmt.Printf("Projections saved to: %s\n", cfg.Output.ProjectionsDir)
		}
	}

	return nil
}

// progressPrinter returns a progress callback that redraws a percentage
// line for each sub-pass scan.
func progressPrinter() skeleton.ProgressFunc {
	return func(done, total int) {
		if total == 0 {
			return
		}
		fmt.Printf("\rScanning slices: %3d%%", done*100/total)
	}
}

func countSet(slice []byte) int {
	n := 0
	for _, b := range slice {
		if b != 0 {
			n++
		}
	}
	return n
}
