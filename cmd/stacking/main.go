// Command stacking classifies the interlayer stacking registry of every
// target-species atom in a single-frame LAMMPS dump and writes the labelled
// structure plus a category distribution.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lattice-data/stacking.report/internal/stackdb"
	"github.com/lattice-data/stacking.report/internal/stacking"
	"github.com/lattice-data/stacking.report/internal/stacking/parse"
)

var (
	output       = flag.String("out", "", "Output .stack file (default: INPUT.stack)")
	rTol         = flag.Float64("r-tol", stacking.DefaultDistanceTolerance, "Registry-site distance tolerance in Å")
	voxelSize    = flag.Float64("voxel-size", stacking.DefaultVoxelSize, "Voxel edge length in Å")
	sDistance    = flag.Float64("s-distance", stacking.DefaultSameSpeciesThreshold, "Same-species consistency threshold in Å")
	searchRadius = flag.Float64("search-radius", stacking.DefaultSearchRadius, "Nearest-reference search radius in Å")
	workers      = flag.Int("workers", 0, "Worker count (0 = all CPUs)")
	targetType   = flag.Int("target-type", int(stacking.DefaultTargetSpecies), "Atom type to classify")
	refType      = flag.Int("reference-type", int(stacking.DefaultReferenceSpecies), "Reference-layer atom type")
	dbPath       = flag.String("db", "", "Optional sqlite run store to record this run in")
	validate     = flag.Bool("validate", false, "Validate the input file format and exit")
	showMeta     = flag.Bool("show-metadata", false, "Show dump file metadata and exit")
	quiet        = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] DUMP_FILE\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *quiet {
		log.SetOutput(io.Discard)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input string) error {
	if *validate {
		if err := parse.Validate(input); err != nil {
			return fmt.Errorf("invalid LAMMPS dump: %w", err)
		}
		fmt.Printf("valid single-frame LAMMPS dump: %s\n", input)
		return nil
	}
	if *showMeta {
		return printMetadata(input)
	}

	cfg := stacking.DefaultConfig().
		WithVoxelSize(*voxelSize).
		WithDistanceTolerance(*rTol).
		WithSameSpeciesThreshold(*sDistance).
		WithSearchRadius(*searchRadius).
		WithWorkers(*workers).
		WithTargetSpecies(stacking.SpeciesType(*targetType)).
		WithReferenceSpecies(stacking.SpeciesType(*refType))

	analyzer, err := stacking.NewAnalyzer(cfg)
	if err != nil {
		return err
	}

	snap, err := parse.ReadDumpFile(input)
	if err != nil {
		return err
	}
	log.Printf("[Main] loaded %d atoms from %s (timestep %d)", len(snap.Atoms), input, snap.Timestep)

	store, err := stacking.NewCoordinateStore(snap.Atoms, snap.Box)
	if err != nil {
		return err
	}

	var manager *stacking.RunManager
	if *dbPath != "" {
		db, err := stackdb.Open(*dbPath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer db.Close()
		manager = stacking.NewRunManager(db)
		if _, err := manager.StartRun(input, cfg); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := analyzer.Analyze(ctx, store)
	if err != nil {
		if manager != nil {
			if ferr := manager.FailRun(err); ferr != nil {
				log.Printf("[Main] failed to record run failure: %v", ferr)
			}
		}
		return err
	}
	if manager != nil {
		if err := manager.CompleteRun(result); err != nil {
			log.Printf("[Main] failed to record run completion: %v", err)
		}
	}

	out := *output
	if out == "" {
		out = input + ".stack"
	}
	if err := stacking.WriteStackFile(out, store, result); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if !*quiet {
		printStats(result.Stats)
		fmt.Printf("\noutput written to %s\n", out)
	}
	return nil
}

func printMetadata(input string) error {
	meta, err := parse.ReadMetadata(input)
	if err != nil {
		return err
	}
	fmt.Printf("file: %s\n", input)
	fmt.Printf("timestep: %d\n", meta.Timestep)
	fmt.Printf("atoms: %d\n", meta.AtomCount)
	fmt.Printf("box x: %.3f to %.3f\n", meta.Box.MinX, meta.Box.MaxX)
	fmt.Printf("box y: %.3f to %.3f\n", meta.Box.MinY, meta.Box.MaxY)
	fmt.Printf("box z: %.3f to %.3f\n", meta.Box.MinZ, meta.Box.MaxZ)
	fmt.Printf("columns: %v\n", meta.Columns)
	return nil
}

func printStats(stats stacking.Statistics) {
	fmt.Printf("\ntotal atoms classified: %d\n\nstacking type distribution:\n", stats.Total)
	for _, t := range stacking.StackingTypes {
		cs, ok := stats.ByType[t]
		if !ok {
			continue
		}
		fmt.Printf("  %-4s (code %d): %8d  (%5.2f%%)\n", t, t.Code(), cs.Count, cs.Percent)
	}
}
