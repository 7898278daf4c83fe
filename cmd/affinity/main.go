package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/distributed-affinity/pkg/ap"
	"github.com/distributed-affinity/pkg/config"
	"github.com/distributed-affinity/pkg/graph"
	"github.com/distributed-affinity/pkg/graphio"
	"github.com/distributed-affinity/pkg/similarity"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		inputPath     string
		inputFormat   string
		outputPath    string
		maxIterations int
		damping       float64
		workers       int
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "affinity",
		Short: "Cluster data with affinity propagation",
		Long: `Affinity propagation clustering over a similarity matrix.

Reads similarities in dense, sparse or raw-points format, exchanges
responsibility and availability messages for a fixed number of iterations,
and writes one "row exemplar" pair per data point.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input.Path = inputPath
			}
			if flags.Changed("format") {
				cfg.Input.Format = inputFormat
			}
			if flags.Changed("output") {
				cfg.Output.Path = outputPath
			}
			if flags.Changed("max-iterations") {
				cfg.Algorithm.MaxIterations = maxIterations
			}
			if flags.Changed("damping") {
				cfg.Algorithm.Damping = damping
			}
			if flags.Changed("workers") {
				cfg.Algorithm.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Input.Path == "" {
				return fmt.Errorf("no input file: pass --input or set input.path in the config")
			}

			return run(cmd.Context(), cfg, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the similarity input")
	cmd.Flags().StringVarP(&inputFormat, "format", "f", config.FormatSparse, "input format: dense, sparse or points")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "path for the assignments output (default stdout)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 15, "number of message-passing iterations")
	cmd.Flags().Float64Var(&damping, "damping", 0.9, "damping factor in [0, 1)")
	cmd.Flags().IntVar(&workers, "workers", 0, "compute workers per superstep (0 = one per CPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	similarities, err := readSimilarities(cfg.Input)
	if err != nil {
		return err
	}
	log.Info("input loaded",
		slog.String("path", cfg.Input.Path),
		slog.String("format", cfg.Input.Format),
		slog.Int("entries", len(similarities)),
	)

	runner := ap.NewRunner(ap.Options{
		MaxIterations: cfg.Algorithm.MaxIterations,
		Damping:       cfg.Algorithm.Damping,
		Workers:       cfg.Algorithm.Workers,
	}, log)
	assignments, err := runner.Run(ctx, similarities)
	if err != nil {
		return err
	}

	if cfg.Output.Path == "" {
		return graphio.WriteAssignments(os.Stdout, assignments)
	}
	if err := graphio.WriteAssignmentsFile(cfg.Output.Path, assignments); err != nil {
		return err
	}
	log.Info("assignments written", slog.String("path", cfg.Output.Path))
	return nil
}

func readSimilarities(input config.Input) ([]graph.Similarity, error) {
	switch input.Format {
	case config.FormatDense:
		return graphio.ReadDenseFile(input.Path)
	case config.FormatSparse:
		return graphio.ReadSparseFile(input.Path)
	case config.FormatPoints:
		points, err := graphio.ReadPointsFile(input.Path)
		if err != nil {
			return nil, err
		}
		return similarity.FromPoints(points)
	default:
		return nil, fmt.Errorf("unknown input format %q", input.Format)
	}
}
