// Command spmvbench measures sparse matrix-vector multiply throughput
// across storage formats.
//
// Usage:
//
//	spmvbench -grid 512x512 -workers 8
//	spmvbench -matrix bcsstk17.mtx.gz -value f32 -hint streaming
//	spmvbench -matrix s3://corpus/web/stanford.mtx -target-seconds 5
//
// The matrix is loaded from a local path, an s3:// or minio:// location,
// or generated as a 5-point Poisson stencil on the given grid. Every
// format the matrix converts to is checked against a dense reference and
// timed; formats whose conversion is refused are reported as skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/sparsego/bench"
	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/corpus"
	"github.com/hupe1980/sparsego/gallery"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

var (
	matrixLoc     = flag.String("matrix", "", "Matrix location: local path, s3://bucket/key or minio://endpoint/bucket/key")
	grid          = flag.String("grid", "512x512", "Poisson grid NXxNY, used when -matrix is empty")
	value         = flag.String("value", "f64", "Value type: f32 or f64")
	formatsFlag   = flag.String("formats", "", "Comma-separated formats to run (dia,ell,hyb,csr,coo), empty runs all")
	hintName      = flag.String("hint", "auto", "Kernel hint: auto, temporal or streaming")
	workers       = flag.Int("workers", 0, "Worker pool size, 0 runs serial kernels")
	targetSeconds = flag.Float64("target-seconds", 3, "Wall time target per format")
	maxIterations = flag.Int("max-iterations", 500, "Iteration cap per format")
	seed          = flag.Int64("seed", 1, "Seed for the reference input vector")
	verbose       = flag.Bool("v", false, "Log progress to stderr")
)

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var err error
	switch *value {
	case "f64":
		err = run[float64](log)
	case "f32":
		err = run[float32](log)
	default:
		err = fmt.Errorf("unknown value type %q", *value)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "spmvbench:", err)
		os.Exit(1)
	}
}

func run[T blas.Scalar](log *slog.Logger) error {
	ctx := context.Background()

	m, err := loadMatrix[T](ctx, log)
	if err != nil {
		return err
	}

	hint, err := parseHint(*hintName)
	if err != nil {
		return err
	}

	formats, err := parseFormats(*formatsFlag)
	if err != nil {
		return err
	}

	var pool *compute.Pool
	if *workers > 0 {
		pool = compute.NewPool(*workers)
		defer pool.Close()
	}

	rows, cols := m.Dims()
	log.Info("benchmarking", "rows", rows, "cols", cols, "nnz", m.NumEntries(),
		"hint", hint.String(), "workers", *workers)

	reports, err := bench.RunAll[T](m, pool, hint,
		bench.WithTargetSeconds(*targetSeconds),
		bench.WithMaxIterations(*maxIterations),
		bench.WithSeed(*seed),
		bench.WithFormats(formats...))
	if err != nil {
		return err
	}

	printReports(reports)
	return nil
}

func loadMatrix[T blas.Scalar](ctx context.Context, log *slog.Logger) (matrix.Matrix[T], error) {
	if *matrixLoc == "" {
		nx, ny, err := parseGrid(*grid)
		if err != nil {
			return nil, err
		}
		log.Info("generating poisson stencil", "nx", nx, "ny", ny)
		return gallery.Poisson5pt[T](nx, ny), nil
	}

	store, name, err := corpus.Resolve(ctx, *matrixLoc)
	if err != nil {
		return nil, err
	}
	log.Info("loading matrix", "name", name)
	return corpus.FetchCOO[T](ctx, store, name)
}

func parseGrid(s string) (nx, ny int, err error) {
	sx, sy, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("grid %q: want NXxNY", s)
	}
	if _, err := fmt.Sscanf(sx+" "+sy, "%d %d", &nx, &ny); err != nil {
		return 0, 0, fmt.Errorf("grid %q: %w", s, err)
	}
	if nx < 1 || ny < 1 {
		return 0, 0, fmt.Errorf("grid %q: dimensions must be positive", s)
	}
	return nx, ny, nil
}

func parseFormats(s string) ([]matrix.Format, error) {
	if s == "" {
		return nil, nil
	}
	var formats []matrix.Format
	for _, name := range strings.Split(s, ",") {
		f, ok := matrix.ParseFormat(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func parseHint(s string) (spmv.Hint, error) {
	switch s {
	case "auto":
		return spmv.HintAuto, nil
	case "temporal":
		return spmv.HintTemporal, nil
	case "streaming":
		return spmv.HintStreaming, nil
	default:
		return spmv.HintAuto, fmt.Errorf("unknown hint %q", s)
	}
}

func printReports(reports []bench.Report) {
	fmt.Printf("%-8s %12s %12s %10s %10s %8s\n",
		"format", "max_error", "s/call", "GFLOP/s", "GB/s", "iters")
	for _, r := range reports {
		if r.Skipped {
			fmt.Printf("%-8s skipped: %s\n", r.Format, r.SkipReason)
			continue
		}
		fmt.Printf("%-8s %12.3e %12.3e %10.3f %10.3f %8d\n",
			r.Format, r.MaxError, r.Seconds, r.GFLOPS, r.GBps, r.Iterations)
	}
}
