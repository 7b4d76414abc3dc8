// Command mtxconvert converts matrices between Matrix Market text and
// the binary snapshot container, and reports pattern statistics.
//
// Usage:
//
//	mtxconvert -in bcsstk17.mtx.gz -out bcsstk17.spx -codec zstd
//	mtxconvert -in s3://corpus/web/stanford.spx -out stanford.mtx
//	mtxconvert -in poisson.mtx -analyze
//
// The input format is sniffed, so .mtx, .mtx.gz and snapshot files all
// load the same way. Output format follows the -out extension: .mtx and
// .mtx.gz write Matrix Market text, anything else writes a snapshot
// with the chosen codec.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/sparsego/corpus"
	"github.com/hupe1980/sparsego/market"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/snapshot"
)

var (
	in      = flag.String("in", "", "Input location: local path, s3://bucket/key or minio://endpoint/bucket/key (required)")
	out     = flag.String("out", "", "Output path, extension selects the format")
	codec   = flag.String("codec", snapshot.CodecZstd, "Snapshot block codec: raw, zstd or lz4")
	analyze = flag.Bool("analyze", false, "Print a pattern report instead of, or before, converting")
)

func main() {
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "mtxconvert: -in is required")
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" && !*analyze {
		fmt.Fprintln(os.Stderr, "mtxconvert: nothing to do, pass -out or -analyze")
		os.Exit(2)
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "mtxconvert:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store, name, err := corpus.Resolve(ctx, *in)
	if err != nil {
		return err
	}

	m, err := corpus.FetchCOO[float64](ctx, store, name)
	if err != nil {
		return fmt.Errorf("load %s: %w", *in, err)
	}

	if *analyze {
		printAnalysis(m)
	}
	if *out == "" {
		return nil
	}

	if strings.HasSuffix(*out, ".mtx") || strings.HasSuffix(*out, ".mtx.gz") {
		return market.WriteFile[float64](*out, m)
	}
	return snapshot.WriteFile[float64](*out, m, snapshot.WithCodec(*codec))
}

func printAnalysis(m *matrix.COO[float64]) {
	a := matrix.Analyze[float64](m)

	fmt.Printf("rows          %d\n", a.Rows)
	fmt.Printf("cols          %d\n", a.Cols)
	fmt.Printf("entries       %d\n", a.Entries)
	fmt.Printf("row length    min %d / mean %.2f / max %d\n", a.MinRowLen, a.MeanRowLen, a.MaxRowLen)
	fmt.Printf("occupied rows %d of %d\n", a.OccupiedRows, a.Rows)
	fmt.Printf("diagonals     %d occupied\n", a.OccupiedDiagonals)

	// Footprint per convertible format, so the codec and format choice
	// can be made before committing to a conversion.
	for _, f := range []matrix.Format{matrix.FormatDIA, matrix.FormatELL, matrix.FormatHYB} {
		if _, err := matrix.Convert[float64](m, f); err != nil {
			fmt.Printf("%-4s          refused: %v\n", f, err)
		} else {
			fmt.Printf("%-4s          convertible\n", f)
		}
	}

	diags := a.Diagonals()
	if len(diags) > 0 && len(diags) <= 32 {
		fmt.Printf("offsets       %v\n", diags)
	}
}
