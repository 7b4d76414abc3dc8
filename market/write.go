package market

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/matrix"
)

// Options configure the writer.
type Options struct {
	// Comments are emitted as % lines between the banner and the size
	// line.
	Comments []string
}

// WithComment adds comment lines below the banner.
func WithComment(lines ...string) func(*Options) {
	return func(o *Options) {
		o.Comments = append(o.Comments, lines...)
	}
}

// Write emits m in coordinate layout with general symmetry, the form
// every Matrix Market consumer accepts. Complex element types get the
// complex field, everything else real. Indices go out 1-based.
func Write[T blas.Scalar](w io.Writer, m matrix.Matrix[T], optFns ...func(*Options)) error {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}

	field := "real"
	if blas.IsComplex[T]() {
		field = "complex"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s matrix coordinate %s general\n", banner, field)
	for _, c := range o.Comments {
		fmt.Fprintf(bw, "%% %s\n", c)
	}

	rows, cols := m.Dims()
	fmt.Fprintf(bw, "%d %d %d\n", rows, cols, m.NumEntries())

	for e := range m.Entries() {
		re, im := blas.Components(e.Value)
		if field == "complex" {
			fmt.Fprintf(bw, "%d %d %s %s\n", e.Row+1, e.Col+1, formatFloat(re), formatFloat(im))
		} else {
			fmt.Fprintf(bw, "%d %d %s\n", e.Row+1, e.Col+1, formatFloat(re))
		}
	}
	return bw.Flush()
}

// WriteFile writes m to path, gzipping when the name ends in .gz.
func WriteFile[T blas.Scalar](path string, m matrix.Matrix[T], optFns ...func(*Options)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := Write(w, m, optFns...); err != nil {
		_ = f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

// formatFloat renders the shortest decimal that round-trips.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
