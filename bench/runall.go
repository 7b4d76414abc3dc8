package bench

import (
	"errors"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

// Report is the outcome for one format: either a skip with the refusal
// reason, or the correctness error plus the timing numbers.
type Report struct {
	Format     string
	Skipped    bool
	SkipReason string

	MaxError   float64
	Seconds    float64
	GFLOPS     float64
	GBps       float64
	Iterations int
}

// allFormats is the order the harness walks: restrictive formats first,
// the always-convertible ones last.
var allFormats = []matrix.Format{
	matrix.FormatDIA,
	matrix.FormatELL,
	matrix.FormatHYB,
	matrix.FormatCSR,
	matrix.FormatCOO,
}

// RunAll converts m to every sparse format, checks each kernel against
// the dense reference, and times it. Formats whose conversion is
// refused produce a Skipped report carrying the reason; any other
// error aborts the run.
func RunAll[T blas.Scalar](m matrix.Matrix[T], p *compute.Pool, h spmv.Hint, optFns ...func(*Options)) ([]Report, error) {
	o := DefaultOptions
	for _, fn := range optFns {
		fn(&o)
	}

	ref, err := matrix.ToDense(m)
	if err != nil {
		return nil, err
	}

	formats := o.Formats
	if len(formats) == 0 {
		formats = allFormats
	}

	reports := make([]Report, 0, len(formats))
	for _, f := range formats {
		converted, err := matrix.Convert(m, f)
		if err != nil {
			if errors.Is(err, matrix.ErrUnsuitableFormat) {
				reports = append(reports, Report{
					Format:     f.String(),
					Skipped:    true,
					SkipReason: err.Error(),
				})
				continue
			}
			return nil, err
		}

		maxErr, err := CheckSpMV(p, h, converted, ref, o.Seed)
		if err != nil {
			return nil, err
		}
		timing, err := TimeSpMV(p, h, converted, optFns...)
		if err != nil {
			return nil, err
		}

		reports = append(reports, Report{
			Format:     f.String(),
			MaxError:   maxErr,
			Seconds:    timing.SecondsPerCall,
			GFLOPS:     timing.GFLOPS,
			GBps:       timing.GBps,
			Iterations: timing.Iterations,
		})
	}
	return reports, nil
}
