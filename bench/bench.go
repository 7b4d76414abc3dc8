package bench

import (
	"math"
	"math/rand"
	"time"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/compute"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/spmv"
)

// Options configures the timing protocol.
type Options struct {
	// TargetSeconds is the wall-time window the measured loop should
	// fill.
	TargetSeconds float64

	// MinIterations and MaxIterations clamp the iteration count chosen
	// from the warmup estimate.
	MinIterations int
	MaxIterations int

	// Seed drives the input vector generator.
	Seed int64

	// Formats restricts which formats RunAll walks. Empty means all of
	// them, restrictive formats first.
	Formats []matrix.Format
}

// DefaultOptions mirrors the protocol constants of the measurement
// harness this package descends from.
var DefaultOptions = Options{
	TargetSeconds: 3.0,
	MinIterations: 1,
	MaxIterations: 500,
	Seed:          1,
}

// WithTargetSeconds sets the wall-time window.
func WithTargetSeconds(s float64) func(*Options) {
	return func(o *Options) { o.TargetSeconds = s }
}

// WithMinIterations sets the lower iteration clamp.
func WithMinIterations(n int) func(*Options) {
	return func(o *Options) { o.MinIterations = n }
}

// WithMaxIterations sets the upper iteration clamp.
func WithMaxIterations(n int) func(*Options) {
	return func(o *Options) { o.MaxIterations = n }
}

// WithSeed sets the input generator seed.
func WithSeed(seed int64) func(*Options) {
	return func(o *Options) { o.Seed = seed }
}

// WithFormats restricts RunAll to the given formats.
func WithFormats(formats ...matrix.Format) func(*Options) {
	return func(o *Options) { o.Formats = formats }
}

// Timing is the outcome of one TimeSpMV run.
type Timing struct {
	SecondsPerCall float64
	Iterations     int
	GFLOPS         float64
	GBps           float64
}

// CheckSpMV runs the kernel for m once against a dense reference
// product and returns the relative L2 error of the result. Inputs are
// small random integers so float64 reference sums stay exact.
func CheckSpMV[T blas.Scalar](p *compute.Pool, h spmv.Hint, m matrix.Matrix[T], ref *matrix.Dense[T], seed int64) (float64, error) {
	rows, cols := m.Dims()

	rng := rand.New(rand.NewSource(seed))
	x := make([]T, cols)
	for i := range x {
		x[i] = blas.FromFloat[T](float64(rng.Intn(21) - 10))
	}

	want := make([]T, rows)
	if err := ref.MulVec(want, x); err != nil {
		return 0, err
	}

	got := make([]T, rows)
	if err := spmv.Auto(p, h, m, x, got); err != nil {
		return 0, err
	}

	return relativeL2(got, want), nil
}

// relativeL2 returns ‖got−want‖ / ‖want‖ (absolute when want is zero).
func relativeL2[T blas.Scalar](got, want []T) float64 {
	var num, den float64
	for i := range want {
		d := blas.Abs(got[i] - want[i])
		num += d * d
		w := blas.Abs(want[i])
		den += w * w
	}
	if den == 0 {
		return math.Sqrt(num)
	}
	return math.Sqrt(num / den)
}

// TimeSpMV times the kernel for m: one warmup call, then an iteration
// count chosen to fill the target window, clamped to the configured
// bounds.
func TimeSpMV[T blas.Scalar](p *compute.Pool, h spmv.Hint, m matrix.Matrix[T], optFns ...func(*Options)) (Timing, error) {
	o := DefaultOptions
	for _, fn := range optFns {
		fn(&o)
	}

	rows, cols := m.Dims()
	x := make([]T, cols)
	rng := rand.New(rand.NewSource(o.Seed))
	for i := range x {
		x[i] = blas.FromFloat[T](rng.Float64())
	}
	y := make([]T, rows)

	warmup := time.Now()
	if err := spmv.Auto(p, h, m, x, y); err != nil {
		return Timing{}, err
	}
	estimate := time.Since(warmup).Seconds()

	iterations := o.MaxIterations
	if estimate > 0 {
		want := int(o.TargetSeconds / estimate)
		iterations = min(o.MaxIterations, max(o.MinIterations, want))
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := spmv.Auto(p, h, m, x, y); err != nil {
			return Timing{}, err
		}
	}
	perCall := time.Since(start).Seconds() / float64(iterations)

	t := Timing{SecondsPerCall: perCall, Iterations: iterations}
	if perCall > 0 {
		t.GFLOPS = 2 * float64(m.NumEntries()) / perCall / 1e9
		t.GBps = float64(bytesPerSpMV(m)) / perCall / 1e9
	}
	return t, nil
}
