// Package bench measures sparse matrix-vector product kernels.
//
// CheckSpMV validates a kernel against a dense reference product and
// reports the relative L2 error. TimeSpMV runs the warmup-then-measure
// protocol: one untimed call estimates the per-call cost, the iteration
// count is chosen to fill a target wall-time window clamped to
// [MinIterations, MaxIterations], and the timed loop reports seconds
// per call plus derived GFLOP/s and effective GB/s. RunAll applies
// both to every sparse format, skipping formats that refuse the
// conversion.
package bench
