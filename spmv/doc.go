// Package spmv provides the tuned sparse matrix-vector product kernels.
//
// Each kernel is shaped around one storage layout: CSRScalar walks rows in
// parallel, CSRVector balances work by nonzeros and merges split rows
// deterministically, COO runs a segmented reduction over the entry stream,
// DIA gathers along diagonal lanes, and ELL gathers fixed-width slots.
// Auto dispatches on the concrete matrix type and takes care of the
// per-format write discipline, so most callers only need Auto.
//
// Kernels that accumulate (COO, DIA) require y to be zeroed by the caller;
// kernels that overwrite (CSR, ELL) do not read y at all. HYB combines
// both: the ELL part overwrites, the overflow accumulates on top.
//
// All kernels accept a *compute.Pool for parallel execution. A nil pool
// runs the kernel serially. For a fixed pool and hint the results are
// reproducible run to run: parallel partials are merged in a fixed order.
package spmv
