// Package sparsego provides sparse linear algebra for Go.
//
// Sparsego stores sparse matrices in five formats (COO, CSR, DIA, ELL,
// HYB), converts between them with pattern-aware refusal thresholds,
// computes matrix-vector products with format-specific parallel
// kernels, and solves general linear systems with a BiCGSTAB solver
// built on those primitives:
//
//   - Multiple storage formats with explicit conversion semantics:
//     conversion to COO/CSR always succeeds, conversion to DIA/ELL/HYB
//     refuses patterns whose padding would blow up the footprint
//   - Memory spaces with byte budgets and paced cross-space transfers
//   - Worker-pool parallel product kernels with deterministic reductions
//   - Pluggable stopping criteria and preconditioners for the solver
//   - Matrix Market and compressed binary snapshot I/O
//   - Matrix corpus stores: local mmap, memory, S3, MinIO, disk cache
//
// # Quick Start
//
// Build a solver once, reuse it across systems:
//
//	s, err := sparsego.BiCGSTAB[float64]().
//	    Tolerance(1e-8).
//	    MaxIterations(200).
//	    Formats(matrix.FormatDIA, matrix.FormatELL, matrix.FormatCSR).
//	    Workers(8).
//	    Build()
//	if err != nil { ... }
//	defer s.Close()
//
//	res, err := s.Solve(ctx, a, x, b)
//	if err != nil { ... }
//	if !res.Converged { ... } // iteration limit is an outcome, not an error
//
// The Formats chain is tried in order: structured formats first, with
// a total format (COO or CSR) as the guaranteed fallback.
//
// Lower-level use goes straight to the packages: matrix for containers
// and conversion, spmv for kernels, krylov for the solver, market and
// snapshot for I/O, corpus for matrix collections.
package sparsego
