// Package blas provides the dense vector primitives the sparse kernels and
// the Krylov solver are built on: fills, copies, scaled additions, dot
// products and the Euclidean norm, generic over the supported scalar types.
//
// Operations work on plain slices so they compose with any container. Length
// mismatches are programmer errors and panic with ErrLength; callers that
// size their workspaces correctly never pay for a check twice.
package blas
