// Package krylov implements iterative solvers for sparse linear systems.
//
// BiCGSTAB is the workhorse: it handles general non-symmetric systems,
// takes any operator.Operator as the system matrix or preconditioner,
// and reports how the run ended in a Result instead of forcing callers
// to untangle errors. Running out of iterations is a normal outcome; a
// numerical breakdown of the recurrence is the only solver failure.
//
// Stopping is pluggable through the Monitor interface. DefaultMonitor
// checks the residual norm against relTol·‖b‖ + absTol and caps the
// iteration count.
package krylov
