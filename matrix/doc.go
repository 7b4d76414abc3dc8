// Package matrix provides the sparse storage formats and the conversions
// between them.
//
// Five sparse formats plus a dense fallback implement the Matrix interface:
//
//   - COO: sorted coordinate triples, the canonical interchange format
//   - CSR: compressed sparse row, the general-purpose compute format
//   - DIA: diagonal storage for banded patterns
//   - ELL: fixed-width rows for patterns with uniform row lengths
//   - HYB: an ELL part for the typical row plus a COO overflow stream
//
// Pattern arrays and value arrays are kept separate so structure-only logic
// never touches values. Conversions to COO, CSR and Dense always succeed;
// conversions to DIA, ELL and HYB are partial and fail with a
// *ConversionError (wrapping ErrUnsuitableFormat) when the padded footprint
// would blow past the configured fill budget. On failure no destination is
// produced — falling back to another format is the caller's decision.
//
// Every container carries a mem.Space tag. Conversions allocate in the
// source's space; Rebind is the only way to move a matrix elsewhere.
package matrix
