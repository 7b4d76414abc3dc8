package matrix

import (
	"fmt"

	"github.com/hupe1980/sparsego/blas"
)

// ToCOO converts any matrix to canonical COO in the source's space. The
// conversion is total; only allocation can fail. Same-format sources
// deep-copy.
func ToCOO[T blas.Scalar](m Matrix[T]) (*COO[T], error) {
	switch src := m.(type) {
	case *COO[T]:
		return src.Clone()
	case *CSR[T]:
		return csrToCOO(src)
	}
	rows, cols := m.Dims()
	dst, err := NewCOOOn[T](m.Space(), rows, cols, m.NumEntries())
	if err != nil {
		return nil, err
	}
	k := 0
	for e := range m.Entries() {
		if k == len(dst.Values) {
			dst.Free()
			return nil, streamOverrun(m)
		}
		dst.RowIndices[k] = e.Row
		dst.ColIndices[k] = e.Col
		dst.Values[k] = e.Value
		k++
	}
	if err := dst.Resize(rows, cols, k); err != nil {
		dst.Free()
		return nil, err
	}
	return dst, nil
}

// ToCSR converts any matrix to CSR in the source's space. The conversion
// is total; only allocation can fail.
func ToCSR[T blas.Scalar](m Matrix[T]) (*CSR[T], error) {
	switch src := m.(type) {
	case *CSR[T]:
		return src.Clone()
	case *COO[T]:
		return cooToCSR(src)
	}
	rows, cols := m.Dims()
	dst, err := NewCSROn[T](m.Space(), rows, cols, m.NumEntries())
	if err != nil {
		return nil, err
	}
	k, row := 0, 0
	for e := range m.Entries() {
		if k == len(dst.Values) {
			dst.Free()
			return nil, streamOverrun(m)
		}
		for row < e.Row {
			row++
			dst.RowOffsets[row] = k
		}
		dst.ColIndices[k] = e.Col
		dst.Values[k] = e.Value
		k++
	}
	for row < rows {
		row++
		dst.RowOffsets[row] = k
	}
	if k != len(dst.Values) {
		if err := dst.Resize(rows, cols, k); err != nil {
			dst.Free()
			return nil, err
		}
	}
	return dst, nil
}

// ToDense converts any matrix to dense row-major form in the source's
// space. The conversion is total; only allocation can fail. Watch the
// footprint: it is rows·cols elements whatever the sparsity.
func ToDense[T blas.Scalar](m Matrix[T]) (*Dense[T], error) {
	if src, ok := m.(*Dense[T]); ok {
		return src.Clone()
	}
	rows, cols := m.Dims()
	dst, err := NewDenseOn[T](m.Space(), rows, cols)
	if err != nil {
		return nil, err
	}
	for e := range m.Entries() {
		dst.Data[e.Row*cols+e.Col] = e.Value
	}
	return dst, nil
}

// ToDIA converts to diagonal form when the pattern suits it. An unsuitable
// pattern (too many occupied diagonals for the entry count) returns a
// *ConversionError wrapping ErrUnsuitableFormat and no matrix; callers fall
// back to another format. Explicit zeros do not survive the trip: the dense
// lanes cannot tell them from padding.
func ToDIA[T blas.Scalar](m Matrix[T], optFns ...func(*ConvertOptions)) (*DIA[T], error) {
	if src, ok := m.(*DIA[T]); ok {
		return src.Clone()
	}
	o := applyConvertOptions(optFns)

	a := Analyze(m)
	stride := max(a.Rows, a.Cols)
	footprint := a.OccupiedDiagonals * stride
	if unsuitable(footprint, a.Entries, o) {
		return nil, &ConversionError{
			From: m.Format(), To: FormatDIA,
			Rows: a.Rows, Cols: a.Cols, Entries: a.Entries,
			Reason: fillReason(footprint, a.Entries, o),
		}
	}

	offs := a.Diagonals()
	dst, err := NewDIAOn[T](m.Space(), a.Rows, a.Cols, 0, len(offs))
	if err != nil {
		return nil, err
	}
	copy(dst.Offsets, offs)
	lane := make(map[int]int, len(offs))
	for d, off := range offs {
		lane[off] = d
	}
	nnz := 0
	for e := range m.Entries() {
		if e.Value == 0 {
			continue
		}
		d := lane[e.Col-e.Row]
		dst.Data[d*stride+e.Row] = e.Value
		nnz++
	}
	dst.nnz = nnz
	return dst, nil
}

// ToELL converts to fixed-width slotted form when the pattern suits it:
// the width is the longest row, so one outlier row can make the padded
// footprint blow past the fill limits and the conversion refuses with a
// *ConversionError wrapping ErrUnsuitableFormat.
func ToELL[T blas.Scalar](m Matrix[T], optFns ...func(*ConvertOptions)) (*ELL[T], error) {
	if src, ok := m.(*ELL[T]); ok {
		return src.Clone()
	}
	o := applyConvertOptions(optFns)

	a := Analyze(m)
	footprint := a.MaxRowLen * a.Rows
	if unsuitable(footprint, a.Entries, o) {
		return nil, &ConversionError{
			From: m.Format(), To: FormatELL,
			Rows: a.Rows, Cols: a.Cols, Entries: a.Entries,
			Reason: fillReason(footprint, a.Entries, o),
		}
	}

	dst, err := NewELLOn[T](m.Space(), a.Rows, a.Cols, a.Entries, a.MaxRowLen)
	if err != nil {
		return nil, err
	}
	slot := make([]int, a.Rows)
	stride := dst.Stride()
	for e := range m.Entries() {
		s := slot[e.Row]
		slot[e.Row]++
		dst.ColIndices[s*stride+e.Row] = e.Col
		dst.Values[s*stride+e.Row] = e.Value
	}
	return dst, nil
}

// ToHYB converts to the hybrid form: a slotted part wide enough for most
// rows, the rest spilled to coordinate overflow. The width is the smallest
// one that keeps the overflowing rows at or under HybCoverage of all rows.
// At the default options the padded-fill refusal is unreachable because the
// chosen width always satisfies width·rows < Entries/HybCoverage; tighter
// coverage or fill settings make refusal reachable.
func ToHYB[T blas.Scalar](m Matrix[T], optFns ...func(*ConvertOptions)) (*HYB[T], error) {
	if src, ok := m.(*HYB[T]); ok {
		return src.Clone()
	}
	o := applyConvertOptions(optFns)

	a := Analyze(m)
	budget := int(o.HybCoverage * float64(a.Rows))
	if budget < 0 {
		budget = 0
	}
	width, longer := 0, a.OccupiedRows
	for longer > budget {
		width++
		longer -= a.RowLengthHistogram[width]
	}
	footprint := width * a.Rows
	if unsuitable(footprint, a.Entries, o) {
		return nil, &ConversionError{
			From: m.Format(), To: FormatHYB,
			Rows: a.Rows, Cols: a.Cols, Entries: a.Entries,
			Reason: fillReason(footprint, a.Entries, o),
		}
	}

	overflow := a.EntriesBeyond(width)
	ell, err := NewELLOn[T](m.Space(), a.Rows, a.Cols, 0, width)
	if err != nil {
		return nil, err
	}
	coo, err := NewCOOOn[T](m.Space(), a.Rows, a.Cols, overflow)
	if err != nil {
		ell.Free()
		return nil, err
	}

	// Split each row at the width: the stream is sorted, so entry k of its
	// row lands in slot k or, past the width, appends to the overflow in
	// already-sorted order.
	ellNNZ, k := 0, 0
	slot := make([]int, a.Rows)
	stride := ell.Stride()
	for e := range m.Entries() {
		s := slot[e.Row]
		slot[e.Row]++
		if s < width {
			ell.ColIndices[s*stride+e.Row] = e.Col
			ell.Values[s*stride+e.Row] = e.Value
			ellNNZ++
			continue
		}
		coo.RowIndices[k] = e.Row
		coo.ColIndices[k] = e.Col
		coo.Values[k] = e.Value
		k++
	}
	ell.nnz = ellNNZ
	return &HYB[T]{ELL: ell, COO: coo}, nil
}

// Convert dispatches to the target format's converter, returning the
// result as the Matrix interface.
func Convert[T blas.Scalar](m Matrix[T], to Format, optFns ...func(*ConvertOptions)) (Matrix[T], error) {
	switch to {
	case FormatCOO:
		return ToCOO(m)
	case FormatCSR:
		return ToCSR(m)
	case FormatDIA:
		return ToDIA(m, optFns...)
	case FormatELL:
		return ToELL(m, optFns...)
	case FormatHYB:
		return ToHYB(m, optFns...)
	case FormatDense:
		return ToDense(m)
	default:
		return nil, fmt.Errorf("%w: unknown target format %d", ErrUnsuitableFormat, int(to))
	}
}

func csrToCOO[T blas.Scalar](src *CSR[T]) (*COO[T], error) {
	dst, err := NewCOOOn[T](src.Space(), src.rows, src.cols, len(src.Values))
	if err != nil {
		return nil, err
	}
	for i := 0; i < src.rows; i++ {
		for k := src.RowOffsets[i]; k < src.RowOffsets[i+1]; k++ {
			dst.RowIndices[k] = i
		}
	}
	copy(dst.ColIndices, src.ColIndices)
	copy(dst.Values, src.Values)
	return dst, nil
}

func cooToCSR[T blas.Scalar](src *COO[T]) (*CSR[T], error) {
	dst, err := NewCSROn[T](src.Space(), src.rows, src.cols, len(src.Values))
	if err != nil {
		return nil, err
	}
	for _, r := range src.RowIndices {
		dst.RowOffsets[r+1]++
	}
	for i := 0; i < src.rows; i++ {
		dst.RowOffsets[i+1] += dst.RowOffsets[i]
	}
	copy(dst.ColIndices, src.ColIndices)
	copy(dst.Values, src.Values)
	return dst, nil
}

// unsuitable applies the padded-fill refusal rule: refuse only when the
// footprint is past the always-convert floor and past the fill ratio.
func unsuitable(footprint, entries int, o ConvertOptions) bool {
	return footprint > o.FillFloor && float64(footprint) > o.MaxFill*float64(entries)
}

func fillReason(footprint, entries int, o ConvertOptions) string {
	return fmt.Sprintf("%d padded slots for %d entries exceeds fill ratio %g over floor %d",
		footprint, entries, o.MaxFill, o.FillFloor)
}

func streamOverrun[T blas.Scalar](m Matrix[T]) error {
	return fmt.Errorf("%w: %s entry stream exceeds its declared count %d",
		ErrInvalidPattern, m.Format(), m.NumEntries())
}
