// Package vector provides the dense vector container used on both sides of
// the sparse product and throughout the solver: a contiguous buffer tagged
// with the memory space it lives in.
package vector

import (
	"context"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/mem"
)

// Vector is an n-element dense vector. Data is exported for kernel access;
// treat it as owned by the vector and resize only through Resize.
type Vector[T blas.Scalar] struct {
	Data []T

	space *mem.Space
	owned bool // false for adopted slices; their budget was never charged
}

// New creates a zeroed host-space vector of length n.
func New[T blas.Scalar](n int) *Vector[T] {
	v, err := NewOn[T](mem.Host(), n)
	if err != nil {
		// The host space is unbounded; Make cannot fail on it.
		panic(err)
	}
	return v
}

// NewOn creates a zeroed vector of length n in space s. Fails with
// mem.ErrSpaceExhausted when the space cannot fit it.
func NewOn[T blas.Scalar](s *mem.Space, n int) (*Vector[T], error) {
	data, err := mem.Make[T](s, n)
	if err != nil {
		return nil, err
	}
	return &Vector[T]{Data: data, space: s, owned: true}, nil
}

// FromSlice wraps data as a host-space vector. The slice is adopted, not
// copied.
func FromSlice[T blas.Scalar](data []T) *Vector[T] {
	return &Vector[T]{Data: data, space: mem.Host()}
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.Data) }

// Space returns the memory space the vector lives in.
func (v *Vector[T]) Space() *mem.Space { return v.space }

// Fill sets every element to val.
func (v *Vector[T]) Fill(val T) { blas.Fill(v.Data, val) }

// Norm returns the Euclidean norm of the vector.
func (v *Vector[T]) Norm() float64 { return blas.Nrm2(v.Data) }

// Clone returns a copy of the vector in the same space.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	c, err := NewOn[T](v.space, len(v.Data))
	if err != nil {
		return nil, err
	}
	copy(c.Data, v.Data)
	return c, nil
}

// Resize changes the length to n. The common prefix is preserved; growth
// zero-fills the tail. Shrinking keeps the buffer and its budget — call
// Free to return it.
func (v *Vector[T]) Resize(n int) error {
	switch {
	case n == len(v.Data):
		return nil
	case n <= cap(v.Data):
		old := len(v.Data)
		v.Data = v.Data[:n]
		// Regrown tails may hold stale values from before a shrink.
		for i := old; i < n; i++ {
			var zero T
			v.Data[i] = zero
		}
		return nil
	}

	data, err := mem.Make[T](v.space, n)
	if err != nil {
		return err
	}
	copy(data, v.Data)
	if v.owned {
		mem.Release(v.space, v.Data[:cap(v.Data)])
	}
	v.Data = data
	v.owned = true
	return nil
}

// Swap exchanges the buffers of two vectors in O(1). Both must live in the
// same space; otherwise mem.ErrSpaceMismatch.
func (v *Vector[T]) Swap(o *Vector[T]) error {
	if v.space != o.space {
		return mem.ErrSpaceMismatch
	}
	v.Data, o.Data = o.Data, v.Data
	v.owned, o.owned = o.owned, v.owned
	return nil
}

// Rebind copies the vector into space s and returns the new vector. The
// receiver is untouched; rebinding to the same space still copies.
func (v *Vector[T]) Rebind(ctx context.Context, s *mem.Space) (*Vector[T], error) {
	nv, err := NewOn[T](s, len(v.Data))
	if err != nil {
		return nil, err
	}
	if err := mem.Copy(ctx, nv.Data, s, v.Data, v.space); err != nil {
		nv.Free()
		return nil, err
	}
	return nv, nil
}

// Free releases the buffer's budget back to its space and empties the
// vector. Safe to call more than once; adopted slices are dropped without
// a budget release.
func (v *Vector[T]) Free() {
	if v.Data == nil {
		return
	}
	if v.owned {
		mem.Release(v.space, v.Data[:cap(v.Data)])
	}
	v.Data = nil
}
