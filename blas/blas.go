package blas

import (
	"errors"
	"math"
)

// ErrLength is the panic value raised when slice arguments disagree in
// length. It is a value, not a type, so recovered handlers can compare with
// errors.Is.
var ErrLength = errors.New("blas: slice length mismatch")

func checkLen(n int, lens ...int) {
	for _, l := range lens {
		if l != n {
			panic(ErrLength)
		}
	}
}

// Fill sets every element of x to v.
func Fill[T Scalar](x []T, v T) {
	for i := range x {
		x[i] = v
	}
}

// Copy copies src into dst. Panics with ErrLength if the lengths differ.
func Copy[T Scalar](dst, src []T) {
	checkLen(len(dst), len(src))
	copy(dst, src)
}

// Scale multiplies every element of x by a in place.
func Scale[T Scalar](x []T, a T) {
	for i := range x {
		x[i] *= a
	}
}

// Axpy computes y += a·x.
func Axpy[T Scalar](y, x []T, a T) {
	checkLen(len(y), len(x))
	for i := range y {
		y[i] += a * x[i]
	}
}

// Axpby computes z = a·x + b·y. z may alias x or y exactly; partial overlap
// is not supported.
func Axpby[T Scalar](z, x, y []T, a, b T) {
	checkLen(len(z), len(x), len(y))
	for i := range z {
		z[i] = a*x[i] + b*y[i]
	}
}

// Axpbypcz computes w = a·x + b·y + c·z. w may alias any of x, y, z exactly.
func Axpbypcz[T Scalar](w, x, y, z []T, a, b, c T) {
	checkLen(len(w), len(x), len(y), len(z))
	for i := range w {
		w[i] = a*x[i] + b*y[i] + c*z[i]
	}
}

// Dot returns the unconjugated dot product Σ x[i]·y[i].
func Dot[T Scalar](x, y []T) T {
	checkLen(len(x), len(y))
	var sum T
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

// Dotc returns the conjugated dot product Σ conj(x[i])·y[i]. For real types
// it is identical to Dot.
func Dotc[T Scalar](x, y []T) T {
	checkLen(len(x), len(y))
	switch xs := any(x).(type) {
	case []complex64:
		ys := any(y).([]complex64)
		var sum complex64
		for i := range xs {
			sum += complex(real(xs[i]), -imag(xs[i])) * ys[i]
		}
		return any(sum).(T)
	case []complex128:
		ys := any(y).([]complex128)
		var sum complex128
		for i := range xs {
			sum += complex(real(xs[i]), -imag(xs[i])) * ys[i]
		}
		return any(sum).(T)
	}
	return Dot(x, y)
}

// Nrm2 returns the Euclidean norm of x. The result is always real; squares
// are accumulated in float64 regardless of T.
func Nrm2[T Scalar](x []T) float64 {
	var sum float64
	for i := range x {
		sum += absSq(x[i])
	}
	return math.Sqrt(sum)
}
