package blas

import (
	"math"
	"math/cmplx"
)

// Scalar enumerates the element types the library supports. The set is
// closed on purpose: kernels dispatch on the concrete type in a few places
// and a named type with one of these underlying would silently miss the
// complex-conjugation paths.
type Scalar interface {
	float32 | float64 | complex64 | complex128
}

// FromFloat converts a real constant to T. For complex types the imaginary
// part is zero.
func FromFloat[T Scalar](f float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = float32(f)
	case *float64:
		*p = f
	case *complex64:
		*p = complex(float32(f), 0)
	case *complex128:
		*p = complex(f, 0)
	}
	return v
}

// FromComplex converts a complex constant to T. Real types keep only the
// real part.
func FromComplex[T Scalar](re, im float64) T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = float32(re)
	case *float64:
		*p = re
	case *complex64:
		*p = complex(float32(re), float32(im))
	case *complex128:
		*p = complex(re, im)
	}
	return v
}

// Components splits v into its real and imaginary parts. Real types have
// a zero imaginary part.
func Components[T Scalar](v T) (re, im float64) {
	switch x := any(v).(type) {
	case float32:
		return float64(x), 0
	case float64:
		return x, 0
	case complex64:
		return float64(real(x)), float64(imag(x))
	case complex128:
		return real(x), imag(x)
	}
	return 0, 0
}

// Conj returns the complex conjugate of v. For real types it is the
// identity.
func Conj[T Scalar](v T) T {
	switch p := any(&v).(type) {
	case *complex64:
		*p = complex(real(*p), -imag(*p))
	case *complex128:
		*p = cmplx.Conj(*p)
	}
	return v
}

// Abs returns the absolute value (modulus for complex types) of v.
func Abs[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

// IsFinite reports whether v is neither NaN nor infinite. For complex types
// both components must be finite.
func IsFinite[T Scalar](v T) bool {
	switch x := any(v).(type) {
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	case complex64:
		return finite(float64(real(x))) && finite(float64(imag(x)))
	case complex128:
		return finite(real(x)) && finite(imag(x))
	}
	return false
}

// IsComplex reports whether T is one of the complex scalar types.
func IsComplex[T Scalar]() bool {
	var v T
	switch any(v).(type) {
	case complex64, complex128:
		return true
	}
	return false
}

// Epsilon returns the machine epsilon of T's real component type.
func Epsilon[T Scalar]() float64 {
	var v T
	switch any(v).(type) {
	case float32, complex64:
		return 0x1p-23
	default:
		return 0x1p-52
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// absSq returns |v|² accumulated in float64, the building block of Nrm2.
func absSq[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		f := float64(x)
		return f * f
	case float64:
		return x * x
	case complex64:
		re, im := float64(real(x)), float64(imag(x))
		return re*re + im*im
	case complex128:
		re, im := real(x), imag(x)
		return re*re + im*im
	}
	return 0
}
