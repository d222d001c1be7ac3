// Package convert provides invertible, composable conversions used to turn
// raw file contents into typed values and back.
package convert

import "errors"

// ErrNotInvertible is returned by Unapply on conversions that only read.
var ErrNotInvertible = errors.New("conversion is not invertible")

// Conversion maps In to Out and back. Apply is the read direction; Unapply is
// the write direction and must produce an In that Apply maps to an equivalent
// Out.
type Conversion[In, Out any] interface {
	Apply(In) (Out, error)
	Unapply(Out) (In, error)
}

type funcConversion[In, Out any] struct {
	apply   func(In) (Out, error)
	unapply func(Out) (In, error)
}

func (c funcConversion[In, Out]) Apply(in In) (Out, error) { return c.apply(in) }

func (c funcConversion[In, Out]) Unapply(out Out) (In, error) {
	if c.unapply == nil {
		var zero In
		return zero, ErrNotInvertible
	}
	return c.unapply(out)
}

// Func builds a Conversion from a pair of functions. A nil unapply makes the
// conversion read-only.
func Func[In, Out any](apply func(In) (Out, error), unapply func(Out) (In, error)) Conversion[In, Out] {
	return funcConversion[In, Out]{apply: apply, unapply: unapply}
}

// Chain runs first then second on Apply, and the reverse on Unapply. The
// first failing stage stops the chain.
func Chain[A, B, C any](first Conversion[A, B], second Conversion[B, C]) Conversion[A, C] {
	return Func(
		func(a A) (C, error) {
			b, err := first.Apply(a)
			if err != nil {
				var zero C
				return zero, err
			}
			return second.Apply(b)
		},
		func(c C) (A, error) {
			b, err := second.Unapply(c)
			if err != nil {
				var zero A
				return zero, err
			}
			return first.Unapply(b)
		},
	)
}

// Chain3 is Chain over three stages.
func Chain3[A, B, C, D any](first Conversion[A, B], second Conversion[B, C], third Conversion[C, D]) Conversion[A, D] {
	return Chain(Chain(first, second), third)
}

// Each lifts c over a slice, preserving order. The first failing element
// fails the whole slice.
func Each[A, B any](c Conversion[A, B]) Conversion[[]A, []B] {
	return Func(
		func(in []A) ([]B, error) {
			out := make([]B, 0, len(in))
			for _, a := range in {
				b, err := c.Apply(a)
				if err != nil {
					return nil, err
				}
				out = append(out, b)
			}
			return out, nil
		},
		func(in []B) ([]A, error) {
			out := make([]A, 0, len(in))
			for _, b := range in {
				a, err := c.Unapply(b)
				if err != nil {
					return nil, err
				}
				out = append(out, a)
			}
			return out, nil
		},
	)
}

// Optional lifts c over pointers: nil maps to nil in both directions.
func Optional[A, B any](c Conversion[A, B]) Conversion[*A, *B] {
	return Func(
		func(a *A) (*B, error) {
			if a == nil {
				return nil, nil
			}
			b, err := c.Apply(*a)
			if err != nil {
				return nil, err
			}
			return &b, nil
		},
		func(b *B) (*A, error) {
			if b == nil {
				return nil, nil
			}
			a, err := c.Unapply(*b)
			if err != nil {
				return nil, err
			}
			return &a, nil
		},
	)
}
