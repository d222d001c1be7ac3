package filetree

import "github.com/papapumpkin/lineup/internal/convert"

// Map converts the value read by n. On write, the value is unapplied and
// handed to n.
func Map[A, B any](n Node[A], c convert.Conversion[A, B]) Node[B] {
	return mapNode[A, B]{node: n, conv: c}
}

type mapNode[A, B any] struct {
	node Node[A]
	conv convert.Conversion[A, B]
}

func (n mapNode[A, B]) Read(r *Reader, dir string) (B, error) {
	a, err := n.node.Read(r, dir)
	if err != nil {
		var zero B
		return zero, err
	}
	return n.conv.Apply(a)
}

func (n mapNode[A, B]) Write(w *Writer, dir string, v B) error {
	a, err := n.conv.Unapply(v)
	if err != nil {
		return err
	}
	return n.node.Write(w, dir, a)
}

// Contents lifts a conversion over file bytes to one over leaves, attaching
// the leaf's path to any decode failure.
func Contents[T any](c convert.Conversion[[]byte, T]) convert.Conversion[Leaf, T] {
	return convert.Func(
		func(leaf Leaf) (T, error) {
			v, err := c.Apply(leaf.Data)
			return v, convert.WithPath(err, leaf.Path)
		},
		func(v T) (Leaf, error) {
			data, err := c.Unapply(v)
			return Leaf{Data: data}, err
		},
	)
}

// Tuple2 is the result of sequencing two sibling nodes.
type Tuple2[A, B any] struct {
	V1 A
	V2 B
}

// Tuple3 is the result of sequencing three sibling nodes.
type Tuple3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

// Tuple5 is the result of sequencing five sibling nodes.
type Tuple5[A, B, C, D, E any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
}

// Seq2 reads two siblings from the same directory.
func Seq2[A, B any](a Node[A], b Node[B]) Node[Tuple2[A, B]] {
	return seq2[A, B]{a: a, b: b}
}

type seq2[A, B any] struct {
	a Node[A]
	b Node[B]
}

func (s seq2[A, B]) Read(r *Reader, dir string) (Tuple2[A, B], error) {
	var t Tuple2[A, B]
	var err error
	if t.V1, err = s.a.Read(r, dir); err != nil {
		return t, err
	}
	if t.V2, err = s.b.Read(r, dir); err != nil {
		return t, err
	}
	return t, nil
}

func (s seq2[A, B]) Write(w *Writer, dir string, t Tuple2[A, B]) error {
	if err := s.a.Write(w, dir, t.V1); err != nil {
		return err
	}
	return s.b.Write(w, dir, t.V2)
}

// Seq3 reads three siblings from the same directory.
func Seq3[A, B, C any](a Node[A], b Node[B], c Node[C]) Node[Tuple3[A, B, C]] {
	return seq3[A, B, C]{a: a, b: b, c: c}
}

type seq3[A, B, C any] struct {
	a Node[A]
	b Node[B]
	c Node[C]
}

func (s seq3[A, B, C]) Read(r *Reader, dir string) (Tuple3[A, B, C], error) {
	var t Tuple3[A, B, C]
	var err error
	if t.V1, err = s.a.Read(r, dir); err != nil {
		return t, err
	}
	if t.V2, err = s.b.Read(r, dir); err != nil {
		return t, err
	}
	if t.V3, err = s.c.Read(r, dir); err != nil {
		return t, err
	}
	return t, nil
}

func (s seq3[A, B, C]) Write(w *Writer, dir string, t Tuple3[A, B, C]) error {
	if err := s.a.Write(w, dir, t.V1); err != nil {
		return err
	}
	if err := s.b.Write(w, dir, t.V2); err != nil {
		return err
	}
	return s.c.Write(w, dir, t.V3)
}

// Seq5 reads five siblings from the same directory.
func Seq5[A, B, C, D, E any](a Node[A], b Node[B], c Node[C], d Node[D], e Node[E]) Node[Tuple5[A, B, C, D, E]] {
	return seq5[A, B, C, D, E]{a: a, b: b, c: c, d: d, e: e}
}

type seq5[A, B, C, D, E any] struct {
	a Node[A]
	b Node[B]
	c Node[C]
	d Node[D]
	e Node[E]
}

func (s seq5[A, B, C, D, E]) Read(r *Reader, dir string) (Tuple5[A, B, C, D, E], error) {
	var t Tuple5[A, B, C, D, E]
	var err error
	if t.V1, err = s.a.Read(r, dir); err != nil {
		return t, err
	}
	if t.V2, err = s.b.Read(r, dir); err != nil {
		return t, err
	}
	if t.V3, err = s.c.Read(r, dir); err != nil {
		return t, err
	}
	if t.V4, err = s.d.Read(r, dir); err != nil {
		return t, err
	}
	if t.V5, err = s.e.Read(r, dir); err != nil {
		return t, err
	}
	return t, nil
}

func (s seq5[A, B, C, D, E]) Write(w *Writer, dir string, t Tuple5[A, B, C, D, E]) error {
	if err := s.a.Write(w, dir, t.V1); err != nil {
		return err
	}
	if err := s.b.Write(w, dir, t.V2); err != nil {
		return err
	}
	if err := s.c.Write(w, dir, t.V3); err != nil {
		return err
	}
	if err := s.d.Write(w, dir, t.V4); err != nil {
		return err
	}
	return s.e.Write(w, dir, t.V5)
}
