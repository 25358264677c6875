package pipeline

import "context"

// stage is an iterator computed from an upstream one.
type stage[I, O any] struct {
	src  Iterator[I]
	next func(ctx context.Context, src Iterator[I]) (O, bool, error)
}

func (s *stage[I, O]) Next(ctx context.Context) (O, bool, error) { return s.next(ctx, s.src) }

func (s *stage[I, O]) Close() error { return s.src.Close() }

func derive[I, O any](p *Pipeline[I], next func(context.Context, Iterator[I]) (O, bool, error)) *Pipeline[O] {
	return &Pipeline[O]{open: func(ctx context.Context) Iterator[O] {
		return &stage[I, O]{src: p.open(ctx), next: next}
	}}
}

// Map applies fn to each value. An error from fn ends the stream and the
// value is dropped.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return derive(p, func(ctx context.Context, src Iterator[I]) (O, bool, error) {
		var zero O
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		out, err := fn(ctx, v)
		if err != nil {
			return zero, false, err
		}
		return out, true, nil
	})
}

// Filter drops values for which keep returns false.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return derive(p, func(ctx context.Context, src Iterator[T]) (T, bool, error) {
		for {
			v, ok, err := src.Next(ctx)
			if err != nil || !ok || keep(v) {
				return v, ok && err == nil, err
			}
		}
	})
}

// Tap runs fn on each value and passes it on unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return derive(p, func(ctx context.Context, src Iterator[T]) (T, bool, error) {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		if err := fn(ctx, v); err != nil {
			var zero T
			return zero, false, err
		}
		return v, true, nil
	})
}
