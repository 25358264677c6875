package pipeline

import "context"

// Iterator yields values one at a time. Next reports (zero, false, nil)
// once the stream is exhausted.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Pipeline is a lazy stream description. Nothing is pulled until a
// terminal runs it.
type Pipeline[T any] struct {
	open func(ctx context.Context) Iterator[T]
}

// Runnable is a pipeline bound to its terminal.
type Runnable struct {
	run func(ctx context.Context) error
}

func (r *Runnable) Run(ctx context.Context) error { return r.run(ctx) }

// From wraps an existing iterator.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{open: func(context.Context) Iterator[T] { return it }}
}

// FromSlice streams items in order and stops with ctx.Err() once ctx is
// done.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{open: func(context.Context) Iterator[T] {
		return &sliceIter[T]{items: items}
	}}
}

// Drain pulls every value into sink. The first error from the stream or
// the sink stops the run.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{run: func(ctx context.Context) error {
		it := p.open(ctx)
		defer it.Close()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil || !ok {
				return err
			}
			if err := sink(ctx, v); err != nil {
				return err
			}
		}
	}}
}

// ForEach runs p to completion, calling fn on every value.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

type sliceIter[T any] struct {
	items []T
	pos   int
}

func (it *sliceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if it.pos == len(it.items) {
		return zero, false, nil
	}
	it.pos++
	return it.items[it.pos-1], true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
