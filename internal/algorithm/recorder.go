package algorithm

import (
	"context"

	"github.com/roach88/sortstep/internal/ir"
)

// recorder is the per-run state of a precompute strategy: a private working
// copy of the input and the log being built.
//
// Strategies must only touch array through the primitives below; direct
// indexing is reserved for bookkeeping that does not correspond to an
// observable access.
type recorder struct {
	ctx    context.Context
	array  []int
	events []ir.Event
}

func newRecorder(ctx context.Context, input []int) *recorder {
	return &recorder{
		ctx:    ctx,
		array:  append([]int(nil), input...),
		events: make([]ir.Event, 0, 4*len(input)+1),
	}
}

// stopped reports whether the run has been cancelled.
func (r *recorder) stopped() bool {
	return r.ctx.Err() != nil
}

func (r *recorder) size() int {
	return len(r.array)
}

// compare reports array[i] > array[j].
func (r *recorder) compare(i, j int) bool {
	r.events = append(r.events, ir.Compare(i, j))
	return r.array[i] > r.array[j]
}

func (r *recorder) swap(i, j int) {
	r.events = append(r.events, ir.Swap(i, j))
	r.array[i], r.array[j] = r.array[j], r.array[i]
}

// move copies array[j] into array[i].
func (r *recorder) move(i, j int) {
	r.events = append(r.events, ir.Move(i, j))
	r.array[i] = r.array[j]
}

func (r *recorder) set(i, v int) {
	r.events = append(r.events, ir.Set(i, v))
	r.array[i] = v
}

func (r *recorder) read(i int) int {
	v := r.array[i]
	r.events = append(r.events, ir.Read(i, v))
	return v
}

func (r *recorder) end() {
	r.events = append(r.events, ir.End())
}
