package algorithm

import "math/bits"

// quickSort is Lomuto-partition quicksort with the last element as pivot.
func quickSort(r *recorder) {
	quickRange(r, 0, r.size()-1)
}

func quickRange(r *recorder, lo, hi int) {
	if lo >= hi || r.stopped() {
		return
	}
	p := lomutoPartition(r, lo, hi)
	if r.stopped() {
		return
	}
	quickRange(r, lo, p-1)
	if r.stopped() {
		return
	}
	quickRange(r, p+1, hi)
}

func lomutoPartition(r *recorder, lo, hi int) int {
	i := lo
	for j := lo; j < hi; j++ {
		if r.stopped() {
			return i
		}
		if !r.compare(j, hi) {
			r.swap(i, j)
			i++
		}
	}
	r.swap(i, hi)
	return i
}

// binaryTask is one pending partition of binary quicksort: the inclusive
// range [lo, hi] split on bit.
type binaryTask struct {
	lo, hi, bit int
}

// binaryQuickSort partitions on the bits of value-min from the most
// significant down, driven by a FIFO of pending ranges instead of recursion.
func binaryQuickSort(r *recorder) {
	n := r.size()
	if n < 2 {
		return
	}
	lo, hi, ok := scanBounds(r)
	if !ok || hi == lo {
		return
	}
	top := bits.Len(uint(hi-lo)) - 1

	queue := []binaryTask{{0, n - 1, top}}
	for len(queue) > 0 {
		if r.stopped() {
			return
		}
		task := queue[0]
		queue = queue[1:]
		if task.lo >= task.hi || task.bit < 0 {
			continue
		}
		split := bitPartition(r, task, lo)
		if r.stopped() {
			return
		}
		queue = append(queue,
			binaryTask{task.lo, split, task.bit - 1},
			binaryTask{split + 1, task.hi, task.bit - 1},
		)
	}
}

// bitPartition moves elements whose key bit is clear before those whose bit
// is set and returns the index of the last clear element (task.lo-1 if none).
func bitPartition(r *recorder, task binaryTask, base int) int {
	bitSet := func(i int) bool {
		return (r.read(i)-base)>>task.bit&1 == 1
	}
	i, j := task.lo-1, task.hi+1
	for {
		if r.stopped() {
			return j
		}
		i++
		for i <= task.hi && !r.stopped() && !bitSet(i) {
			i++
		}
		j--
		for j >= task.lo && !r.stopped() && bitSet(j) {
			j--
		}
		if r.stopped() || i >= j {
			return j
		}
		r.swap(i, j)
	}
}

// scanBounds reads every element once and returns the minimum and maximum.
// ok is false if the scan was cancelled.
func scanBounds(r *recorder) (lo, hi int, ok bool) {
	lo = r.read(0)
	hi = lo
	for i := 1; i < r.size(); i++ {
		if r.stopped() {
			return 0, 0, false
		}
		v := r.read(i)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
