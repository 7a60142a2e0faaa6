package algorithm

// mergeSort is a top-down merge sort. Each merge reads both runs into a
// buffer in order and writes the buffer back with sets.
func mergeSort(r *recorder) {
	mergeRange(r, 0, r.size()-1)
}

func mergeRange(r *recorder, lo, hi int) {
	if lo >= hi || r.stopped() {
		return
	}
	mid := lo + (hi-lo)/2
	mergeRange(r, lo, mid)
	if r.stopped() {
		return
	}
	mergeRange(r, mid+1, hi)
	if r.stopped() {
		return
	}
	mergeRuns(r, lo, mid, hi)
}

func mergeRuns(r *recorder, lo, mid, hi int) {
	buf := make([]int, 0, hi-lo+1)
	i, j := lo, mid+1
	for i <= mid && j <= hi {
		if r.stopped() {
			return
		}
		if !r.compare(i, j) {
			buf = append(buf, r.read(i))
			i++
		} else {
			buf = append(buf, r.read(j))
			j++
		}
	}
	for ; i <= mid && !r.stopped(); i++ {
		buf = append(buf, r.read(i))
	}
	for ; j <= hi && !r.stopped(); j++ {
		buf = append(buf, r.read(j))
	}
	for k, v := range buf {
		if r.stopped() {
			return
		}
		r.set(lo+k, v)
	}
}

// bitonicSort handles arbitrary lengths by splitting merges at the greatest
// power of two below the range length.
func bitonicSort(r *recorder) {
	bitonicRange(r, 0, r.size(), true)
}

// bitonicRange sorts n elements from lo, ascending when up is true.
func bitonicRange(r *recorder, lo, n int, up bool) {
	if n <= 1 || r.stopped() {
		return
	}
	m := n / 2
	bitonicRange(r, lo, m, !up)
	if r.stopped() {
		return
	}
	bitonicRange(r, lo+m, n-m, up)
	if r.stopped() {
		return
	}
	bitonicMerge(r, lo, n, up)
}

func bitonicMerge(r *recorder, lo, n int, up bool) {
	if n <= 1 || r.stopped() {
		return
	}
	m := greatestPowerOfTwoBelow(n)
	for i := lo; i < lo+n-m; i++ {
		if r.stopped() {
			return
		}
		if up == r.compare(i, i+m) {
			r.swap(i, i+m)
		}
	}
	bitonicMerge(r, lo, m, up)
	if r.stopped() {
		return
	}
	bitonicMerge(r, lo+m, n-m, up)
}

// greatestPowerOfTwoBelow returns the largest power of two strictly less
// than n, for n >= 2.
func greatestPowerOfTwoBelow(n int) int {
	k := 1
	for k < n {
		k <<= 1
	}
	return k >> 1
}
