package algorithm

// insertionSort holds the key aside and shifts larger elements right with
// moves, then writes the key into the gap.
func insertionSort(r *recorder) {
	n := r.size()
	for i := 1; i < n; i++ {
		if r.stopped() {
			return
		}
		key := r.read(i)
		j := i - 1
		for j >= 0 && r.read(j) > key {
			if r.stopped() {
				return
			}
			r.move(j+1, j)
			j--
		}
		r.set(j+1, key)
	}
}

// binaryInsertionSort locates the insertion point with compares against the
// unmoved element at i. Equal keys land after their peers, keeping the sort
// stable.
func binaryInsertionSort(r *recorder) {
	n := r.size()
	for i := 1; i < n; i++ {
		if r.stopped() {
			return
		}
		lo, hi := 0, i-1
		for lo <= hi {
			if r.stopped() {
				return
			}
			mid := lo + (hi-lo)/2
			if r.compare(mid, i) {
				hi = mid - 1
			} else {
				lo = mid + 1
			}
		}
		if lo == i {
			continue
		}
		key := r.read(i)
		for j := i - 1; j >= lo; j-- {
			if r.stopped() {
				return
			}
			r.move(j+1, j)
		}
		r.set(lo, key)
	}
}

// optimizedGnomeSort replaces the gnome's step-back walk with a binary search
// for the first element not less than the current one.
func optimizedGnomeSort(r *recorder) {
	n := r.size()
	for i := 1; i < n; i++ {
		if r.stopped() {
			return
		}
		lo, hi := 0, i
		for lo < hi {
			if r.stopped() {
				return
			}
			mid := lo + (hi-lo)/2
			if !r.compare(i, mid) {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		if lo == i {
			continue
		}
		current := r.read(i)
		for j := i; j > lo; j-- {
			if r.stopped() {
				return
			}
			r.move(j, j-1)
		}
		r.set(lo, current)
	}
}
